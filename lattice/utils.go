package lattice

import (
	"path/filepath"
	"runtime"
)

// NumCPU is the number of cores available to this process.
var NumCPU = runtime.NumCPU()

// ConvertToAbsolute returns path unchanged if it is absolute, otherwise joined onto base.
func ConvertToAbsolute(path, base string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(base, path))
}
