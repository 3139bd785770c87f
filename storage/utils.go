package storage

import (
	"os"
	"path/filepath"
	"strings"
)

func testPath(path string) string {
	return filepath.Join(os.TempDir(), path)
}

// ValidKey returns true if the key can be used as a flat record name in any engine.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
