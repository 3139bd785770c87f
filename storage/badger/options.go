package badger

import (
	"github.com/dgraph-io/badger/v3"

	"github.com/latticeview/latticeview/lattice"
)

// getOptions returns badger options from a store configuration.  An "inmemory" store
// needs no path.
func getOptions(path string, config lattice.Config) (badger.Options, error) {
	inMemory, _, err := config.GetBool("inmemory")
	if err != nil {
		return badger.Options{}, err
	}
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil).
		WithNumVersionsToKeep(DefaultVersionsToKeep).
		WithSyncWrites(DefaultSyncWrites)

	readOnly, found, err := config.GetBool("readonly")
	if err != nil {
		return opts, err
	}
	if found {
		opts = opts.WithReadOnly(readOnly)
	}

	valueSizeThresh, found, err := config.GetInt("valuethreshold")
	if err != nil {
		return opts, err
	}
	if found {
		opts = opts.WithValueThreshold(int64(valueSizeThresh))
	}

	vlogSize, found, err := config.GetInt("valuelogfilesize")
	if err != nil {
		return opts, err
	}
	if found {
		opts = opts.WithValueLogFileSize(int64(vlogSize))
	}
	return opts, nil
}
