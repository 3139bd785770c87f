package lattice

import (
	"fmt"
	"math"
	"strings"
)

// Config is a map of keyword to arbitrary data to specify configurations via keyword.
// Keys are case-insensitive.
type Config map[string]interface{}

// NewConfig returns an empty Config.
func NewConfig() Config {
	return make(Config)
}

// Set assigns a value to a keyword.
func (c Config) Set(key string, value interface{}) {
	c[strings.ToLower(key)] = value
}

// GetString returns a string value of the given key.  If setting of key is not
// a string, returns an error.
func (c Config) GetString(key string) (s string, found bool, err error) {
	var v interface{}
	if v, found = c[strings.ToLower(key)]; !found {
		return
	}
	var ok bool
	if s, ok = v.(string); !ok {
		err = fmt.Errorf("setting for %q was not a string: %v", key, v)
	}
	return
}

// GetBool returns a bool value of the given key.
func (c Config) GetBool(key string) (b bool, found bool, err error) {
	var v interface{}
	if v, found = c[strings.ToLower(key)]; !found {
		return
	}
	var ok bool
	if b, ok = v.(bool); !ok {
		err = fmt.Errorf("setting for %q was not a bool: %v", key, v)
	}
	return
}

// GetInt returns an int value of the given key.  TOML decodes integers as int64 so
// any integer type is accepted.
func (c Config) GetInt(key string) (i int, found bool, err error) {
	var v interface{}
	if v, found = c[strings.ToLower(key)]; !found {
		return
	}
	switch n := v.(type) {
	case int:
		i = n
	case int32:
		i = int(n)
	case int64:
		i = int(n)
	case uint64:
		i = int(n)
	default:
		err = fmt.Errorf("setting for %q was not an integer: %v", key, v)
	}
	return
}

// GetPoint returns a point given as an array of integers, e.g. extent = [100, 100, 100].
func (c Config) GetPoint(key string) (p Point, found bool, err error) {
	var v interface{}
	if v, found = c[strings.ToLower(key)]; !found {
		return
	}
	var values []int32
	add := func(n int64) error {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("setting for %q has element %d outside the 32-bit range", key, n)
		}
		values = append(values, int32(n))
		return nil
	}
	switch arr := v.(type) {
	case []interface{}:
		for _, elem := range arr {
			switch n := elem.(type) {
			case int64:
				err = add(n)
			case int:
				err = add(int64(n))
			default:
				err = fmt.Errorf("setting for %q has non-integer element: %v", key, elem)
			}
			if err != nil {
				return nil, true, err
			}
		}
	case []int64:
		for _, n := range arr {
			if err = add(n); err != nil {
				return nil, true, err
			}
		}
	case []int32:
		values = arr
	case []int:
		for _, n := range arr {
			if err = add(int64(n)); err != nil {
				return nil, true, err
			}
		}
	case Point:
		return arr, true, nil
	default:
		return nil, true, fmt.Errorf("setting for %q was not an array of integers: %v", key, v)
	}
	p, err = NewPoint(values)
	return
}

// StoreConfig is a store-specific configuration where each store implementation
// defines the types of parameters it accepts.
type StoreConfig struct {
	Config

	// Engine is a simple name describing the engine, e.g., "filestore"
	Engine string
}

func (sc StoreConfig) String() string {
	return fmt.Sprintf("%s store %v", sc.Engine, map[string]interface{}(sc.Config))
}
