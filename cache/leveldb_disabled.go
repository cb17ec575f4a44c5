//go:build !leveldb

package cache

import "github.com/pkg/errors"

// NewLevelDBTable requires the leveldb build tag and a LevelDB C library.
func NewLevelDBTable(path string) (NodeTable, error) {
	return nil, errors.New("leveldb node store not available, rebuild with -tags leveldb")
}

// LevelDBVersion returns an empty string without leveldb support.
func LevelDBVersion() string { return "" }
