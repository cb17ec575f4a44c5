// Package cache provides node tables used while parsing. Ways and relations
// resolve their node references against a node table.
package cache

import (
	bin "encoding/binary"
	"path/filepath"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/element"
)

// NodeTable stores parsed nodes by id. Put overwrites existing nodes.
type NodeTable interface {
	Put(node osm.Node) error
	Get(id int64) (osm.Node, bool, error)
	// Iter calls fn for all nodes in ascending id order.
	Iter(fn func(osm.Node) error) error
	Len() int
	Close() error
}

const (
	Memory  = "memory"
	Badger  = "badger"
	LevelDB = "leveldb"
)

// Open returns a new, empty node table of the given kind. On-disk tables are
// created below dir and removed on Close.
func Open(kind, dir string) (NodeTable, error) {
	switch kind {
	case "", Memory:
		return NewMemoryTable(), nil
	case Badger:
		return NewBadgerTable(filepath.Join(dir, "nodes.badger"), defaultLRUSize)
	case LevelDB:
		return NewLevelDBTable(filepath.Join(dir, "nodes.leveldb"))
	default:
		return nil, errors.Errorf("unknown node store %q", kind)
	}
}

func idToKeyBuf(id int64) []byte {
	b := make([]byte, 8)
	bin.BigEndian.PutUint64(b, uint64(id))
	return b
}

func idFromKeyBuf(buf []byte) int64 {
	return int64(bin.BigEndian.Uint64(buf))
}

type MemoryTable struct {
	nodes map[int64]osm.Node
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{nodes: make(map[int64]osm.Node)}
}

func (t *MemoryTable) Put(node osm.Node) error {
	t.nodes[node.ID] = node
	return nil
}

func (t *MemoryTable) Get(id int64) (osm.Node, bool, error) {
	nd, ok := t.nodes[id]
	return nd, ok, nil
}

func (t *MemoryTable) Iter(fn func(osm.Node) error) error {
	for _, id := range element.SortedIds(t.nodes) {
		if err := fn(t.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTable) Len() int { return len(t.nodes) }

func (t *MemoryTable) Close() error {
	t.nodes = nil
	return nil
}
