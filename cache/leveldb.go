//go:build leveldb

package cache

import (
	"fmt"
	"os"

	"github.com/jmhodges/levigo"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/archive"
)

const levelDBBatchSize = 4096

// LevelDBTable stores nodes in a LevelDB database. Puts are buffered in a
// write batch that is flushed before reads.
type LevelDBTable struct {
	path    string
	db      *levigo.DB
	cache   *levigo.Cache
	wo      *levigo.WriteOptions
	ro      *levigo.ReadOptions
	batch   *levigo.WriteBatch
	pending int
	count   int
}

func NewLevelDBTable(path string) (NodeTable, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, err
	}
	t := &LevelDBTable{path: path}
	opts := levigo.NewOptions()
	defer opts.Close()
	opts.SetCreateIfMissing(true)
	t.cache = levigo.NewLRUCache(16 * 1024 * 1024)
	opts.SetCache(t.cache)
	opts.SetMaxOpenFiles(64)
	opts.SetBlockRestartInterval(128)
	opts.SetWriteBufferSize(64 * 1024 * 1024)

	db, err := levigo.Open(path, opts)
	if err != nil {
		t.cache.Close()
		return nil, errors.Wrapf(err, "opening leveldb node table %s", path)
	}
	t.db = db
	t.wo = levigo.NewWriteOptions()
	t.ro = levigo.NewReadOptions()
	t.batch = levigo.NewWriteBatch()
	return t, nil
}

func (t *LevelDBTable) Put(node osm.Node) error {
	if _, ok, err := t.Get(node.ID); err != nil {
		return err
	} else if !ok {
		t.count++
	}
	data, err := archive.MarshalNode(&node)
	if err != nil {
		return err
	}
	t.batch.Put(idToKeyBuf(node.ID), data)
	t.pending++
	if t.pending >= levelDBBatchSize {
		return t.flush()
	}
	return nil
}

func (t *LevelDBTable) flush() error {
	if t.pending == 0 {
		return nil
	}
	if err := t.db.Write(t.wo, t.batch); err != nil {
		return errors.Wrap(err, "writing node batch")
	}
	t.batch.Clear()
	t.pending = 0
	return nil
}

func (t *LevelDBTable) Get(id int64) (osm.Node, bool, error) {
	if err := t.flush(); err != nil {
		return osm.Node{}, false, err
	}
	data, err := t.db.Get(t.ro, idToKeyBuf(id))
	if err != nil {
		return osm.Node{}, false, err
	}
	if data == nil {
		return osm.Node{}, false, nil
	}
	nd, err := archive.UnmarshalNode(data)
	if err != nil {
		return osm.Node{}, false, err
	}
	return nd, true, nil
}

func (t *LevelDBTable) Iter(fn func(osm.Node) error) error {
	if err := t.flush(); err != nil {
		return err
	}
	ro := levigo.NewReadOptions()
	defer ro.Close()
	ro.SetFillCache(false)
	it := t.db.NewIterator(ro)
	defer it.Close()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		nd, err := archive.UnmarshalNode(it.Value())
		if err != nil {
			return err
		}
		nd.ID = idFromKeyBuf(it.Key())
		if err := fn(nd); err != nil {
			return err
		}
	}
	return it.GetError()
}

func (t *LevelDBTable) Len() int { return t.count }

// Close closes and removes the database.
func (t *LevelDBTable) Close() error {
	if t.db == nil {
		return nil
	}
	t.batch.Close()
	t.ro.Close()
	t.wo.Close()
	t.db.Close()
	t.cache.Close()
	t.db = nil
	return os.RemoveAll(t.path)
}

// LevelDBVersion returns the version of the linked LevelDB library.
func LevelDBVersion() string {
	return fmt.Sprintf("%d.%d", levigo.GetLevelDBMajorVersion(), levigo.GetLevelDBMinorVersion())
}
