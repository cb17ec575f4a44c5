package cache

import (
	"os"

	"github.com/dgraph-io/badger"
	lru "github.com/hashicorp/golang-lru/v2"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/archive"
)

const defaultLRUSize = 64 * 1024

// BadgerTable stores nodes in a badger database. Writes are collected in a
// single transaction that is committed when it grows too big or before
// iterating. Recently written and read nodes are kept in an LRU cache.
type BadgerTable struct {
	path  string
	db    *badger.DB
	txn   *badger.Txn
	lru   *lru.Cache[int64, osm.Node]
	count int
}

func NewBadgerTable(path string, cacheSize int) (*BadgerTable, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger node table %s", path)
	}
	cache, err := lru.New[int64, osm.Node](cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BadgerTable{path: path, db: db, lru: cache}, nil
}

func (t *BadgerTable) Put(node osm.Node) error {
	data, err := archive.MarshalNode(&node)
	if err != nil {
		return err
	}
	key := idToKeyBuf(node.ID)

	if _, ok, err := t.Get(node.ID); err != nil {
		return err
	} else if !ok {
		t.count++
	}

	if t.txn == nil {
		t.txn = t.db.NewTransaction(true)
	}
	err = t.txn.Set(key, data)
	if err == badger.ErrTxnTooBig {
		if err := t.commit(); err != nil {
			return err
		}
		t.txn = t.db.NewTransaction(true)
		err = t.txn.Set(key, data)
	}
	if err != nil {
		return errors.Wrapf(err, "storing node %d", node.ID)
	}
	t.lru.Add(node.ID, node)
	return nil
}

func (t *BadgerTable) commit() error {
	if t.txn == nil {
		return nil
	}
	err := t.txn.Commit()
	t.txn = nil
	return errors.Wrap(err, "committing node table")
}

func (t *BadgerTable) Get(id int64) (osm.Node, bool, error) {
	if nd, ok := t.lru.Get(id); ok {
		return nd, true, nil
	}

	var data []byte
	get := func(txn *badger.Txn) error {
		item, err := txn.Get(idToKeyBuf(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}

	var err error
	if t.txn != nil {
		// pending writes are only visible in the write transaction
		err = get(t.txn)
	} else {
		err = t.db.View(get)
	}
	if err != nil {
		return osm.Node{}, false, errors.Wrapf(err, "loading node %d", id)
	}
	if data == nil {
		return osm.Node{}, false, nil
	}
	nd, err := archive.UnmarshalNode(data)
	if err != nil {
		return osm.Node{}, false, err
	}
	t.lru.Add(id, nd)
	return nd, true, nil
}

func (t *BadgerTable) Iter(fn func(osm.Node) error) error {
	if err := t.commit(); err != nil {
		return err
	}
	return t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			nd, err := archive.UnmarshalNode(data)
			if err != nil {
				return err
			}
			nd.ID = idFromKeyBuf(item.Key())
			if err := fn(nd); err != nil {
				return err
			}
		}
		return nil
	})
}

func (t *BadgerTable) Len() int { return t.count }

// Close closes and removes the database.
func (t *BadgerTable) Close() error {
	if t.db == nil {
		return nil
	}
	if t.txn != nil {
		t.txn.Discard()
		t.txn = nil
	}
	err := t.db.Close()
	t.db = nil
	t.lru.Purge()
	if rmErr := os.RemoveAll(t.path); err == nil {
		err = rmErr
	}
	return err
}
