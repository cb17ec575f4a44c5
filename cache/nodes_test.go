package cache

import (
	"os"
	"testing"

	osm "github.com/omniscale/go-osm"
)

func mknode(id int64, lat, lon float64, tags osm.Tags) osm.Node {
	n := osm.Node{Lat: lat, Long: lon}
	n.ID = id
	n.Tags = tags
	return n
}

func openTables(t *testing.T) map[string]NodeTable {
	t.Helper()
	tables := map[string]NodeTable{}
	for _, kind := range []string{Memory, Badger} {
		tbl, err := Open(kind, t.TempDir())
		if err != nil {
			t.Fatalf("opening %s table: %v", kind, err)
		}
		tables[kind] = tbl
	}
	return tables
}

func TestNodeTable(t *testing.T) {
	for kind, tbl := range openTables(t) {
		t.Run(kind, func(t *testing.T) {
			defer tbl.Close()
			for _, id := range []int64{30, 10, 20} {
				if err := tbl.Put(mknode(id, float64(id)/3, -float64(id)/7, osm.Tags{"id": "x"})); err != nil {
					t.Fatal(err)
				}
			}
			// overwrite
			if err := tbl.Put(mknode(20, 1, 2, osm.Tags{"name": "second"})); err != nil {
				t.Fatal(err)
			}
			if tbl.Len() != 3 {
				t.Errorf("expected 3 nodes, got %d", tbl.Len())
			}

			nd, ok, err := tbl.Get(10)
			if err != nil || !ok {
				t.Fatalf("node 10 not found: %v", err)
			}
			if nd.Lat != float64(10)/3 || nd.Long != -float64(10)/7 {
				t.Errorf("unexpected coords %v %v", nd.Lat, nd.Long)
			}
			nd, ok, err = tbl.Get(20)
			if err != nil || !ok || nd.Tags["name"] != "second" || nd.Lat != 1 {
				t.Errorf("node 20 not overwritten: %v %v %v", nd, ok, err)
			}
			if _, ok, err := tbl.Get(99); ok || err != nil {
				t.Errorf("unexpected result for missing node: %v %v", ok, err)
			}

			var ids []int64
			if err := tbl.Iter(func(n osm.Node) error {
				ids = append(ids, n.ID)
				return nil
			}); err != nil {
				t.Fatal(err)
			}
			if len(ids) != 3 || ids[0] != 10 || ids[1] != 20 || ids[2] != 30 {
				t.Errorf("unexpected iteration order %v", ids)
			}
		})
	}
}

func TestBadgerTableRemovedOnClose(t *testing.T) {
	dir := t.TempDir()
	tbl, err := Open(Badger, dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Put(mknode(1, 1, 1, nil)); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir + "/nodes.badger"); !os.IsNotExist(err) {
		t.Errorf("badger directory not removed: %v", err)
	}
}

func TestBadgerTableSmallCache(t *testing.T) {
	tbl, err := NewBadgerTable(t.TempDir()+"/nodes", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Close()
	for i := int64(1); i <= 100; i++ {
		if err := tbl.Put(mknode(i, float64(i), 0, nil)); err != nil {
			t.Fatal(err)
		}
	}
	for i := int64(1); i <= 100; i++ {
		nd, ok, err := tbl.Get(i)
		if err != nil || !ok || nd.Lat != float64(i) {
			t.Fatalf("node %d: %v %v %v", i, nd, ok, err)
		}
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open("rocksdb", t.TempDir()); err == nil {
		t.Error("expected error for unknown node store")
	}
}

func TestKeyBuf(t *testing.T) {
	for _, id := range []int64{0, 1, 1 << 40, 12345678901} {
		if got := idFromKeyBuf(idToKeyBuf(id)); got != id {
			t.Errorf("%d != %d", got, id)
		}
	}
}
