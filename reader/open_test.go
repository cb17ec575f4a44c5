package reader

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/omniscale/tubemap/cache"
)

const smallDoc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
 <node id="1" lat="51.5" lon="-0.1"><tag k="natural" v="tree"/></node>
 <node id="2" lat="51.6" lon="-0.2"/>
 <way id="3"><nd ref="1"/><nd ref="2"/><tag k="highway" v="path"/></way>
</osm>
`

func writeFile(t *testing.T, name string, wrap func(io.Writer) (io.WriteCloser, error)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := wrap(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, smallDoc); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestReadFile(t *testing.T) {
	files := map[string]string{
		"plain": writeFile(t, "london.osm", func(w io.Writer) (io.WriteCloser, error) {
			return nopCloser{w}, nil
		}),
		"gzip": writeFile(t, "london.osm.gz", func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		}),
		"xz": writeFile(t, "london.osm.xz", func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		}),
	}
	for name, path := range files {
		t.Run(name, func(t *testing.T) {
			g := NewGraph(cache.NewMemoryTable())
			if err := ReadFile(context.Background(), path, g); err != nil {
				t.Fatal(err)
			}
			if g.Counts.Nodes != 2 || g.Counts.Ways != 1 {
				t.Errorf("unexpected counts %+v", g.Counts)
			}
			if len(g.Ways[3].Nodes) != 2 {
				t.Errorf("unexpected way %v", g.Ways[3])
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.osm.xz")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpenInvalidXZ(t *testing.T) {
	path := writeFile(t, "broken.osm.xz", func(w io.Writer) (io.WriteCloser, error) {
		return nopCloser{w}, nil
	})
	if _, err := Open(path); err == nil {
		t.Error("expected error for invalid xz header")
	}
}

func TestIsPBF(t *testing.T) {
	for path, expected := range map[string]bool{
		"london.osm.pbf": true,
		"LONDON.PBF":     true,
		"london.osm.xz":  false,
		"london.osm":     false,
	} {
		if IsPBF(path) != expected {
			t.Errorf("IsPBF(%q) != %v", path, expected)
		}
	}
}

func TestParsePBFInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.osm.pbf")
	if err := os.WriteFile(path, []byte("not a pbf file"), 0644); err != nil {
		t.Fatal(err)
	}
	g := NewGraph(cache.NewMemoryTable())
	if err := ReadFile(context.Background(), path, g); err == nil {
		t.Error("expected error for invalid pbf")
	}
}
