package reader

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

// Open opens an OSM file and decompresses it according to its extension
// (.xz, .gz, .bz2). Other files are returned as is.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input file")
	}
	buf := bufio.NewReaderSize(f, 1<<20)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		r, err := xz.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "reading xz header of %s", path)
		}
		return &readCloser{Reader: r, close: f.Close}, nil
	case ".gz":
		r, err := gzip.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "reading gzip header of %s", path)
		}
		return &readCloser{Reader: r, close: func() error {
			r.Close()
			return f.Close()
		}}, nil
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(buf), close: f.Close}, nil
	default:
		return &readCloser{Reader: buf, close: f.Close}, nil
	}
}

// IsPBF returns whether path names an OSM PBF file.
func IsPBF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pbf")
}

// ReadFile parses the OSM file at path into g.
func ReadFile(ctx context.Context, path string, g *Graph) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	if IsPBF(path) {
		return ParsePBF(ctx, r, g)
	}
	return ParseXML(r, g)
}
