package reader

import (
	"context"
	"io"
	"sync"

	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/tubemap/log"
)

// ParsePBF parses an OSM PBF file into g. The file needs to be sorted by
// type (nodes before ways before relations), as PBF extracts usually are.
func ParsePBF(ctx context.Context, r io.Reader, g *Graph) error {
	nodes := make(chan []osm.Node, 4)
	ways := make(chan []osm.Way, 4)
	relations := make(chan []osm.Relation, 4)

	// The node and way consumers signal with these channels that all
	// previous elements are stored before the next element type is
	// resolved against them.
	nodesDone := make(chan struct{})
	waysDone := make(chan struct{})

	parser := pbf.New(r, pbf.Config{
		Nodes:     nodes,
		Ways:      ways,
		Relations: relations,
		OnFirstWay: func() {
			nodes <- nil
			<-nodesDone
		},
		OnFirstRelation: func() {
			ways <- nil
			<-waysDone
		},
	})

	header, err := parser.Header()
	if err != nil {
		return errors.Wrap(err, "reading pbf header")
	}
	if header.Time.Unix() > 0 {
		log.Printf("[info] reading PBF with data till %v", header.Time.Local())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	fail := &firstError{cancel: cancel}
	parsed := make(chan struct{})

	var grp errgroup.Group

	grp.Go(func() error {
		defer close(parsed)
		if err := parser.Parse(ctx); err != nil {
			fail.set(errors.Wrap(err, "parsing pbf"))
		}
		return fail.err()
	})

	grp.Go(func() error {
		return consume(parsed, nodes, nodesDone, fail, func(batch []osm.Node) error {
			for _, nd := range batch {
				if err := g.addNode(nd); err != nil {
					return err
				}
			}
			return nil
		})
	})

	grp.Go(func() error {
		return consume(parsed, ways, waysDone, fail, func(batch []osm.Way) error {
			for _, w := range batch {
				if err := g.addWay(w); err != nil {
					return err
				}
			}
			return nil
		})
	})

	grp.Go(func() error {
		return consume(parsed, relations, nil, fail, func(batch []osm.Relation) error {
			for _, r := range batch {
				if err := g.addRelation(r); err != nil {
					return err
				}
			}
			return nil
		})
	})

	return grp.Wait()
}

// firstError keeps the first error of the parser and all consumers and
// cancels the parser once it is set.
type firstError struct {
	mu     sync.Mutex
	first  error
	cancel context.CancelFunc
}

func (e *firstError) set(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.first != nil {
		return
	}
	e.first = err
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *firstError) err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.first
}

// consume calls fn for all batches of ch until ch is closed. A nil batch
// marks the end of an element type and closes done. fn is not called
// anymore once fail is set, but the remaining batches are still received
// as the parser workers block on full channels. After parsed is closed,
// only batches that are already buffered are received. Returns the first
// error of all consumers.
func consume[T any](parsed <-chan struct{}, ch chan []T, done chan struct{}, fail *firstError, fn func([]T) error) error {
	closeDone := func() {
		if done != nil {
			close(done)
			done = nil
		}
	}
	defer closeDone()

	handle := func(batch []T) {
		if batch == nil {
			closeDone()
			return
		}
		if fail.err() != nil {
			return
		}
		if err := fn(batch); err != nil {
			fail.set(err)
		}
	}

	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				return fail.err()
			}
			handle(batch)
		case <-parsed:
			for {
				select {
				case batch, ok := <-ch:
					if !ok {
						return fail.err()
					}
					handle(batch)
				default:
					return fail.err()
				}
			}
		}
	}
}
