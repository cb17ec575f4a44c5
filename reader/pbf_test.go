package reader

import (
	"bytes"
	"context"
	"math"
	"os"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/log"
)

func TestParsePBF(t *testing.T) {
	g := NewGraph(cache.NewMemoryTable())
	if err := ReadFile(context.Background(), "testdata/london.osm.pbf", g); err != nil {
		t.Fatal(err)
	}
	if g.Counts != (Counts{Nodes: 7, Ways: 3, Relations: 2}) {
		t.Errorf("unexpected counts %+v", g.Counts)
	}

	nd, ok, err := g.Nodes.Get(7)
	if err != nil || !ok {
		t.Fatal("node 7 not stored", err)
	}
	if nd.Tags["name"] != "Baker Street" || nd.Tags["railway"] != "station" {
		t.Errorf("unexpected tags %v", nd.Tags)
	}
	if math.Abs(nd.Lat-51.5226) > 1e-7 || math.Abs(nd.Long+0.1571) > 1e-7 {
		t.Errorf("unexpected coords %v %v", nd.Lat, nd.Long)
	}

	w := g.Ways[10]
	if w.Tags["line"] != "Bakerloo" {
		t.Errorf("unexpected tags %v", w.Tags)
	}
	if len(w.Nodes) != 3 {
		t.Fatalf("unresolved nodes in way %v", w)
	}
	for i, ref := range []int64{1, 2, 3} {
		if w.Refs[i] != ref || w.Nodes[i].ID != ref {
			t.Errorf("unexpected node %d in way: %v", i, w.Nodes[i])
		}
	}
	if math.Abs(w.Nodes[0].Lat-51.52) > 1e-7 || math.Abs(w.Nodes[0].Long+0.17) > 1e-7 {
		t.Errorf("unexpected coords %v", w.Nodes[0])
	}
	if ring := g.Ways[12]; len(ring.Nodes) != 4 || ring.Nodes[0].ID != ring.Nodes[3].ID {
		t.Errorf("unexpected ring %v", ring)
	}

	water := g.Relations[20]
	if len(water.Members) != 1 {
		t.Fatalf("node member not dropped %v", water.Members)
	}
	if m := water.Members[0]; m.Type != osm.WayMember || m.Role != "outer" || m.Way == nil || m.Way.ID != 12 {
		t.Errorf("unexpected member %v", m)
	} else if len(m.Way.Nodes) != 4 {
		t.Errorf("member way without nodes %v", m.Way)
	}

	route := g.Relations[21]
	if route.Tags["network"] != "London Overground" || len(route.Members) != 2 {
		t.Fatalf("unexpected relation %v", route)
	}
	for i, id := range []int64{10, 11} {
		if m := route.Members[i]; m.Way == nil || m.Way.ID != id || len(m.Way.Nodes) == 0 {
			t.Errorf("unexpected member %d: %v", i, m)
		}
	}
}

func TestParsePBFUnresolvedWay(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	// monaco contains relations with member ways outside of the extract.
	g := NewGraph(cache.NewMemoryTable())
	g.AllowEmpty = true
	err := ReadFile(context.Background(), "testdata/monaco-20150428.osm.pbf", g)
	if errors.Cause(err) != ErrUnresolvedWay {
		t.Fatalf("expected ErrUnresolvedWay, got %v", err)
	}
	if g.Counts.Nodes != 17233 || g.Counts.Ways != 2398 {
		t.Errorf("nodes and ways not complete before relations: %+v", g.Counts)
	}
	if g.Counts.UnresolvedNodes != 0 {
		t.Errorf("unexpected counts %+v", g.Counts)
	}
}

func TestConsume(t *testing.T) {
	ch := make(chan []osm.Node, 4)
	done := make(chan struct{})
	var got []int64
	ch <- []osm.Node{{Element: osm.Element{ID: 1}}, {Element: osm.Element{ID: 2}}}
	ch <- nil
	ch <- []osm.Node{{Element: osm.Element{ID: 3}}}
	close(ch)

	err := consume(make(chan struct{}), ch, done, &firstError{}, func(batch []osm.Node) error {
		for _, nd := range batch {
			got = append(got, nd.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	default:
		t.Error("done not closed")
	}
	if len(got) != 3 {
		t.Errorf("unexpected nodes %v", got)
	}
}

func TestConsumeFirstError(t *testing.T) {
	canceled := false
	fail := &firstError{cancel: func() { canceled = true }}
	errBatch := errors.New("batch 2")

	ways := make(chan []osm.Way, 4)
	waysDone := make(chan struct{})
	ways <- []osm.Way{{Element: osm.Element{ID: 1}}}
	ways <- []osm.Way{{Element: osm.Element{ID: 2}}}
	ways <- []osm.Way{{Element: osm.Element{ID: 3}}}
	ways <- nil
	close(ways)

	var got []int64
	err := consume(make(chan struct{}), ways, waysDone, fail, func(batch []osm.Way) error {
		got = append(got, batch[0].ID)
		if batch[0].ID == 2 {
			return errBatch
		}
		return nil
	})
	if err != errBatch {
		t.Errorf("expected first error, got %v", err)
	}
	if !canceled {
		t.Error("parser not canceled")
	}
	if len(got) != 2 {
		t.Errorf("batches processed after error: %v", got)
	}
	select {
	case <-waysDone:
	default:
		t.Error("done not closed")
	}

	// relations fail as a consequence of the dropped ways, but the first
	// error is kept.
	relations := make(chan []osm.Relation, 1)
	relations <- []osm.Relation{{Element: osm.Element{ID: 10}}}
	close(relations)
	called := false
	err = consume(make(chan struct{}), relations, nil, fail, func(batch []osm.Relation) error {
		called = true
		return ErrUnresolvedWay
	})
	if err != errBatch {
		t.Errorf("expected first error, got %v", err)
	}
	if called {
		t.Error("relations processed after error")
	}
}

func TestConsumeAfterParse(t *testing.T) {
	parsed := make(chan struct{})
	close(parsed)
	// channel is not closed, as after a failed parse
	ch := make(chan []osm.Node, 2)
	ch <- []osm.Node{{Element: osm.Element{ID: 1}}}

	var got []int64
	err := consume(parsed, ch, nil, &firstError{}, func(batch []osm.Node) error {
		got = append(got, batch[0].ID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("buffered batch not consumed: %v", got)
	}
}
