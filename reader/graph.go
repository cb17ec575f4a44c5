// Package reader parses OSM files into the raw element graph.
package reader

import (
	"fmt"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/stats"
)

var (
	ErrUnresolvedWay = errors.New("reference to unknown way")
	ErrEmptyWay      = errors.New("way without resolvable nodes")
	ErrEmptyRelation = errors.New("relation without way members")
)

// ParseError is a structural or decoding error of the input document.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Counts of parsed elements.
type Counts struct {
	Nodes           int
	Ways            int
	Relations       int
	UnresolvedNodes int
	DroppedWays     int
	DroppedRels     int
}

// Graph collects parsed elements. Nodes are stored in a node table, ways
// and relations in memory. Ways copy their resolved nodes and relations
// copy their member ways.
type Graph struct {
	Nodes     cache.NodeTable
	Ways      map[int64]osm.Way
	Relations map[int64]osm.Relation
	// AllowEmpty drops ways without nodes and relations without ways with a
	// warning instead of failing.
	AllowEmpty bool
	Counts     Counts
	// Progress is optional.
	Progress *stats.Progress
}

func NewGraph(nodes cache.NodeTable) *Graph {
	return &Graph{
		Nodes:     nodes,
		Ways:      make(map[int64]osm.Way),
		Relations: make(map[int64]osm.Relation),
	}
}

func (g *Graph) addNode(nd osm.Node) error {
	if nd.Tags == nil {
		nd.Tags = osm.Tags{}
	}
	if err := g.Nodes.Put(nd); err != nil {
		return err
	}
	g.Counts.Nodes++
	if g.Progress != nil {
		g.Progress.AddNodes(1)
	}
	return nil
}

// addWay resolves the refs of w and stores the way. Unknown refs are
// skipped with a warning.
func (g *Graph) addWay(w osm.Way) error {
	refs := w.Refs
	w.Refs = make([]int64, 0, len(refs))
	w.Nodes = make([]osm.Node, 0, len(refs))
	for _, ref := range refs {
		nd, ok, err := g.Nodes.Get(ref)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("[warn] way %d references unknown node %d", w.ID, ref)
			g.Counts.UnresolvedNodes++
			continue
		}
		w.Refs = append(w.Refs, ref)
		w.Nodes = append(w.Nodes, nd)
	}
	if len(w.Nodes) == 0 {
		if !g.AllowEmpty {
			return errors.Wrapf(ErrEmptyWay, "way %d", w.ID)
		}
		log.Printf("[warn] dropping way %d without nodes", w.ID)
		g.Counts.DroppedWays++
		return nil
	}
	if w.Tags == nil {
		w.Tags = osm.Tags{}
	}
	g.Ways[w.ID] = w
	g.Counts.Ways++
	if g.Progress != nil {
		g.Progress.AddWays(1)
	}
	return nil
}

// addRelation resolves the way members of r and stores the relation.
// Members of other types are dropped. Unknown ways are an error.
func (g *Graph) addRelation(r osm.Relation) error {
	members := make([]osm.Member, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Type != osm.WayMember {
			continue
		}
		w, ok := g.Ways[m.ID]
		if !ok {
			return errors.Wrapf(ErrUnresolvedWay, "relation %d, way %d", r.ID, m.ID)
		}
		m.Way = &w
		members = append(members, m)
	}
	r.Members = members
	if len(members) == 0 {
		if !g.AllowEmpty {
			return errors.Wrapf(ErrEmptyRelation, "relation %d", r.ID)
		}
		log.Printf("[warn] dropping relation %d without ways", r.ID)
		g.Counts.DroppedRels++
		return nil
	}
	if r.Tags == nil {
		r.Tags = osm.Tags{}
	}
	g.Relations[r.ID] = r
	g.Counts.Relations++
	if g.Progress != nil {
		g.Progress.AddRelations(1)
	}
	return nil
}

// OSMData returns all elements of the graph. Nodes are loaded from the
// node table.
func (g *Graph) OSMData() (*element.OSMData, error) {
	data := element.NewOSMData()
	err := g.Nodes.Iter(func(nd osm.Node) error {
		data.Nodes[nd.ID] = nd
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading nodes")
	}
	data.Ways = g.Ways
	data.Relations = g.Relations
	return data, nil
}
