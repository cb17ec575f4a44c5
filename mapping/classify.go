package mapping

import (
	"strings"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/geom"
	"github.com/omniscale/tubemap/log"
)

type NodeMatcher interface {
	MatchNode(node *osm.Node, out *element.SemanticMapElements) error
}

type WayMatcher interface {
	MatchWay(way *osm.Way, out *element.SemanticMapElements) error
}

type RelationMatcher interface {
	MatchRelation(rel *osm.Relation, out *element.SemanticMapElements) error
}

// Classifier holds the rule chains and tables used for classification.
type Classifier struct {
	Stations  []Rule[element.StationType]
	Landmarks []Rule[element.LandmarkType]
	Areas     []Rule[element.AreaType]
	Overrides Overrides
}

func NewClassifier() *Classifier {
	return &Classifier{
		Stations:  StationRules,
		Landmarks: LandmarkRules,
		Areas:     AreaRules,
		Overrides: DefaultOverrides,
	}
}

// Classify classifies all elements of data. Elements are processed in
// ascending id order per kind, nodes before ways before relations.
func (c *Classifier) Classify(data *element.OSMData) (*element.SemanticMapElements, error) {
	out := &element.SemanticMapElements{}
	for _, id := range element.SortedIds(data.Nodes) {
		nd := data.Nodes[id]
		if err := c.MatchNode(&nd, out); err != nil {
			return nil, err
		}
	}
	for _, id := range element.SortedIds(data.Ways) {
		w := data.Ways[id]
		if err := c.MatchWay(&w, out); err != nil {
			return nil, err
		}
	}
	for _, id := range element.SortedIds(data.Relations) {
		r := data.Relations[id]
		if err := c.MatchRelation(&r, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StationName returns the display name of a station name, that is the
// text before the first "(", trimmed.
func StationName(name string) string {
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func (c *Classifier) landmark(kind ElementKind, id int64, tags osm.Tags) (element.LandmarkType, bool) {
	typ, ok := First(c.Landmarks, tags)
	if forced, isOverride := c.Overrides[OverrideKey{kind, id}]; isOverride {
		return forced, true
	}
	return typ, ok
}

func (c *Classifier) MatchNode(node *osm.Node, out *element.SemanticMapElements) error {
	if isStation(node.Tags) {
		if typ, ok := First(c.Stations, node.Tags); ok {
			raw, _ := GetString(node.Tags, "name")
			name := StationName(raw)
			if name == "" {
				log.Printf("[warn] station node %d has no usable name %q, skipping", node.ID, raw)
			} else {
				out.Stations = append(out.Stations, element.TransportStation{
					Name: name,
					Type: typ,
					Lat:  node.Lat,
					Lon:  node.Long,
				})
			}
		}
	}

	if typ, ok := c.landmark(NodeKind, node.ID, node.Tags); ok {
		out.Landmarks = append(out.Landmarks, element.Landmark{Type: typ, Lat: node.Lat, Lon: node.Long})
	}
	return nil
}

func (c *Classifier) MatchWay(way *osm.Way, out *element.SemanticMapElements) error {
	tags := way.Tags
	path := element.WayPath(way)

	if isRoad(tags) {
		out.Roads = append(out.Roads, path)
	}

	if typ, ok := First(c.Areas, tags); ok {
		polygons, err := geom.Assemble([]element.Path{path})
		if err != nil {
			return errors.Wrapf(err, "building area of way %d", way.ID)
		}
		out.Areas = append(out.Areas, element.Area{Type: typ, Polygons: polygons})
	}

	c.matchRail(tags, path, out)

	if len(way.Nodes) > 0 {
		if typ, ok := c.landmark(WayKind, way.ID, tags); ok {
			first := &way.Nodes[0]
			out.Landmarks = append(out.Landmarks, element.Landmark{Type: typ, Lat: first.Lat, Lon: first.Long})
		}
	}
	return nil
}

func (c *Classifier) matchRail(tags osm.Tags, path element.Path, out *element.SemanticMapElements) {
	if isLineRail(tags) {
		if lines := Lines(tags); len(lines) > 0 {
			for _, l := range lines {
				out.TubeRails = append(out.TubeRails, element.TubeRail{Line: l, Path: path})
			}
			return
		}
	}
	if isElizabethWay(tags) {
		out.TubeRails = append(out.TubeRails, element.TubeRail{Line: element.Elizabeth, Path: path})
		return
	}
	if isRail(tags) {
		out.Rails = append(out.Rails, path)
	}
}

func (c *Classifier) MatchRelation(rel *osm.Relation, out *element.SemanticMapElements) error {
	ways := element.MemberWays(rel)

	if typ, ok := First(c.Areas, rel.Tags); ok {
		paths := make([]element.Path, len(ways))
		for i, w := range ways {
			paths[i] = element.WayPath(w)
		}
		polygons, err := geom.Assemble(paths)
		if err != nil {
			return errors.Wrapf(err, "building area of relation %d", rel.ID)
		}
		out.Areas = append(out.Areas, element.Area{Type: typ, Polygons: polygons})
	}

	if isOverground(rel.Tags) {
		for _, w := range ways {
			if isLineRail(w.Tags) {
				out.TubeRails = append(out.TubeRails, element.TubeRail{
					Line: element.OvergroundLine,
					Path: element.WayPath(w),
				})
			}
		}
	}
	return nil
}
