// Package query searches the semantic archive by bounding box.
package query

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/geom"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/proj"
)

const (
	Stations  = "stations"
	Rails     = "rails"
	Roads     = "roads"
	Areas     = "areas"
	Landmarks = "landmarks"
	TubeRails = "tube_rails"
)

var AllKinds = []string{Stations, Rails, Roads, Areas, Landmarks, TubeRails}

// minimum extent of indexed elements in degrees, rtreego requires
// non-zero lengths
const epsilon = 0.00001

type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// ParseBBox parses "minlon,minlat,maxlon,maxlat".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, errors.Errorf("bbox %q needs four values", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, errors.Wrapf(err, "parsing bbox %q", s)
		}
		v[i] = f
	}
	b := BBox{v[0], v[1], v[2], v[3]}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return BBox{}, errors.Errorf("bbox %q has min values above max values", s)
	}
	return b, nil
}

func (b BBox) rect() rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{b.MinLon, b.MinLat},
		[]float64{max(b.MaxLon-b.MinLon, epsilon), max(b.MaxLat-b.MinLat, epsilon)},
	)
	return rect
}

// ParseKinds parses a comma separated list of element kinds. An empty
// string returns all kinds.
func ParseKinds(s string) ([]string, error) {
	if s == "" {
		return AllKinds, nil
	}
	var kinds []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		known := false
		for _, a := range AllKinds {
			if a == k {
				known = true
				break
			}
		}
		if !known {
			return nil, errors.Errorf("unknown element kind %q", k)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ParseTypes parses a comma separated list of station types, area types,
// landmark types or tube lines, e.g. "underground,park,central".
func ParseTypes(s string) (map[string]bool, error) {
	types := map[string]bool{}
	if s == "" {
		return types, nil
	}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		_, errStation := element.ParseStationType(t)
		_, errArea := element.ParseAreaType(t)
		_, errLandmark := element.ParseLandmarkType(t)
		_, errLine := element.ParseTubeLine(t)
		if errStation != nil && errArea != nil && errLandmark != nil && errLine != nil {
			return nil, errors.Errorf("unknown element type %q", t)
		}
		types[t] = true
	}
	return types, nil
}

type item struct {
	seq     int
	kind    string
	rect    rtreego.Rect
	feature *geojson.Feature
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

// Index is a spatial index of semantic map elements.
type Index struct {
	tree    *rtreego.Rtree
	n       int
	skipped int
	canvas  *proj.Canvas
}

// NewIndex indexes all elements of sem. Features get pixel positions of
// their coordinates if canvas is not nil.
func NewIndex(sem *element.SemanticMapElements, canvas *proj.Canvas) (*Index, error) {
	idx := &Index{tree: rtreego.NewTree(2, 25, 50), canvas: canvas}

	for i := range sem.Stations {
		s := &sem.Stations[i]
		idx.insert(Stations, geom.Point(s.Coords()), map[string]interface{}{
			"name": s.Name,
			"type": s.Type.String(),
		})
	}
	for i := range sem.Landmarks {
		l := &sem.Landmarks[i]
		idx.insert(Landmarks, geom.Point(l.Coords()), map[string]interface{}{
			"type": l.Type.String(),
		})
	}

	line := func(kind string, p element.Path, props map[string]interface{}) error {
		ls, err := geom.LineString(p)
		if err == geom.ErrShortLineString {
			idx.skipped++
			return nil
		}
		if err != nil {
			return err
		}
		idx.insert(kind, ls, props)
		return nil
	}
	for _, p := range sem.Roads {
		if err := line(Roads, p, nil); err != nil {
			return nil, err
		}
	}
	for _, p := range sem.Rails {
		if err := line(Rails, p, nil); err != nil {
			return nil, err
		}
	}
	for _, t := range sem.TubeRails {
		if err := line(TubeRails, t.Path, map[string]interface{}{"line": t.Line.String()}); err != nil {
			return nil, err
		}
	}
	for i := range sem.Areas {
		a := &sem.Areas[i]
		mp, _, err := geom.MultiPolygon(a)
		if err == geom.ErrNoRings {
			idx.skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		idx.insert(Areas, mp, map[string]interface{}{"type": a.Type.String()})
	}
	if idx.skipped > 0 {
		log.Printf("[warn] %d elements without valid geometry not indexed", idx.skipped)
	}
	return idx, nil
}

func (idx *Index) insert(kind string, g gogeom.T, props map[string]interface{}) {
	if props == nil {
		props = map[string]interface{}{}
	}
	props["kind"] = kind
	if idx.canvas != nil {
		props["pixels"] = idx.pixels(g)
	}
	b := g.Bounds()
	rect, _ := rtreego.NewRect(
		rtreego.Point{b.Min(0), b.Min(1)},
		[]float64{max(b.Max(0)-b.Min(0), epsilon), max(b.Max(1)-b.Min(1), epsilon)},
	)
	idx.tree.Insert(&item{
		seq:  idx.n,
		kind: kind,
		rect: rect,
		feature: &geojson.Feature{
			ID:         kind + "/" + strconv.Itoa(idx.n),
			Geometry:   g,
			Properties: props,
		},
	})
	idx.n++
}

// pixels returns the canvas positions of all coordinates of g.
func (idx *Index) pixels(g gogeom.T) [][2]float64 {
	flat := g.FlatCoords()
	stride := g.Stride()
	result := make([][2]float64, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		x, y := idx.canvas.ToPixel(element.MapCoords{Lon: flat[i], Lat: flat[i+1]})
		result = append(result, [2]float64{x, y})
	}
	return result
}

// Len returns the number of indexed elements.
func (idx *Index) Len() int { return idx.n }

// Query returns all features of the given kinds whose bounds intersect
// bbox, in archive order.
func (idx *Index) Query(bbox BBox, kinds []string) []*geojson.Feature {
	wanted := map[string]bool{}
	for _, k := range kinds {
		wanted[k] = true
	}
	var items []*item
	for _, s := range idx.tree.SearchIntersect(bbox.rect()) {
		it := s.(*item)
		if wanted[it.kind] {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })

	features := make([]*geojson.Feature, len(items))
	for i, it := range items {
		features[i] = it.feature
	}
	return features
}

// FilterTypes returns all features with a type or line in types. All
// features are returned for empty types.
func FilterTypes(features []*geojson.Feature, types map[string]bool) []*geojson.Feature {
	if len(types) == 0 {
		return features
	}
	var result []*geojson.Feature
	for _, f := range features {
		t, _ := f.Properties["type"].(string)
		line, _ := f.Properties["line"].(string)
		if types[t] || types[line] {
			result = append(result, f)
		}
	}
	return result
}

// WriteJSONLines writes one GeoJSON feature per line.
func WriteJSONLines(w io.Writer, features []*geojson.Feature) error {
	enc := json.NewEncoder(w)
	for _, f := range features {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollection writes all features as a single GeoJSON feature
// collection.
func WriteCollection(w io.Writer, features []*geojson.Feature) error {
	return json.NewEncoder(w).Encode(&geojson.FeatureCollection{Features: features})
}
