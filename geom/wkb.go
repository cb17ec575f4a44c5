package geom

import (
	"encoding/binary"

	"github.com/pkg/errors"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"

	"github.com/omniscale/tubemap/element"
)

// SRID of all element coordinates.
const SRID = 4326

var (
	ErrShortLineString = errors.New("line string requires at least two distinct coordinates")
	ErrNoRings         = errors.New("area without closed rings")
)

func unduplicate(p element.Path) element.Path {
	if len(p) < 2 {
		return p
	}
	result := make(element.Path, 1, len(p))
	result[0] = p[0]
	for _, c := range p[1:] {
		if c != result[len(result)-1] {
			result = append(result, c)
		}
	}
	return result
}

func flatCoords(p element.Path) []float64 {
	flat := make([]float64, 0, 2*len(p))
	for _, c := range p {
		flat = append(flat, c.Lon, c.Lat)
	}
	return flat
}

func Point(c element.MapCoords) *gogeom.Point {
	return gogeom.NewPointFlat(gogeom.XY, []float64{c.Lon, c.Lat}).SetSRID(SRID)
}

// LineString returns p as line string without repeated coordinates.
func LineString(p element.Path) (*gogeom.LineString, error) {
	p = unduplicate(p)
	if len(p) < 2 {
		return nil, ErrShortLineString
	}
	return gogeom.NewLineStringFlat(gogeom.XY, flatCoords(p)).SetSRID(SRID), nil
}

// MultiPolygon returns all closed polygons of an area as a multi polygon,
// one polygon per ring. Open chains and rings with less than four points
// are skipped and counted.
func MultiPolygon(area *element.Area) (*gogeom.MultiPolygon, int, error) {
	mp := gogeom.NewMultiPolygon(gogeom.XY).SetSRID(SRID)
	skipped := 0
	for _, p := range area.Polygons {
		p = unduplicate(p)
		if len(p) < 4 || !p.IsClosed() {
			skipped++
			continue
		}
		poly := gogeom.NewPolygon(gogeom.XY)
		if err := poly.Push(gogeom.NewLinearRingFlat(gogeom.XY, flatCoords(p))); err != nil {
			return nil, skipped, err
		}
		if err := mp.Push(poly); err != nil {
			return nil, skipped, err
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, skipped, ErrNoRings
	}
	return mp, skipped, nil
}

// EWKBHex encodes g as little endian hex EWKB as accepted by PostGIS.
func EWKBHex(g gogeom.T) (string, error) {
	return ewkbhex.Encode(g, binary.LittleEndian)
}
