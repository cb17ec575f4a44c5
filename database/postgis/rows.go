package postgis

import (
	"sort"

	"github.com/pkg/errors"
	gogeom "github.com/twpayne/go-geom"

	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/geom"
	"github.com/omniscale/tubemap/log"
)

// Rows holds the COPY rows per table. The last value of each row is the
// geometry as hex encoded EWKB.
type Rows struct {
	Tables map[string][][]interface{}
	// Skipped counts elements without a valid geometry.
	Skipped int
}

func (r *Rows) add(table string, g gogeom.T, values ...interface{}) error {
	wkb, err := geom.EWKBHex(g)
	if err != nil {
		return errors.Wrapf(err, "encoding %s geometry", table)
	}
	r.Tables[table] = append(r.Tables[table], append(values, wkb))
	return nil
}

// TableNames returns the names of all tables with rows in sorted order.
func (r *Rows) TableNames() []string {
	names := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRows converts all semantic map elements into table rows. Lines
// with less than two distinct points and areas without closed rings are
// skipped with a warning.
func NewRows(sem *element.SemanticMapElements) (*Rows, error) {
	r := &Rows{Tables: map[string][][]interface{}{}}

	for i := range sem.Stations {
		s := &sem.Stations[i]
		if err := r.add(StationsTable, geom.Point(s.Coords()), s.Name, s.Type.String()); err != nil {
			return nil, err
		}
	}
	for i := range sem.Landmarks {
		l := &sem.Landmarks[i]
		if err := r.add(LandmarksTable, geom.Point(l.Coords()), l.Type.String()); err != nil {
			return nil, err
		}
	}

	line := func(table string, p element.Path, values ...interface{}) error {
		ls, err := geom.LineString(p)
		if err == geom.ErrShortLineString {
			log.Printf("[warn] skipping %s geometry with %d points", table, len(p))
			r.Skipped++
			return nil
		}
		if err != nil {
			return err
		}
		return r.add(table, ls, values...)
	}
	for _, p := range sem.Roads {
		if err := line(RoadsTable, p); err != nil {
			return nil, err
		}
	}
	for _, p := range sem.Rails {
		if err := line(RailsTable, p); err != nil {
			return nil, err
		}
	}
	for _, t := range sem.TubeRails {
		if err := line(TubeRailsTable, t.Path, t.Line.String()); err != nil {
			return nil, err
		}
	}

	for i := range sem.Areas {
		a := &sem.Areas[i]
		mp, open, err := geom.MultiPolygon(a)
		if err == geom.ErrNoRings {
			log.Printf("[warn] skipping %s area without closed rings", a.Type)
			r.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		if open > 0 {
			log.Printf("[warn] %s area with %d open rings", a.Type, open)
		}
		if err := r.add(AreasTable, mp, a.Type.String()); err != nil {
			return nil, err
		}
	}
	return r, nil
}
