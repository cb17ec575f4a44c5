package postgis

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"
)

const (
	StationsTable  = "stations"
	RoadsTable     = "roads"
	RailsTable     = "rails"
	TubeRailsTable = "tube_rails"
	AreasTable     = "areas"
	LandmarksTable = "landmarks"

	GeometryColumn = "geometry"
	Srid           = 4326
)

type ColumnSpec struct {
	Name string
	Type string
}

type TableSpec struct {
	Name         string
	FullName     string
	Schema       string
	Columns      []ColumnSpec
	GeometryType string
	Srid         int
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("%s %s", pq.QuoteIdentifier(col.Name), col.Type)
}

func (spec *TableSpec) qualifiedName() string {
	return pq.QuoteIdentifier(spec.Schema) + "." + pq.QuoteIdentifier(spec.FullName)
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := []string{
		"id SERIAL PRIMARY KEY",
	}
	for _, col := range spec.Columns {
		cols = append(cols, col.AsSQL())
	}
	cols = append(cols, fmt.Sprintf("%s geometry(%s, %d)",
		pq.QuoteIdentifier(GeometryColumn), spec.GeometryType, spec.Srid))
	columnSQL := strings.Join(cols, ",\n            ")
	return fmt.Sprintf(`
        CREATE TABLE %s (
            %s
        );`,
		spec.qualifiedName(),
		columnSQL,
	)
}

func (spec *TableSpec) DropTableSQL() string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s`, spec.qualifiedName())
}

// CopySQL returns the COPY statement for rows in the order of
// CopyColumns.
func (spec *TableSpec) CopySQL() string {
	return pq.CopyInSchema(spec.Schema, spec.FullName, spec.CopyColumns()...)
}

func (spec *TableSpec) CopyColumns() []string {
	var cols []string
	for _, col := range spec.Columns {
		cols = append(cols, col.Name)
	}
	return append(cols, GeometryColumn)
}

func (spec *TableSpec) IndexSQL() string {
	return fmt.Sprintf(`CREATE INDEX %s ON %s USING GIST (%s)`,
		pq.QuoteIdentifier(spec.FullName+"_geom"),
		spec.qualifiedName(),
		pq.QuoteIdentifier(GeometryColumn),
	)
}

// NewTableSpecs returns the specs of all export tables by name.
func NewTableSpecs(schema, prefix string) map[string]*TableSpec {
	text := func(name string) ColumnSpec { return ColumnSpec{name, "TEXT"} }
	specs := map[string]*TableSpec{}
	add := func(name, geomType string, cols ...ColumnSpec) {
		specs[name] = &TableSpec{
			Name:         name,
			FullName:     prefix + name,
			Schema:       schema,
			Columns:      cols,
			GeometryType: geomType,
			Srid:         Srid,
		}
	}
	add(StationsTable, "POINT", text("name"), text("type"))
	add(RoadsTable, "LINESTRING")
	add(RailsTable, "LINESTRING")
	add(TubeRailsTable, "LINESTRING", text("line"))
	add(AreasTable, "MULTIPOLYGON", text("type"))
	add(LandmarksTable, "POINT", text("type"))
	return specs
}
