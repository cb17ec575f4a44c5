// Package export is the optional last pipeline stage. It copies all
// semantic map elements into PostGIS tables and records a summary of the
// import as its output.
package export

import (
	"io"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/omniscale/tubemap/archive"
	"github.com/omniscale/tubemap/database/postgis"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/etl/semantic"
	"github.com/omniscale/tubemap/stats"
)

const (
	Name           = "postgis_export"
	OutputFileName = "postgis_export.yml"
)

// Importer writes rows into the database.
type Importer interface {
	Import(rows *postgis.Rows) (map[string]int, error)
}

// Summary is written as the stage output.
type Summary struct {
	Schema   string         `yaml:"schema"`
	Prefix   string         `yaml:"prefix"`
	Tables   map[string]int `yaml:"tables"`
	Skipped  int            `yaml:"skipped"`
	Imported time.Time      `yaml:"imported"`
}

type Stage struct {
	open func() (Importer, postgis.Params, error)
}

// New returns the stage for a PostGIS connection string. The connection
// is opened in the load step.
func New(connection string) *Stage {
	return &Stage{open: func() (Importer, postgis.Params, error) {
		params, err := postgis.ParseConnection(connection)
		if err != nil {
			return nil, params, err
		}
		pg, err := postgis.Open(connection)
		if err != nil {
			return nil, params, err
		}
		return &closingImporter{pg}, params, nil
	}}
}

type closingImporter struct {
	pg *postgis.PostGIS
}

func (c *closingImporter) Import(rows *postgis.Rows) (map[string]int, error) {
	defer c.pg.Close()
	return c.pg.Import(rows)
}

func (s *Stage) Name() string           { return Name }
func (s *Stage) OutputFileName() string { return OutputFileName }

func (s *Stage) Extract(dir string) (*element.SemanticMapElements, error) {
	return archive.ReadSemanticFile(filepath.Join(dir, semantic.OutputFileName))
}

func (s *Stage) Transform(sem *element.SemanticMapElements) (*postgis.Rows, error) {
	return postgis.NewRows(sem)
}

func (s *Stage) Load(w io.Writer, rows *postgis.Rows) error {
	importer, params, err := s.open()
	if err != nil {
		return err
	}
	counts, err := importer.Import(rows)
	if err != nil {
		return err
	}
	for table, n := range counts {
		stats.ExportedRows.WithLabelValues(table).Add(float64(n))
	}

	out, err := yaml.Marshal(&Summary{
		Schema:   params.Schema,
		Prefix:   params.Prefix,
		Tables:   counts,
		Skipped:  rows.Skipped,
		Imported: time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
