// Package pipeline runs all stages for a configuration.
package pipeline

import (
	"os"

	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/config"
	"github.com/omniscale/tubemap/database/postgis"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/etl"
	"github.com/omniscale/tubemap/etl/export"
	"github.com/omniscale/tubemap/etl/parseosm"
	"github.com/omniscale/tubemap/etl/semantic"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/stats"
)

// Run runs all stages in the run directory of conf. The export stage only
// runs with a configured connection. Metrics are written to the metrics
// file even if a stage fails.
func Run(conf *config.Config) (err error) {
	if conf.MetricsFile != "" {
		defer func() {
			if werr := stats.WriteFile(conf.MetricsFile); werr != nil {
				log.Printf("[error] writing metrics: %s", werr)
				if err == nil {
					err = werr
				}
			}
		}()
	}

	dir := conf.RunDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating run directory")
	}
	log.Printf("[info] run directory %s", dir)

	// each stage in its own scope so that the data of previous stages can
	// be collected
	if err := parseOSM(dir, conf); err != nil {
		return err
	}
	if err := semanticMap(dir); err != nil {
		return err
	}
	if conf.Connection != "" {
		if err := exportPostGIS(dir, conf); err != nil {
			return err
		}
	}
	return nil
}

func parseOSM(dir string, conf *config.Config) error {
	return etl.Process[parseosm.Input, *element.OSMData](dir, parseosm.New(parseosm.Options{
		DataPath:          conf.DataPath,
		NodeStore:         conf.NodeStore,
		AllowEmptyMembers: conf.AllowEmptyMembers,
	}))
}

func semanticMap(dir string) error {
	return etl.Process[*element.OSMData, *element.SemanticMapElements](dir, semantic.New(nil))
}

func exportPostGIS(dir string, conf *config.Config) error {
	return etl.Process[*element.SemanticMapElements, *postgis.Rows](dir, export.New(conf.Connection))
}

// Stages returns the names of all stages in run order.
func Stages() []string {
	return []string{parseosm.Name, semantic.Name, export.Name}
}

func artifact(name string) (etl.Artifact, error) {
	switch name {
	case parseosm.Name:
		return parseosm.New(parseosm.Options{}), nil
	case semantic.Name:
		return semantic.New(nil), nil
	case export.Name:
		return export.New(""), nil
	}
	return nil, errors.Errorf("unknown stage %q", name)
}

// Clean removes the outputs of the named stages, or of all stages if no
// name is given. Later stages are not removed automatically.
func Clean(conf *config.Config, names ...string) error {
	if len(names) == 0 {
		names = Stages()
	}
	dir := conf.RunDir()
	for _, name := range names {
		a, err := artifact(name)
		if err != nil {
			return err
		}
		if err := etl.Clean(dir, a); err != nil {
			return err
		}
	}
	return nil
}
