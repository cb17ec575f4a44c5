// Package semantic is the second pipeline stage. It classifies the raw
// archive into the semantic map elements drawn by the renderer.
package semantic

import (
	"io"
	"path/filepath"

	"github.com/omniscale/tubemap/archive"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/etl/parseosm"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/mapping"
	"github.com/omniscale/tubemap/stats"
)

const (
	Name           = "semantic_map"
	OutputFileName = "semantic_map.pb"
)

type Stage struct {
	classifier *mapping.Classifier
}

// New returns the stage with the given classifier. A nil classifier uses
// the default rules.
func New(c *mapping.Classifier) *Stage {
	if c == nil {
		c = mapping.NewClassifier()
	}
	return &Stage{classifier: c}
}

func (s *Stage) Name() string           { return Name }
func (s *Stage) OutputFileName() string { return OutputFileName }

func (s *Stage) Extract(dir string) (*element.OSMData, error) {
	return archive.ReadOSMFile(filepath.Join(dir, parseosm.OutputFileName))
}

func (s *Stage) Transform(data *element.OSMData) (*element.SemanticMapElements, error) {
	sem, err := s.classifier.Classify(data)
	if err != nil {
		return nil, err
	}
	for category, n := range Counts(sem) {
		stats.SemanticElements.WithLabelValues(category).Set(float64(n))
	}
	log.Printf("[info] %d stations, %d rails, %d roads, %d areas, %d landmarks, %d tube rails",
		len(sem.Stations), len(sem.Rails), len(sem.Roads), len(sem.Areas), len(sem.Landmarks), len(sem.TubeRails))
	return sem, nil
}

func (s *Stage) Load(w io.Writer, sem *element.SemanticMapElements) error {
	return archive.WriteSemantic(w, sem)
}

// Counts returns the number of elements per category.
func Counts(sem *element.SemanticMapElements) map[string]int {
	return map[string]int{
		"stations":   len(sem.Stations),
		"rails":      len(sem.Rails),
		"roads":      len(sem.Roads),
		"areas":      len(sem.Areas),
		"landmarks":  len(sem.Landmarks),
		"tube_rails": len(sem.TubeRails),
	}
}
