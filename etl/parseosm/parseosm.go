// Package parseosm is the first pipeline stage. It reads the configured OSM
// file and stores all nodes, ways and relations in the raw archive.
package parseosm

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/archive"
	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/reader"
	"github.com/omniscale/tubemap/stats"
)

const (
	Name           = "parse_osm"
	OutputFileName = "osm_elements.pb"
)

type Options struct {
	DataPath  string
	NodeStore string
	// AllowEmptyMembers drops ways without nodes and relations without
	// ways instead of failing.
	AllowEmptyMembers bool
	ProgressInterval  time.Duration
}

type Input struct {
	DataPath string
	// Dir is the run directory. On-disk node tables are created here.
	Dir string
}

type Stage struct {
	opts Options
}

func New(opts Options) *Stage {
	if opts.NodeStore == "" {
		opts.NodeStore = cache.Memory
	}
	if opts.ProgressInterval == 0 {
		opts.ProgressInterval = time.Second
	}
	return &Stage{opts: opts}
}

func (s *Stage) Name() string           { return Name }
func (s *Stage) OutputFileName() string { return OutputFileName }

func (s *Stage) Extract(dir string) (Input, error) {
	fi, err := os.Stat(s.opts.DataPath)
	if err != nil {
		return Input{}, errors.Wrap(err, "checking input file")
	}
	if fi.IsDir() {
		return Input{}, errors.Errorf("input %s is a directory", s.opts.DataPath)
	}
	return Input{DataPath: s.opts.DataPath, Dir: dir}, nil
}

func (s *Stage) Transform(in Input) (*element.OSMData, error) {
	nodes, err := cache.Open(s.opts.NodeStore, in.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "opening node table")
	}
	defer nodes.Close()

	g := reader.NewGraph(nodes)
	g.AllowEmpty = s.opts.AllowEmptyMembers
	g.Progress = stats.NewProgress(s.opts.ProgressInterval)
	err = reader.ReadFile(context.Background(), in.DataPath, g)
	g.Progress.Stop()
	if err != nil {
		return nil, err
	}

	c := g.Counts
	stats.UnresolvedNodes.Add(float64(c.UnresolvedNodes))
	log.Printf("[info] parsed %d nodes, %d ways, %d relations", c.Nodes, c.Ways, c.Relations)
	if c.UnresolvedNodes > 0 {
		log.Printf("[warn] %d unresolved node references", c.UnresolvedNodes)
	}
	if c.DroppedWays > 0 || c.DroppedRels > 0 {
		log.Printf("[warn] dropped %d empty ways and %d empty relations", c.DroppedWays, c.DroppedRels)
	}
	return g.OSMData()
}

func (s *Stage) Load(w io.Writer, data *element.OSMData) error {
	return archive.WriteOSM(w, data)
}
