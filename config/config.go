// Package config reads the tubemap configuration from a YAML file and
// command line flags. Flags take precedence over values from the file.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/proj"
)

type Config struct {
	DataPath          string  `yaml:"data_path"`
	CacheDir          string  `yaml:"cachedir"`
	TopLeftLon        float64 `yaml:"top_left_lon"`
	TopLeftLat        float64 `yaml:"top_left_lat"`
	PxPerDegLon       float64 `yaml:"px_per_deg_lon"`
	PxPerDegLat       float64 `yaml:"px_per_deg_lat"`
	WidthPx           int     `yaml:"width_px"`
	HeightPx          int     `yaml:"height_px"`
	NodeStore         string  `yaml:"node_store"`
	AllowEmptyMembers bool    `yaml:"allow_empty_members"`
	Connection        string  `yaml:"connection"`
	MetricsFile       string  `yaml:"metrics_file"`
	Quiet             bool    `yaml:"quiet"`
}

const (
	defaultCacheDir    = "/tmp/tubemap"
	defaultTopLeftLon  = -0.2
	defaultTopLeftLat  = 51.55
	defaultPxPerDegLon = 10000
	defaultPxPerDegLat = 16000
	defaultWidthPx     = 2000
	defaultHeightPx    = 1600
)

// Defaults returns a configuration for central London.
func Defaults() Config {
	return Config{
		CacheDir:    defaultCacheDir,
		TopLeftLon:  defaultTopLeftLon,
		TopLeftLat:  defaultTopLeftLat,
		PxPerDegLon: defaultPxPerDegLon,
		PxPerDegLat: defaultPxPerDegLat,
		WidthPx:     defaultWidthPx,
		HeightPx:    defaultHeightPx,
		NodeStore:   cache.Memory,
	}
}

// Load reads a YAML configuration file. Missing values are set to their
// defaults, unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	conf := Defaults()
	if err := yaml.UnmarshalStrict(data, &conf); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return &conf, nil
}

// RunDir returns the directory for all stage outputs of the configured
// input file.
func (c *Config) RunDir() string {
	return filepath.Join(c.CacheDir, filepath.Base(c.DataPath))
}

func (c *Config) Canvas() (*proj.Canvas, error) {
	return proj.NewCanvas(c.TopLeftLon, c.TopLeftLat, c.PxPerDegLon, c.PxPerDegLat, c.WidthPx, c.HeightPx)
}

type Options struct {
	Config
	ConfigFile  string
	Httpprofile string
	Memprofile  string
	// Args are the remaining non-flag arguments.
	Args []string
}

func addFlags(flags *flag.FlagSet, o *Options) {
	flags.StringVar(&o.ConfigFile, "config", o.ConfigFile, "config (yaml)")
	flags.StringVar(&o.DataPath, "data_path", o.DataPath, "OSM input file (.osm, .osm.xz, .osm.gz, .osm.bz2, .osm.pbf)")
	flags.StringVar(&o.CacheDir, "cachedir", o.CacheDir, "cache directory for stage outputs")
	flags.Float64Var(&o.TopLeftLon, "top_left_lon", o.TopLeftLon, "longitude of the top left canvas corner")
	flags.Float64Var(&o.TopLeftLat, "top_left_lat", o.TopLeftLat, "latitude of the top left canvas corner")
	flags.Float64Var(&o.PxPerDegLon, "px_per_deg_lon", o.PxPerDegLon, "horizontal pixels per degree")
	flags.Float64Var(&o.PxPerDegLat, "px_per_deg_lat", o.PxPerDegLat, "vertical pixels per degree")
	flags.IntVar(&o.WidthPx, "width_px", o.WidthPx, "canvas width")
	flags.IntVar(&o.HeightPx, "height_px", o.HeightPx, "canvas height")
	flags.StringVar(&o.NodeStore, "node_store", o.NodeStore, "node table while parsing (memory, badger, leveldb)")
	flags.BoolVar(&o.AllowEmptyMembers, "allow_empty_members", o.AllowEmptyMembers, "drop ways without nodes and relations without ways")
	flags.StringVar(&o.Connection, "connection", o.Connection, "PostGIS connection for the export stage")
	flags.StringVar(&o.MetricsFile, "metrics_file", o.MetricsFile, "write metrics to this file")
	flags.BoolVar(&o.Quiet, "quiet", o.Quiet, "quiet log output")
	flags.StringVar(&o.Httpprofile, "httpprofile", o.Httpprofile, "bind address for profile server")
	flags.StringVar(&o.Memprofile, "memprofile", o.Memprofile, "dir for memory profiles")
}

// NewFlagSet returns the flags of a subcommand bound to o. Flag defaults
// are the current values of o.
func NewFlagSet(name string, o *Options) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	addFlags(flags, o)
	return flags
}

// Parse parses the arguments of a subcommand. Values from -config are
// overwritten by explicit flags. extra can add subcommand specific flags
// and may be nil.
func Parse(name string, args []string, extra func(*flag.FlagSet)) (*Options, error) {
	return parse(name, args, os.Stderr, extra)
}

func parse(name string, args []string, output io.Writer, extra func(*flag.FlagSet)) (*Options, error) {
	opts := &Options{Config: Defaults()}
	flags := NewFlagSet(name, opts)
	if extra != nil {
		extra(flags)
	}
	flags.SetOutput(output)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		conf, err := Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		// parse again so that flags overwrite the file
		opts = &Options{Config: *conf}
		flags = NewFlagSet(name, opts)
		if extra != nil {
			extra(flags)
		}
		flags.SetOutput(io.Discard)
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
	}
	opts.Args = flags.Args()

	if errs := opts.check(); len(errs) != 0 {
		return nil, &CheckError{Errs: errs}
	}
	return opts, nil
}

func (o *Options) check() []error {
	errs := []error{}
	if o.DataPath == "" {
		errs = append(errs, errors.New("missing data_path"))
	}
	if o.CacheDir == "" {
		errs = append(errs, errors.New("missing cachedir"))
	}
	switch o.NodeStore {
	case cache.Memory, cache.Badger, cache.LevelDB:
	default:
		errs = append(errs, errors.Errorf("unknown node_store %q", o.NodeStore))
	}
	if o.PxPerDegLon <= 0 || o.PxPerDegLat <= 0 {
		errs = append(errs, errors.New("px_per_deg_lon and px_per_deg_lat need to be positive"))
	}
	if o.WidthPx < 0 || o.HeightPx < 0 {
		errs = append(errs, errors.New("width_px and height_px can't be negative"))
	}
	return errs
}

// CheckError lists all invalid options.
type CheckError struct {
	Errs []error
}

func (e *CheckError) Error() string {
	msg := "errors in config/options:"
	for _, err := range e.Errs {
		msg += "\n\t" + err.Error()
	}
	return msg
}
