package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/omniscale/tubemap"
	"github.com/omniscale/tubemap/archive"
	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/config"
	"github.com/omniscale/tubemap/etl/semantic"
	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/pipeline"
	"github.com/omniscale/tubemap/query"
	"github.com/omniscale/tubemap/stats"
)

func printCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\trun")
	fmt.Fprintln(os.Stderr, "\tclean")
	fmt.Fprintln(os.Stderr, "\tquery")
	fmt.Fprintln(os.Stderr, "\tversion")
}

func main() {
	if len(os.Args) <= 1 {
		printCmds()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		opts := parseOptions("run", os.Args[2:], nil)
		if err := pipeline.Run(&opts.Config); err != nil {
			log.Fatal("[fatal] ", err)
		}
	case "clean":
		opts := parseOptions("clean", os.Args[2:], nil)
		if err := pipeline.Clean(&opts.Config, opts.Args...); err != nil {
			log.Fatal("[fatal] ", err)
		}
	case "query":
		var bbox, kinds, types string
		var collection bool
		opts := parseOptions("query", os.Args[2:], func(flags *flag.FlagSet) {
			flags.StringVar(&bbox, "bbox", "", "minlon,minlat,maxlon,maxlat (default: canvas extent)")
			flags.StringVar(&kinds, "type", "", "element kinds ("+strings.Join(query.AllKinds, ",")+")")
			flags.StringVar(&types, "subtype", "", "station/area/landmark types or tube lines")
			flags.BoolVar(&collection, "geojson", false, "write a single feature collection")
		})
		if err := runQuery(&opts.Config, bbox, kinds, types, collection); err != nil {
			log.Fatal("[fatal] ", err)
		}
	case "version":
		fmt.Printf("%s %s(%s-%s-%s)", tubemap.Version, runtime.Version(), runtime.GOARCH, runtime.GOOS, runtime.Compiler)
		if v := cache.LevelDBVersion(); v != "" {
			fmt.Printf(" leveldb=%s", v)
		}
		fmt.Printf(" numcpu=%d\n", runtime.NumCPU())
	default:
		printCmds()
		log.Fatalf("[fatal] invalid command: '%s'", os.Args[1])
	}
}

func parseOptions(name string, args []string, extra func(*flag.FlagSet)) *config.Options {
	opts, err := config.Parse(name, args, extra)
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Quiet {
		log.SetMinLevel(log.LWarn)
	}
	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}
	if opts.Memprofile != "" {
		go stats.MemProfiler(opts.Memprofile, 10*time.Second)
	}
	return opts
}

func runQuery(conf *config.Config, bbox, kinds, types string, collection bool) error {
	canvas, err := conf.Canvas()
	if err != nil {
		return err
	}
	var b query.BBox
	if bbox == "" {
		b.MinLon, b.MinLat, b.MaxLon, b.MaxLat = canvas.Bounds()
	} else if b, err = query.ParseBBox(bbox); err != nil {
		return err
	}
	k, err := query.ParseKinds(kinds)
	if err != nil {
		return err
	}
	t, err := query.ParseTypes(types)
	if err != nil {
		return err
	}

	sem, err := archive.ReadSemanticFile(filepath.Join(conf.RunDir(), semantic.OutputFileName))
	if err != nil {
		return err
	}
	idx, err := query.NewIndex(sem, canvas)
	if err != nil {
		return err
	}
	features := query.FilterTypes(idx.Query(b, k), t)
	log.Printf("[info] %d of %d elements in %v", len(features), idx.Len(), b)
	if collection {
		return query.WriteCollection(os.Stdout, features)
	}
	return query.WriteJSONLines(os.Stdout, features)
}
