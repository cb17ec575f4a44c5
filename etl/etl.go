// Package etl runs pipeline stages. Each stage extracts its input from a
// run directory, transforms it and loads the result into a single output
// file in the same directory. An existing output file marks the stage as
// done and later runs skip it.
package etl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/log"
	"github.com/omniscale/tubemap/stats"
)

// Artifact names the output of a stage.
type Artifact interface {
	Name() string
	OutputFileName() string
}

type Stage[I, O any] interface {
	Artifact
	Extract(dir string) (I, error)
	Transform(in I) (O, error)
	Load(w io.Writer, out O) error
}

const (
	StepCache     = "cache"
	StepExtract   = "extract"
	StepTransform = "transform"
	StepLoad      = "load"
)

// StepError is returned by Process for failed stage steps.
type StepError struct {
	Stage string
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Step, e.Err)
}

func (e *StepError) Cause() error  { return e.Err }
func (e *StepError) Unwrap() error { return e.Err }

func OutputPath(dir string, a Artifact) string {
	return filepath.Join(dir, a.OutputFileName())
}

// IsCached returns whether the output of a exists in dir.
func IsCached(dir string, a Artifact) (bool, error) {
	fi, err := os.Stat(OutputPath(dir, a))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !fi.Mode().IsRegular() {
		return false, errors.Errorf("%s is not a regular file", OutputPath(dir, a))
	}
	return true, nil
}

// Clean removes the output of a from dir. Missing outputs are ignored.
func Clean(dir string, a Artifact) error {
	err := os.Remove(OutputPath(dir, a))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing output of %s", a.Name())
	}
	if err == nil {
		log.Printf("[info] %s: removed %s", a.Name(), OutputPath(dir, a))
	}
	return nil
}

// Process runs s in dir unless its output already exists.
func Process[I, O any](dir string, s Stage[I, O]) error {
	name := s.Name()
	cached, err := IsCached(dir, s)
	if err != nil {
		return fail(name, StepCache, err)
	}
	if cached {
		log.Printf("[info] %s: output %s exists, skipping", name, s.OutputFileName())
		stats.RecordStage(name, "cached")
		return nil
	}

	done := log.Step(name)
	defer done()

	log.Printf("[info] %s: extracting", name)
	start := time.Now()
	in, err := s.Extract(dir)
	if err != nil {
		return fail(name, StepExtract, err)
	}
	stats.RecordStep(name, StepExtract, time.Since(start))

	log.Printf("[info] %s: transforming", name)
	start = time.Now()
	out, err := s.Transform(in)
	if err != nil {
		return fail(name, StepTransform, err)
	}
	stats.RecordStep(name, StepTransform, time.Since(start))

	log.Printf("[info] %s: loading into %s", name, s.OutputFileName())
	start = time.Now()
	if err := writeAtomic(OutputPath(dir, s), func(w io.Writer) error {
		return s.Load(w, out)
	}); err != nil {
		return fail(name, StepLoad, err)
	}
	stats.RecordStep(name, StepLoad, time.Since(start))

	log.Printf("[info] %s: done", name)
	stats.RecordStage(name, "success")
	return nil
}

func fail(stage, step string, err error) error {
	log.Printf("[error] %s: %s failed: %s", stage, step, err)
	stats.RecordStage(stage, "failure")
	return &StepError{Stage: stage, Step: step, Err: err}
}

// writeAtomic writes into a temporary file next to path and renames it to
// path if write succeeds. The temporary file is removed on errors.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0644); err != nil {
		return err
	}
	if err = write(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
