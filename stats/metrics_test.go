package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/omniscale/tubemap/log"
)

func TestRecordStage(t *testing.T) {
	StageRuns.Reset()
	RecordStage("parse_osm", "success")
	RecordStage("parse_osm", "cached")
	RecordStage("parse_osm", "cached")

	if got := testutil.ToFloat64(StageRuns.WithLabelValues("parse_osm", "cached")); got != 2 {
		t.Errorf("expected 2 cached runs, got %v", got)
	}
	if got := testutil.ToFloat64(StageRuns.WithLabelValues("parse_osm", "success")); got != 1 {
		t.Errorf("expected 1 successful run, got %v", got)
	}
}

func TestRecordStep(t *testing.T) {
	RecordStep("semantic_map", "transform", 1500*time.Millisecond)
	if got := testutil.ToFloat64(StepDuration.WithLabelValues("semantic_map", "transform")); got != 1.5 {
		t.Errorf("unexpected duration %v", got)
	}
}

func TestWriteFile(t *testing.T) {
	SemanticElements.WithLabelValues("roads").Set(42)
	path := filepath.Join(t.TempDir(), "tubemap.prom")
	if err := WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `tubemap_semantic_elements{category="roads"} 42`) {
		t.Errorf("metric missing in %s", data)
	}
}

func TestProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	ParsedElements.Reset()
	p := NewProgress(time.Hour)
	p.AddNodes(10)
	p.AddNodes(5)
	p.AddWays(3)
	p.AddRelations(1)
	p.Stop()

	if got := testutil.ToFloat64(ParsedElements.WithLabelValues("node")); got != 15 {
		t.Errorf("expected 15 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(ParsedElements.WithLabelValues("relation")); got != 1 {
		t.Errorf("expected 1 relation, got %v", got)
	}
	if !strings.Contains(buf.String(), "[progress] Nodes:") {
		t.Errorf("missing progress output: %q", buf.String())
	}
}
