package parseosm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscale/tubemap/archive"
	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/element"
	"github.com/omniscale/tubemap/etl"
)

const doc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
 <node id="1" lat="51.5" lon="-0.1"><tag k="natural" v="tree"/></node>
 <node id="2" lat="51.6" lon="-0.2"/>
 <node id="3" lat="51.7" lon="-0.3"/>
 <way id="10"><nd ref="1"/><nd ref="2"/><nd ref="99"/><tag k="highway" v="primary"/></way>
 <way id="11"><nd ref="2"/><nd ref="3"/></way>
 <relation id="20">
  <member type="way" ref="10" role="outer"/>
  <member type="node" ref="1" role=""/>
  <tag k="leisure" v="park"/>
 </relation>
</osm>
`

func writeInput(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "test.osm")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcess(t *testing.T) {
	for _, store := range []string{cache.Memory, cache.Badger} {
		t.Run(store, func(t *testing.T) {
			dir := t.TempDir()
			s := New(Options{DataPath: writeInput(t, doc), NodeStore: store})
			if err := etl.Process(dir, etl.Stage[Input, *element.OSMData](s)); err != nil {
				t.Fatal(err)
			}

			data, err := archive.ReadOSMFile(filepath.Join(dir, OutputFileName))
			if err != nil {
				t.Fatal(err)
			}
			if len(data.Nodes) != 3 || len(data.Ways) != 2 || len(data.Relations) != 1 {
				t.Fatalf("unexpected counts %d %d %d", len(data.Nodes), len(data.Ways), len(data.Relations))
			}
			w := data.Ways[10]
			if len(w.Nodes) != 2 || w.Nodes[0].ID != 1 || w.Nodes[1].ID != 2 {
				t.Errorf("unexpected way nodes %v", w.Nodes)
			}
			if w.Tags["highway"] != "primary" {
				t.Errorf("unexpected way tags %v", w.Tags)
			}
			rel := data.Relations[20]
			if len(rel.Members) != 1 || rel.Members[0].Way == nil || rel.Members[0].Way.ID != 10 {
				t.Errorf("unexpected members %v", rel.Members)
			}
			if data.Nodes[1].Tags["natural"] != "tree" {
				t.Errorf("unexpected node tags %v", data.Nodes[1].Tags)
			}

			if _, err := os.Stat(filepath.Join(dir, "nodes.badger")); !os.IsNotExist(err) {
				t.Error("node table not removed")
			}
		})
	}
}

func TestProcessInvalidInput(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{DataPath: writeInput(t, `<osm><node id="1" lat="1" lon="1" user="x"/></osm>`)})
	err := etl.Process[Input, *element.OSMData](dir, s)
	if err == nil {
		t.Fatal("expected error")
	}
	if stepErr, ok := err.(*etl.StepError); !ok || stepErr.Step != etl.StepTransform {
		t.Errorf("unexpected error %v", err)
	}
	if ok, _ := etl.IsCached(dir, s); ok {
		t.Error("output written for invalid input")
	}
}

func TestExtractMissingInput(t *testing.T) {
	s := New(Options{DataPath: filepath.Join(t.TempDir(), "missing.osm")})
	if _, err := s.Extract(t.TempDir()); err == nil {
		t.Error("expected error")
	}
}

func TestAllowEmptyMembers(t *testing.T) {
	input := writeInput(t, `<osm>
 <node id="1" lat="1" lon="1"/>
 <way id="10"><nd ref="5"/></way>
</osm>`)

	if _, err := New(Options{DataPath: input}).Transform(Input{DataPath: input, Dir: t.TempDir()}); err == nil {
		t.Error("expected error for empty way")
	}

	data, err := New(Options{DataPath: input, AllowEmptyMembers: true}).Transform(Input{DataPath: input, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Ways) != 0 || len(data.Nodes) != 1 {
		t.Errorf("unexpected data %v", data)
	}
}
