package reader

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/cache"
	"github.com/omniscale/tubemap/log"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <bounds minlat="51.0" minlon="-0.5" maxlat="52.0" maxlon="0.5"/>
`

func parse(t *testing.T, doc string) (*Graph, error) {
	t.Helper()
	g := NewGraph(cache.NewMemoryTable())
	err := ParseXML(strings.NewReader(header+doc+"</osm>\n"), g)
	return g, err
}

func mustParse(t *testing.T, doc string) *Graph {
	t.Helper()
	g, err := parse(t, doc)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestParseNodes(t *testing.T) {
	g := mustParse(t, `
 <node id="1" lat="51.5" lon="-0.12" version="3">
  <tag k="railway" v="station"/>
  <tag k="name" v="Bank &amp; Monument"/>
  <tag k="name" v="Bank"/>
 </node>
 <node id="2" lat="51.6" lon="-0.13"/>
`)
	if g.Counts.Nodes != 2 || g.Nodes.Len() != 2 {
		t.Fatalf("unexpected node count %d", g.Counts.Nodes)
	}
	nd, ok, _ := g.Nodes.Get(1)
	if !ok {
		t.Fatal("node 1 missing")
	}
	if nd.Lat != 51.5 || nd.Long != -0.12 {
		t.Errorf("unexpected coords %v %v", nd.Lat, nd.Long)
	}
	if nd.Tags["name"] != "Bank" || nd.Tags["railway"] != "station" {
		t.Errorf("unexpected tags %v", nd.Tags)
	}
	nd, _, _ = g.Nodes.Get(2)
	if nd.Tags == nil || len(nd.Tags) != 0 {
		t.Errorf("expected empty tags, got %v", nd.Tags)
	}
}

func TestParseWayRefOrder(t *testing.T) {
	g := mustParse(t, `
 <node id="1" lat="1" lon="1"/>
 <node id="2" lat="2" lon="2"/>
 <node id="3" lat="3" lon="3"/>
 <way id="10">
  <nd ref="3"/>
  <nd ref="1"/>
  <nd ref="2"/>
  <nd ref="1"/>
  <tag k="highway" v="primary"/>
 </way>
`)
	w, ok := g.Ways[10]
	if !ok {
		t.Fatal("way missing")
	}
	expected := []int64{3, 1, 2, 1}
	if len(w.Nodes) != len(expected) {
		t.Fatalf("unexpected nodes %v", w.Nodes)
	}
	for i, id := range expected {
		if w.Nodes[i].ID != id || w.Refs[i] != id {
			t.Errorf("node %d: got %d, want %d", i, w.Nodes[i].ID, id)
		}
		if w.Nodes[i].Lat != float64(id) {
			t.Errorf("node %d has no copied coordinates: %v", i, w.Nodes[i])
		}
	}
	if w.Tags["highway"] != "primary" {
		t.Errorf("unexpected tags %v", w.Tags)
	}
}

func TestParseUnresolvedNode(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	g := mustParse(t, `
 <node id="1" lat="1" lon="1"/>
 <node id="2" lat="2" lon="2"/>
 <way id="10">
  <nd ref="1"/>
  <nd ref="99"/>
  <nd ref="2"/>
 </way>
`)
	w := g.Ways[10]
	if len(w.Nodes) != 2 || w.Nodes[0].ID != 1 || w.Nodes[1].ID != 2 {
		t.Errorf("unexpected nodes %v", w.Nodes)
	}
	if g.Counts.UnresolvedNodes != 1 {
		t.Errorf("unexpected unresolved count %d", g.Counts.UnresolvedNodes)
	}
	if !strings.Contains(buf.String(), "unknown node 99") {
		t.Errorf("missing warning in %q", buf.String())
	}
}

func TestParseRelation(t *testing.T) {
	g := mustParse(t, `
 <node id="1" lat="1" lon="1"/>
 <node id="2" lat="2" lon="2"/>
 <way id="10"><nd ref="1"/><nd ref="2"/></way>
 <way id="11"><nd ref="2"/><nd ref="1"/></way>
 <relation id="100">
  <member type="node" ref="1" role="label"/>
  <member type="way" ref="11" role="outer"/>
  <member type="way" ref="10" role="outer"/>
  <member type="relation" ref="5" role=""/>
  <tag k="leisure" v="park"/>
 </relation>
`)
	r, ok := g.Relations[100]
	if !ok {
		t.Fatal("relation missing")
	}
	if len(r.Members) != 2 || r.Members[0].ID != 11 || r.Members[1].ID != 10 {
		t.Fatalf("unexpected members %v", r.Members)
	}
	if r.Members[0].Way == nil || r.Members[0].Way.Nodes[0].ID != 2 {
		t.Errorf("member way not copied: %v", r.Members[0].Way)
	}
	if r.Members[0].Role != "outer" {
		t.Errorf("unexpected role %q", r.Members[0].Role)
	}
	if r.Tags["leisure"] != "park" {
		t.Errorf("unexpected tags %v", r.Tags)
	}
}

func TestParseUnresolvedWay(t *testing.T) {
	_, err := parse(t, `
 <node id="1" lat="1" lon="1"/>
 <way id="10"><nd ref="1"/></way>
 <relation id="100">
  <member type="way" ref="10" role=""/>
  <member type="way" ref="11" role=""/>
 </relation>
`)
	if errors.Cause(err) != ErrUnresolvedWay {
		t.Errorf("expected ErrUnresolvedWay, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := parse(t, `<way id="10"><nd ref="1"/></way>`)
	if errors.Cause(err) != ErrEmptyWay {
		t.Errorf("expected ErrEmptyWay, got %v", err)
	}
	_, err = parse(t, `<relation id="10"><member type="node" ref="1" role=""/></relation>`)
	if errors.Cause(err) != ErrEmptyRelation {
		t.Errorf("expected ErrEmptyRelation, got %v", err)
	}
}

func TestParseAllowEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	g := NewGraph(cache.NewMemoryTable())
	g.AllowEmpty = true
	doc := header + `
 <way id="10"><nd ref="1"/></way>
 <relation id="11"><tag k="type" v="multipolygon"/></relation>
</osm>`
	if err := ParseXML(strings.NewReader(doc), g); err != nil {
		t.Fatal(err)
	}
	if len(g.Ways) != 0 || len(g.Relations) != 0 {
		t.Errorf("empty elements not dropped: %v %v", g.Ways, g.Relations)
	}
	if g.Counts.DroppedWays != 1 || g.Counts.DroppedRels != 1 {
		t.Errorf("unexpected counts %+v", g.Counts)
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"unknown node attribute", `<node id="1" lat="1" lon="1" user="foo"/>`},
		{"missing lat", `<node id="1" lon="1"/>`},
		{"invalid id", `<node id="x" lat="1" lon="1"/>`},
		{"invalid lat", `<node id="1" lat="north" lon="1"/>`},
		{"tag at top level", `<tag k="a" v="b"/>`},
		{"tag without value", `<node id="1" lat="1" lon="1"><tag k="a"/></node>`},
		{"nd outside way", `<node id="1" lat="1" lon="1"><nd ref="1"/></node>`},
		{"member outside relation", `<way id="1"><member type="way" ref="1" role=""/></way>`},
		{"nested node", `<way id="1"><node id="1" lat="1" lon="1"/></way>`},
		{"text", `<node id="1" lat="1" lon="1">text</node>`},
		{"comment", `<!-- comment -->`},
		{"way without id", `<way><nd ref="1"/></way>`},
		{"nd without ref", `<node id="1" lat="1" lon="1"/><way id="1"><nd/></way>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.doc)
			if err == nil {
				t.Fatal("expected error")
			}
			if _, ok := errors.Cause(err).(*ParseError); !ok {
				t.Errorf("expected ParseError, got %T %v", err, err)
			}
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := parse(t, "\n\n<tag k=\"a\" v=\"b\"/>")
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected ParseError, got %v", err)
	}
	// three header lines plus two empty lines
	if perr.Line != 6 {
		t.Errorf("unexpected line %d", perr.Line)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, doc := range []string{
		`<osm><node id="1" lat="1" lon="1"></osm>`,
		"<osm><node id=\"1\" lat=\"1\" lon=\"1\"><tag k=\"a\" v=\"\xff\"/></node></osm>",
		`<osm><node id="1" lat="1" lon="1">`,
	} {
		g := NewGraph(cache.NewMemoryTable())
		if err := ParseXML(strings.NewReader(doc), g); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestOSMData(t *testing.T) {
	g := mustParse(t, `
 <node id="1" lat="1" lon="1"/>
 <node id="2" lat="2" lon="2"/>
 <way id="10"><nd ref="1"/><nd ref="2"/></way>
 <relation id="100"><member type="way" ref="10" role=""/></relation>
`)
	data, err := g.OSMData()
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Nodes) != 2 || len(data.Ways) != 1 || len(data.Relations) != 1 {
		t.Errorf("unexpected data %v", data)
	}
}
