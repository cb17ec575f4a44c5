package reader

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

type state int

const (
	top state = iota
	inNode
	inWay
	inRelation
)

func (s state) String() string {
	switch s {
	case inNode:
		return "node"
	case inWay:
		return "way"
	case inRelation:
		return "relation"
	default:
		return "top level"
	}
}

// parseContext is the element currently being parsed.
type parseContext struct {
	state state
	node  osm.Node
	way   osm.Way
	rel   osm.Relation
}

func (c *parseContext) tags() osm.Tags {
	switch c.state {
	case inNode:
		return c.node.Tags
	case inWay:
		return c.way.Tags
	case inRelation:
		return c.rel.Tags
	}
	return nil
}

type xmlParser struct {
	dec   *xml.Decoder
	graph *Graph
	ctx   parseContext
}

// ParseXML parses an OSM XML document into g. Nodes must appear before
// the ways that reference them and ways before their relations.
func ParseXML(r io.Reader, g *Graph) error {
	p := &xmlParser{dec: xml.NewDecoder(r), graph: g}
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			if p.ctx.state != top {
				return p.errorf("unexpected end of document in %s", p.ctx.state)
			}
			return nil
		}
		if err != nil {
			if serr, ok := err.(*xml.SyntaxError); ok {
				return &ParseError{Line: serr.Line, Msg: serr.Msg}
			}
			return errors.Wrap(err, "reading xml")
		}
		if err := p.handle(tok); err != nil {
			return err
		}
	}
}

func (p *xmlParser) errorf(format string, args ...interface{}) error {
	line, _ := p.dec.InputPos()
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *xmlParser) wrap(err error) error {
	line, _ := p.dec.InputPos()
	return errors.Wrapf(err, "line %d", line)
}

func (p *xmlParser) handle(tok xml.Token) error {
	switch tok := tok.(type) {
	case xml.StartElement:
		return p.start(tok)
	case xml.EndElement:
		return p.end(tok)
	case xml.CharData:
		if len(bytes.TrimSpace(tok)) > 0 {
			return p.errorf("unexpected text %q", string(bytes.TrimSpace(tok)))
		}
	case xml.ProcInst:
		if tok.Target != "xml" {
			return p.errorf("unexpected processing instruction %q", tok.Target)
		}
	case xml.Comment:
		return p.errorf("unexpected comment")
	case xml.Directive:
		return p.errorf("unexpected directive")
	}
	return nil
}

func (p *xmlParser) start(tok xml.StartElement) error {
	switch tok.Name.Local {
	case "node":
		if p.ctx.state != top {
			return p.errorf("node in %s", p.ctx.state)
		}
		nd, err := p.parseNode(tok.Attr)
		if err != nil {
			return err
		}
		p.ctx.node = nd
		p.ctx.state = inNode
	case "way":
		if p.ctx.state != top {
			return p.errorf("way in %s", p.ctx.state)
		}
		id, err := p.requireInt(tok.Attr, "id")
		if err != nil {
			return err
		}
		p.ctx.way = osm.Way{}
		p.ctx.way.ID = id
		p.ctx.way.Tags = osm.Tags{}
		p.ctx.state = inWay
	case "relation":
		if p.ctx.state != top {
			return p.errorf("relation in %s", p.ctx.state)
		}
		id, err := p.requireInt(tok.Attr, "id")
		if err != nil {
			return err
		}
		p.ctx.rel = osm.Relation{}
		p.ctx.rel.ID = id
		p.ctx.rel.Tags = osm.Tags{}
		p.ctx.state = inRelation
	case "nd":
		if p.ctx.state != inWay {
			return p.errorf("nd in %s", p.ctx.state)
		}
		ref, err := p.requireInt(tok.Attr, "ref")
		if err != nil {
			return err
		}
		p.ctx.way.Refs = append(p.ctx.way.Refs, ref)
	case "member":
		if p.ctx.state != inRelation {
			return p.errorf("member in %s", p.ctx.state)
		}
		typ, ok := attr(tok.Attr, "type")
		if !ok {
			return p.errorf("member without type")
		}
		ref, err := p.requireInt(tok.Attr, "ref")
		if err != nil {
			return err
		}
		if typ != "way" {
			return nil
		}
		role, _ := attr(tok.Attr, "role")
		p.ctx.rel.Members = append(p.ctx.rel.Members, osm.Member{ID: ref, Type: osm.WayMember, Role: role})
	case "tag":
		if p.ctx.state == top {
			return p.errorf("tag at top level")
		}
		k, ok := attr(tok.Attr, "k")
		if !ok {
			return p.errorf("tag without k")
		}
		v, ok := attr(tok.Attr, "v")
		if !ok {
			return p.errorf("tag without v")
		}
		p.ctx.tags()[k] = v
	}
	return nil
}

func (p *xmlParser) end(tok xml.EndElement) error {
	switch tok.Name.Local {
	case "node":
		if p.ctx.state != inNode {
			return p.errorf("unexpected end of node in %s", p.ctx.state)
		}
		if err := p.graph.addNode(p.ctx.node); err != nil {
			return p.wrap(err)
		}
	case "way":
		if p.ctx.state != inWay {
			return p.errorf("unexpected end of way in %s", p.ctx.state)
		}
		if err := p.graph.addWay(p.ctx.way); err != nil {
			return p.wrap(err)
		}
	case "relation":
		if p.ctx.state != inRelation {
			return p.errorf("unexpected end of relation in %s", p.ctx.state)
		}
		if err := p.graph.addRelation(p.ctx.rel); err != nil {
			return p.wrap(err)
		}
	default:
		return nil
	}
	p.ctx = parseContext{}
	return nil
}

func (p *xmlParser) parseNode(attrs []xml.Attr) (osm.Node, error) {
	nd := osm.Node{}
	var hasID, hasLat, hasLon bool
	for _, a := range attrs {
		var err error
		switch a.Name.Local {
		case "id":
			nd.ID, err = strconv.ParseInt(a.Value, 10, 64)
			hasID = true
		case "lat":
			nd.Lat, err = strconv.ParseFloat(a.Value, 64)
			hasLat = true
		case "lon":
			nd.Long, err = strconv.ParseFloat(a.Value, 64)
			hasLon = true
		case "version":
		default:
			return nd, p.errorf("unknown node attribute %q", a.Name.Local)
		}
		if err != nil {
			return nd, p.errorf("invalid node attribute %s=%q", a.Name.Local, a.Value)
		}
	}
	if !hasID || !hasLat || !hasLon {
		return nd, p.errorf("node requires id, lat and lon")
	}
	nd.Tags = osm.Tags{}
	return nd, nil
}

func (p *xmlParser) requireInt(attrs []xml.Attr, name string) (int64, error) {
	v, ok := attr(attrs, name)
	if !ok {
		return 0, p.errorf("missing attribute %s", name)
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, p.errorf("invalid attribute %s=%q", name, v)
	}
	return i, nil
}

func attr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
