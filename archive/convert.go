package archive

import (
	"sort"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/tubemap/element"
)

func tagsAsArray(tags osm.Tags) []string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make([]string, 0, 2*len(tags))
	for _, k := range keys {
		result = append(result, k, tags[k])
	}
	return result
}

func tagsFromArray(arr []string) osm.Tags {
	if len(arr) == 0 {
		return osm.Tags{}
	}
	result := make(osm.Tags, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		result[arr[i]] = arr[i+1]
	}
	return result
}

func nodeMsg(n *osm.Node) *Node {
	return &Node{Id: n.ID, Lat: n.Lat, Lon: n.Long, Tags: tagsAsArray(n.Tags)}
}

func nodeFromMsg(m *Node) osm.Node {
	n := osm.Node{Lat: m.Lat, Long: m.Lon}
	n.ID = m.Id
	n.Tags = tagsFromArray(m.Tags)
	return n
}

func wayMsg(w *osm.Way) *Way {
	m := &Way{Id: w.ID, Tags: tagsAsArray(w.Tags)}
	m.Nodes = make([]*Node, len(w.Nodes))
	for i := range w.Nodes {
		m.Nodes[i] = nodeMsg(&w.Nodes[i])
	}
	return m
}

func wayFromMsg(m *Way) osm.Way {
	w := osm.Way{}
	w.ID = m.Id
	w.Tags = tagsFromArray(m.Tags)
	w.Nodes = make([]osm.Node, len(m.Nodes))
	w.Refs = make([]int64, len(m.Nodes))
	for i, nm := range m.Nodes {
		w.Nodes[i] = nodeFromMsg(nm)
		w.Refs[i] = nm.Id
	}
	return w
}

func relationMsg(r *osm.Relation) *Relation {
	m := &Relation{Id: r.ID, Tags: tagsAsArray(r.Tags)}
	for _, w := range element.MemberWays(r) {
		m.Ways = append(m.Ways, wayMsg(w))
	}
	return m
}

func relationFromMsg(m *Relation) osm.Relation {
	r := osm.Relation{}
	r.ID = m.Id
	r.Tags = tagsFromArray(m.Tags)
	r.Members = make([]osm.Member, len(m.Ways))
	for i, wm := range m.Ways {
		w := wayFromMsg(wm)
		r.Members[i] = osm.Member{ID: w.ID, Type: osm.WayMember, Way: &w}
	}
	return r
}

func pathMsg(p element.Path) *Path {
	m := &Path{Lats: make([]float64, len(p)), Lons: make([]float64, len(p))}
	for i, c := range p {
		m.Lats[i] = c.Lat
		m.Lons[i] = c.Lon
	}
	return m
}

func pathFromMsg(m *Path) element.Path {
	if m == nil {
		return element.Path{}
	}
	n := len(m.Lats)
	if len(m.Lons) < n {
		n = len(m.Lons)
	}
	p := make(element.Path, n)
	for i := 0; i < n; i++ {
		p[i] = element.MapCoords{Lat: m.Lats[i], Lon: m.Lons[i]}
	}
	return p
}

func stationMsg(s *element.TransportStation) *Station {
	return &Station{Name: s.Name, Type: int32(s.Type), Lat: s.Lat, Lon: s.Lon}
}

func areaMsg(a *element.Area) *Area {
	m := &Area{Type: int32(a.Type)}
	for _, p := range a.Polygons {
		m.Polygons = append(m.Polygons, pathMsg(p))
	}
	return m
}

func areaFromMsg(m *Area) element.Area {
	a := element.Area{Type: element.AreaType(m.Type)}
	for _, pm := range m.Polygons {
		a.Polygons = append(a.Polygons, pathFromMsg(pm))
	}
	return a
}

// MarshalNode encodes a single node for the node tables.
func MarshalNode(n *osm.Node) ([]byte, error) {
	return marshal(nodeMsg(n))
}

// UnmarshalNode decodes a node encoded with MarshalNode.
func UnmarshalNode(data []byte) (osm.Node, error) {
	m := &Node{}
	if err := unmarshal(data, m); err != nil {
		return osm.Node{}, err
	}
	return nodeFromMsg(m), nil
}
