// Package element contains the raw OSM entity graph and the semantic map
// elements that are derived from it.
package element

import (
	"sort"

	osm "github.com/omniscale/go-osm"
)

// OSMData is the raw entity graph as read from an OSM file. Ways contain
// copies of their nodes and relations copies of their member ways, so no
// further lookups are required after parsing.
type OSMData struct {
	Nodes     map[int64]osm.Node
	Ways      map[int64]osm.Way
	Relations map[int64]osm.Relation
}

func NewOSMData() *OSMData {
	return &OSMData{
		Nodes:     make(map[int64]osm.Node),
		Ways:      make(map[int64]osm.Way),
		Relations: make(map[int64]osm.Relation),
	}
}

// MemberWays returns the way copies of all way members of rel in member order.
func MemberWays(rel *osm.Relation) []*osm.Way {
	ways := make([]*osm.Way, 0, len(rel.Members))
	for _, m := range rel.Members {
		if m.Type == osm.WayMember && m.Way != nil {
			ways = append(ways, m.Way)
		}
	}
	return ways
}

// SortedIds returns the keys of m in ascending order.
func SortedIds[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
