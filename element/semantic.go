package element

import (
	"fmt"

	osm "github.com/omniscale/go-osm"
)

// MapCoords is a WGS84 coordinate. Two MapCoords are equal if both floats
// are bit-identical, so MapCoords can be used as a map key for joining
// paths at shared nodes.
type MapCoords struct {
	Lat float64
	Lon float64
}

func NodeCoords(nd *osm.Node) MapCoords {
	return MapCoords{Lat: nd.Lat, Lon: nd.Long}
}

// Path is an ordered polyline.
type Path []MapCoords

// WayPath returns the path of all nodes of w.
func WayPath(w *osm.Way) Path {
	p := make(Path, len(w.Nodes))
	for i := range w.Nodes {
		p[i] = NodeCoords(&w.Nodes[i])
	}
	return p
}

func (p Path) First() MapCoords { return p[0] }
func (p Path) Last() MapCoords  { return p[len(p)-1] }

// IsClosed returns whether the path has at least four coordinates and ends
// at its start.
func (p Path) IsClosed() bool {
	return len(p) >= 4 && p[0] == p[len(p)-1]
}

// Reversed returns a reversed copy of p.
func (p Path) Reversed() Path {
	r := make(Path, len(p))
	for i, c := range p {
		r[len(p)-1-i] = c
	}
	return r
}

type AreaType int

const (
	Park AreaType = iota
	Water
)

var areaTypeNames = []string{"park", "water"}

func (t AreaType) String() string { return enumName(areaTypeNames, int(t)) }

// Area is a park or water polygon. Polygons are the maximal chains built
// from the ways of a single way or relation; they are not necessarily closed.
type Area struct {
	Type     AreaType
	Polygons []Path
}

type StationType int

const (
	Underground StationType = iota
	Overground
	DLR
	ElizabethLine
)

var stationTypeNames = []string{"underground", "overground", "dlr", "elizabeth_line"}

func (t StationType) String() string { return enumName(stationTypeNames, int(t)) }

type TransportStation struct {
	Name string
	Type StationType
	Lat  float64
	Lon  float64
}

func (s *TransportStation) Coords() MapCoords { return MapCoords{Lat: s.Lat, Lon: s.Lon} }

type LandmarkType int

const (
	Lgbtq LandmarkType = iota
	LgbtqMen
	CocktailBar
	ClimbingBoulder
	ClimbingRope
	ClimbingOutdoor
	Gym
	Hospital
	MusicVenue
	Tree
	TubeEmergencyExit
	TempleAetheriusSociety
	TempleBuddhist
	TempleChristian
	TempleHindu
	TempleHumanist
	TempleJain
	TempleJewish
	TempleMuslim
	TempleRastafarian
	TempleRosicrucian
	TempleScientologist
	TempleSelfRealizationFellowship
	TempleSikh
)

var landmarkTypeNames = []string{
	"lgbtq",
	"lgbtq_men",
	"cocktail_bar",
	"climbing_boulder",
	"climbing_rope",
	"climbing_outdoor",
	"gym",
	"hospital",
	"music_venue",
	"tree",
	"tube_emergency_exit",
	"temple_aetherius_society",
	"temple_buddhist",
	"temple_christian",
	"temple_hindu",
	"temple_humanist",
	"temple_jain",
	"temple_jewish",
	"temple_muslim",
	"temple_rastafarian",
	"temple_rosicrucian",
	"temple_scientologist",
	"temple_self_realization_fellowship",
	"temple_sikh",
}

func (t LandmarkType) String() string { return enumName(landmarkTypeNames, int(t)) }

type Landmark struct {
	Type LandmarkType
	Lat  float64
	Lon  float64
}

func (l *Landmark) Coords() MapCoords { return MapCoords{Lat: l.Lat, Lon: l.Lon} }

// TubeLine is a named transit line. The order of the constants is the
// order in which lines are stacked when drawn.
type TubeLine int

const (
	Bakerloo TubeLine = iota
	Central
	Circle
	District
	DLRLine
	Elizabeth
	HammersmithAndCity
	Jubilee
	Metropolitan
	Northern
	OvergroundLine
	Piccadilly
	Victoria
	WaterlooAndCity
)

var tubeLineNames = []string{
	"bakerloo",
	"central",
	"circle",
	"district",
	"dlr",
	"elizabeth",
	"hammersmith_and_city",
	"jubilee",
	"metropolitan",
	"northern",
	"overground",
	"piccadilly",
	"victoria",
	"waterloo_and_city",
}

func (l TubeLine) String() string { return enumName(tubeLineNames, int(l)) }

type TubeRail struct {
	Line TubeLine
	Path Path
}

// SemanticMapElements is everything the renderer draws.
type SemanticMapElements struct {
	Stations  []TransportStation
	Rails     []Path
	Roads     []Path
	Areas     []Area
	Landmarks []Landmark
	TubeRails []TubeRail
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(names []string, kind, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func ParseAreaType(s string) (AreaType, error) {
	i, err := parseEnum(areaTypeNames, "area type", s)
	return AreaType(i), err
}

func ParseStationType(s string) (StationType, error) {
	i, err := parseEnum(stationTypeNames, "station type", s)
	return StationType(i), err
}

func ParseLandmarkType(s string) (LandmarkType, error) {
	i, err := parseEnum(landmarkTypeNames, "landmark type", s)
	return LandmarkType(i), err
}

func ParseTubeLine(s string) (TubeLine, error) {
	i, err := parseEnum(tubeLineNames, "tube line", s)
	return TubeLine(i), err
}
