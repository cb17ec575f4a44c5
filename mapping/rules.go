package mapping

import (
	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/tubemap/element"
)

// Predicate matches a tag set.
type Predicate func(tags osm.Tags) bool

// Rule maps elements matching Match to Value.
type Rule[T any] struct {
	Name  string
	Match Predicate
	Value T
}

// First returns the value of the first matching rule.
func First[T any](rules []Rule[T], tags osm.Tags) (T, bool) {
	for _, r := range rules {
		if r.Match(tags) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}

// Key matches if key is present.
func Key(key string) Predicate {
	return func(tags osm.Tags) bool { return HasKey(tags, key) }
}

// KV matches if key contains any of values.
func KV(key string, values ...string) Predicate {
	return func(tags osm.Tags) bool {
		for _, v := range values {
			if HasKV(tags, key, v) {
				return true
			}
		}
		return false
	}
}

func All(preds ...Predicate) Predicate {
	return func(tags osm.Tags) bool {
		for _, p := range preds {
			if !p(tags) {
				return false
			}
		}
		return true
	}
}

func Any(preds ...Predicate) Predicate {
	return func(tags osm.Tags) bool {
		for _, p := range preds {
			if p(tags) {
				return true
			}
		}
		return false
	}
}

// StationRules map the network tag of a station to its type.
var StationRules = []Rule[element.StationType]{
	{"underground", KV("network", "London Underground"), element.Underground},
	{"overground", KV("network", "London Overground"), element.Overground},
	{"dlr", KV("network", "Docklands Light Railway", "DLR"), element.DLR},
	{"elizabeth_line", KV("network", "Elizabeth line", "Elizabeth Line", "TfL Rail"), element.ElizabethLine},
}

var climbing = KV("sport", "climbing")

var LandmarkRules = []Rule[element.LandmarkType]{
	{"lgbtq_men", All(KV("lgbtq", "primary", "only"), KV("lgbtq:men", "yes", "primary", "only")), element.LgbtqMen},
	{"lgbtq", KV("lgbtq", "primary", "only"), element.Lgbtq},
	{"cocktail_bar", All(KV("amenity", "bar", "pub"), Any(KV("drink:cocktail", "yes", "served"), KV("cocktails", "yes"))), element.CocktailBar},
	{"hospital", KV("amenity", "hospital"), element.Hospital},
	{"gym", Any(KV("leisure", "fitness_centre"), KV("amenity", "gym")), element.Gym},
	{"climbing_outdoor", All(climbing, Any(KV("natural", "cliff", "rock"), KV("climbing", "crag", "area"))), element.ClimbingOutdoor},
	{"climbing_boulder", All(climbing, Any(KV("climbing:boulder", "yes"), KV("climbing", "boulder"))), element.ClimbingBoulder},
	{"climbing_rope", climbing, element.ClimbingRope},
	{"music_venue", KV("amenity", "music_venue"), element.MusicVenue},
	{"tree", KV("natural", "tree"), element.Tree},
	{"tube_emergency_exit", All(KV("railway", "subway_entrance"), KV("entrance", "emergency")), element.TubeEmergencyExit},
	{"temple_aetherius_society", worship("aetherius_society"), element.TempleAetheriusSociety},
	{"temple_buddhist", worship("buddhist"), element.TempleBuddhist},
	{"temple_christian", worship("christian"), element.TempleChristian},
	{"temple_hindu", worship("hindu"), element.TempleHindu},
	{"temple_humanist", worship("humanist"), element.TempleHumanist},
	{"temple_jain", worship("jain"), element.TempleJain},
	{"temple_jewish", worship("jewish"), element.TempleJewish},
	{"temple_muslim", worship("muslim"), element.TempleMuslim},
	{"temple_rastafarian", worship("rastafarian"), element.TempleRastafarian},
	{"temple_rosicrucian", worship("rosicrucian"), element.TempleRosicrucian},
	{"temple_scientologist", worship("scientologist"), element.TempleScientologist},
	{"temple_self_realization_fellowship", worship("self_realization_fellowship"), element.TempleSelfRealizationFellowship},
	{"temple_sikh", worship("sikh"), element.TempleSikh},
}

func worship(religion string) Predicate {
	return All(KV("amenity", "place_of_worship"), KV("religion", religion))
}

var AreaRules = []Rule[element.AreaType]{
	{"park", KV("leisure", "park"), element.Park},
	{"water", Any(Key("water"), KV("natural", "water")), element.Water},
}

var (
	isRoad         = Key("highway")
	isLineRail     = KV("railway", "subway", "rail", "light_rail")
	isRail         = KV("railway", "rail")
	isElizabethWay = All(isRail, func(tags osm.Tags) bool { return tags["name"] == "Elizabeth Line" })
	isStation      = All(KV("railway", "station"), Key("name"))
	isOverground   = KV("network", "London Overground")
)

// ElementKind distinguishes ids of different element types.
type ElementKind int

const (
	NodeKind ElementKind = iota
	WayKind
	RelationKind
)

type OverrideKey struct {
	Kind ElementKind
	ID   int64
}

// Overrides force the landmark type of single elements regardless of
// their tags. They are consulted after the landmark rules.
type Overrides map[OverrideKey]element.LandmarkType

var DefaultOverrides = Overrides{
	{NodeKind, 10734571431}: element.LgbtqMen,
	{NodeKind, 5315196924}:  element.MusicVenue,
	{WayKind, 138254063}:    element.ClimbingRope,
}
