package mapping

import (
	"reflect"
	"testing"

	osm "github.com/omniscale/go-osm"
)

func TestGetStrings(t *testing.T) {
	for _, tc := range []struct {
		value    string
		expected []string
	}{
		{"a", []string{"a"}},
		{" a ", []string{"a"}},
		{"a;b;c", []string{"a", "b", "c"}},
		{"a; b ;c", []string{"a", "b", "c"}},
		{"a;;b", []string{"a;b"}},
		{"a;;;b", []string{"a;", "b"}},
		{"a;;b;c", []string{"a;b", "c"}},
		{";a;", []string{"a"}},
		{"", nil},
	} {
		got := GetStrings(osm.Tags{"k": tc.value}, "k")
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("%q: got %q, want %q", tc.value, got, tc.expected)
		}
	}
	if got := GetStrings(osm.Tags{}, "k"); got != nil {
		t.Errorf("expected nil for missing key, got %q", got)
	}
}

func TestGetString(t *testing.T) {
	tags := osm.Tags{"name": "Foo;;Bar", "empty": ""}
	if v, ok := GetString(tags, "name"); !ok || v != "Foo;Bar" {
		t.Errorf("unexpected value %q %v", v, ok)
	}
	if v, ok := GetString(tags, "empty"); !ok || v != "" {
		t.Errorf("unexpected value %q %v", v, ok)
	}
	if _, ok := GetString(tags, "missing"); ok {
		t.Error("found missing key")
	}
}

func TestHasKV(t *testing.T) {
	tags := osm.Tags{
		"network": "London Underground;London Overground",
		"railway": "rail",
	}
	for _, tc := range []struct {
		key, value string
		expected   bool
	}{
		{"network", "London Underground", true},
		{"network", "London Overground", true},
		{"network", "London", false},
		{"railway", "rail", true},
		{"railway", "subway", false},
		{"highway", "", false},
	} {
		if got := HasKV(tags, tc.key, tc.value); got != tc.expected {
			t.Errorf("HasKV(%s, %s) = %v", tc.key, tc.value, got)
		}
	}
	if !HasKey(tags, "railway") || HasKey(tags, "highway") {
		t.Error("unexpected HasKey result")
	}
}

func TestFirstRuleWins(t *testing.T) {
	rules := []Rule[string]{
		{"a", KV("k", "1"), "a"},
		{"b", Key("k"), "b"},
		{"c", All(Key("k"), Key("l")), "c"},
	}
	for _, tc := range []struct {
		tags     osm.Tags
		expected string
		ok       bool
	}{
		{osm.Tags{"k": "1"}, "a", true},
		{osm.Tags{"k": "2"}, "b", true},
		{osm.Tags{"k": "2", "l": "x"}, "b", true},
		{osm.Tags{"l": "x"}, "", false},
	} {
		got, ok := First(rules, tc.tags)
		if got != tc.expected || ok != tc.ok {
			t.Errorf("%v: got %q %v", tc.tags, got, ok)
		}
	}
}

func TestLines(t *testing.T) {
	for _, tc := range []struct {
		line     string
		expected []string
	}{
		{"District", []string{"district"}},
		{"District Line", []string{"district"}},
		{"district line", []string{"district"}},
		{"District, Piccadilly", []string{"district", "piccadilly"}},
		{"Circle;Hammersmith & City", []string{"circle", "hammersmith_and_city"}},
		{"Bakerloo;Bakerloo", []string{"bakerloo"}},
		{"Mildmay", []string{"overground"}},
		{"Docklands Light Railway", []string{"dlr"}},
		{"Thameslink", nil},
		{"Unknown;Victoria", []string{"victoria"}},
	} {
		var got []string
		for _, l := range Lines(osm.Tags{"line": tc.line}) {
			got = append(got, l.String())
		}
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("%q: got %v, want %v", tc.line, got, tc.expected)
		}
	}
}
