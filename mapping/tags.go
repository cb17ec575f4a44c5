package mapping

import (
	"strings"

	osm "github.com/omniscale/go-osm"
)

func HasKey(tags osm.Tags, key string) bool {
	_, ok := tags[key]
	return ok
}

// HasKV returns whether the value of key contains value as one of its list
// items.
func HasKV(tags osm.Tags, key, value string) bool {
	for _, v := range GetStrings(tags, key) {
		if v == value {
			return true
		}
	}
	return false
}

// GetString returns the unescaped value of key.
func GetString(tags osm.Tags, key string) (string, bool) {
	v, ok := tags[key]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(v, ";;", ";"), true
}

// GetStrings returns the list items of the value of key. Items are
// separated by ";", a double ";;" is a literal semicolon. Items are trimmed
// and empty items are dropped.
func GetStrings(tags osm.Tags, key string) []string {
	v, ok := tags[key]
	if !ok {
		return nil
	}
	if !strings.Contains(v, ";") {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		return []string{v}
	}

	var result []string
	var item strings.Builder
	add := func() {
		if s := strings.TrimSpace(item.String()); s != "" {
			result = append(result, s)
		}
		item.Reset()
	}
	for i := 0; i < len(v); i++ {
		if v[i] != ';' {
			item.WriteByte(v[i])
			continue
		}
		if i+1 < len(v) && v[i+1] == ';' {
			item.WriteByte(';')
			i++
			continue
		}
		add()
	}
	add()
	return result
}
