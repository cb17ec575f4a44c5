package mapping

import (
	"strings"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/tubemap/element"
)

// lineTable maps normalized line names to lines. Some names used for
// shared tracks resolve to two lines.
var lineTable = map[string][]element.TubeLine{
	"bakerloo":                   {element.Bakerloo},
	"central":                    {element.Central},
	"circle":                     {element.Circle},
	"district":                   {element.District},
	"dlr":                        {element.DLRLine},
	"docklands light railway":    {element.DLRLine},
	"elizabeth":                  {element.Elizabeth},
	"hammersmith & city":         {element.HammersmithAndCity},
	"hammersmith and city":       {element.HammersmithAndCity},
	"jubilee":                    {element.Jubilee},
	"metropolitan":               {element.Metropolitan},
	"northern":                   {element.Northern},
	"overground":                 {element.OvergroundLine},
	"london overground":          {element.OvergroundLine},
	"liberty":                    {element.OvergroundLine},
	"lioness":                    {element.OvergroundLine},
	"mildmay":                    {element.OvergroundLine},
	"suffragette":                {element.OvergroundLine},
	"weaver":                     {element.OvergroundLine},
	"windrush":                   {element.OvergroundLine},
	"piccadilly":                 {element.Piccadilly},
	"victoria":                   {element.Victoria},
	"waterloo & city":            {element.WaterlooAndCity},
	"waterloo and city":          {element.WaterlooAndCity},
	"district, piccadilly":       {element.District, element.Piccadilly},
	"circle, district":           {element.Circle, element.District},
	"circle, hammersmith & city": {element.Circle, element.HammersmithAndCity},
	"metropolitan, piccadilly":   {element.Metropolitan, element.Piccadilly},
	"metropolitan, circle, hammersmith & city": {element.Metropolitan, element.Circle, element.HammersmithAndCity},
}

func normalizeLineName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, " line")
	return strings.TrimSpace(name)
}

// LookupLine returns the lines of a single line name. Matching is case
// insensitive and ignores a trailing " line".
func LookupLine(name string) []element.TubeLine {
	return lineTable[normalizeLineName(name)]
}

// Lines returns all lines named by the line tag, in tag order and without
// duplicates. Unknown names are ignored.
func Lines(tags osm.Tags) []element.TubeLine {
	var result []element.TubeLine
	seen := make(map[element.TubeLine]bool)
	for _, name := range GetStrings(tags, "line") {
		for _, l := range LookupLine(name) {
			if !seen[l] {
				seen[l] = true
				result = append(result, l)
			}
		}
	}
	return result
}
