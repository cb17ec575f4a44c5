/*
Package mapping classifies raw OSM elements into semantic map elements.

Each element is classified independently. Classification is organized in
categories (stations, landmarks, areas, rails, roads). Within a category,
rules are evaluated in order and the first matching rule wins. An element
can produce elements in more than one category, e.g. a road and a
landmark.

Tag values are treated as semicolon separated lists, see GetStrings.
*/
package mapping
