// Package proj maps WGS84 coordinates onto the map canvas.
//
// The canvas is a plain equirectangular projection anchored at its top left
// corner. x grows to the east, y grows to the south.
package proj

import (
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/element"
)

type Canvas struct {
	TopLeftLon  float64
	TopLeftLat  float64
	PxPerDegLon float64
	PxPerDegLat float64
	WidthPx     int
	HeightPx    int
}

func NewCanvas(topLeftLon, topLeftLat, pxPerDegLon, pxPerDegLat float64, width, height int) (*Canvas, error) {
	if pxPerDegLon <= 0 || pxPerDegLat <= 0 {
		return nil, errors.Errorf("pixels per degree must be positive, got %v/%v", pxPerDegLon, pxPerDegLat)
	}
	if width < 0 || height < 0 {
		return nil, errors.Errorf("negative canvas size %dx%d", width, height)
	}
	return &Canvas{
		TopLeftLon:  topLeftLon,
		TopLeftLat:  topLeftLat,
		PxPerDegLon: pxPerDegLon,
		PxPerDegLat: pxPerDegLat,
		WidthPx:     width,
		HeightPx:    height,
	}, nil
}

// ToPixel returns the canvas position of c.
func (cv *Canvas) ToPixel(c element.MapCoords) (x, y float64) {
	x = (c.Lon - cv.TopLeftLon) * cv.PxPerDegLon
	y = -(c.Lat - cv.TopLeftLat) * cv.PxPerDegLat
	return x, y
}

func (cv *Canvas) FromPixel(x, y float64) element.MapCoords {
	return element.MapCoords{
		Lon: cv.TopLeftLon + x/cv.PxPerDegLon,
		Lat: cv.TopLeftLat - y/cv.PxPerDegLat,
	}
}

// Bounds returns the WGS84 extent of the canvas.
func (cv *Canvas) Bounds() (minLon, minLat, maxLon, maxLat float64) {
	br := cv.FromPixel(float64(cv.WidthPx), float64(cv.HeightPx))
	return cv.TopLeftLon, br.Lat, br.Lon, cv.TopLeftLat
}

// Contains returns whether c is drawn on the canvas.
func (cv *Canvas) Contains(c element.MapCoords) bool {
	x, y := cv.ToPixel(c)
	return x >= 0 && y >= 0 && x < float64(cv.WidthPx) && y < float64(cv.HeightPx)
}
