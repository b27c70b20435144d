// Package geo provides coordinate types and great-circle distance helpers
// shared by the catalog and the recorder.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EarthRadiusM is the mean Earth radius used by every distance in this module.
const EarthRadiusM = 6371000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Distance returns the haversine distance between a and b in meters.
// Inputs are not range checked.
func Distance(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// HaversineKm is Distance in kilometers for callers holding raw coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	return Distance(Point{Lat: lat1, Lng: lng1}, Point{Lat: lat2, Lng: lng2}) / 1000
}

// PathLength sums the distances between consecutive points (polyline length).
func PathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Orb converts to orb's [lng, lat] ordering.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func FromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lng: p.Lon()}
}

func LineString(path []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, p := range path {
		ls = append(ls, p.Orb())
	}
	return ls
}

// PathWKT encodes a path as a WKT LINESTRING for PostGIS. A line needs two points.
func PathWKT(path []Point) (string, error) {
	if len(path) < 2 {
		return "", fmt.Errorf("path needs at least 2 points, got %d", len(path))
	}
	return wkt.MarshalString(LineString(path)), nil
}

// ParsePathWKT decodes a LINESTRING produced by ST_AsText.
func ParsePathWKT(s string) ([]Point, error) {
	ls, err := wkt.UnmarshalLineString(s)
	if err != nil {
		return nil, fmt.Errorf("parse path wkt: %w", err)
	}
	path := make([]Point, 0, len(ls))
	for _, p := range ls {
		path = append(path, FromOrb(p))
	}
	return path, nil
}
