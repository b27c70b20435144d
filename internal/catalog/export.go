package catalog

import (
	"bytes"
	"fmt"
	"time"

	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/tkrajina/gpxgo/gpx"
)

const DefaultZoom = 14

// DefaultCenter is Tokyo Station, used when a route has no path.
var DefaultCenter = geo.Point{Lat: 35.681236, Lng: 139.767125}

type MapView struct {
	Center  geo.Point                  `json:"center"`
	Zoom    int                        `json:"zoom"`
	GeoJSON *geojson.FeatureCollection `json:"geojson"`
}

// BuildMapView centres the map on the route's first point and emits the path
// plus one feature per spot.
func BuildMapView(r route.Route) MapView {
	view := MapView{Center: DefaultCenter, Zoom: DefaultZoom, GeoJSON: geojson.NewFeatureCollection()}
	if len(r.Path) > 0 {
		view.Center = r.Path[0]
	}

	switch {
	case len(r.Path) >= 2:
		f := geojson.NewFeature(geo.LineString(r.Path))
		f.Properties["kind"] = "path"
		f.Properties["name"] = r.Name
		f.Properties["distance_km"] = r.DistanceKm
		view.GeoJSON.Append(f)
	case len(r.Path) == 1:
		f := geojson.NewFeature(r.Path[0].Orb())
		f.Properties["kind"] = "start"
		f.Properties["name"] = r.Name
		view.GeoJSON.Append(f)
	}

	for _, s := range r.Spots {
		f := geojson.NewFeature(s.Location.Orb())
		f.ID = s.ID
		f.Properties["kind"] = "spot"
		f.Properties["name"] = s.Name
		f.Properties["type"] = string(s.Type)
		f.Properties["description"] = s.Description
		if s.Rating != nil {
			f.Properties["rating"] = *s.Rating
		}
		if s.OpenHours != "" {
			f.Properties["open_hours"] = s.OpenHours
		}
		view.GeoJSON.Append(f)
	}
	return view
}

// EncodeGPX writes the route as a GPX 1.1 track with its spots as waypoints.
func EncodeGPX(r route.Route) ([]byte, error) {
	doc := &gpx.GPX{
		Version:     "1.1",
		Creator:     "chillwalk",
		Name:        r.Name,
		Description: r.Description,
	}
	segment := gpx.GPXTrackSegment{}
	for _, p := range r.Path {
		segment.Points = append(segment.Points, gpx.GPXPoint{Point: gpx.Point{Latitude: p.Lat, Longitude: p.Lng}})
	}
	doc.Tracks = []gpx.GPXTrack{{Name: r.Name, Segments: []gpx.GPXTrackSegment{segment}}}
	for _, s := range r.Spots {
		doc.Waypoints = append(doc.Waypoints, gpx.GPXPoint{
			Point:       gpx.Point{Latitude: s.Location.Lat, Longitude: s.Location.Lng},
			Name:        s.Name,
			Description: s.Description,
			Type:        string(s.Type),
		})
	}

	out, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encode gpx: %w", err)
	}
	return out, nil
}

type ImportedTrack struct {
	Name        string
	Description string
	Path        []geo.Point
	Spots       []route.Spot
	// Duration is zero when the track carries no timestamps.
	Duration time.Duration
}

// DecodeGPX flattens every track segment into one path and turns waypoints into spots.
func DecodeGPX(data []byte) (ImportedTrack, error) {
	doc, err := gpx.ParseBytes(bytes.TrimSpace(data))
	if err != nil {
		return ImportedTrack{}, fmt.Errorf("%w: parse gpx: %v", ErrInvalid, err)
	}

	t := ImportedTrack{Name: doc.Name, Description: doc.Description}
	var first, last time.Time
	for _, trk := range doc.Tracks {
		if t.Name == "" {
			t.Name = trk.Name
		}
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				t.Path = append(t.Path, geo.Point{Lat: p.Latitude, Lng: p.Longitude})
				if p.Timestamp.IsZero() {
					continue
				}
				if first.IsZero() {
					first = p.Timestamp
				}
				last = p.Timestamp
			}
		}
	}
	if !first.IsZero() && last.After(first) {
		t.Duration = last.Sub(first)
	}

	for _, w := range doc.Waypoints {
		typ, err := route.ParseSpotType(w.Type)
		if err != nil {
			typ = route.Other
		}
		t.Spots = append(t.Spots, route.Spot{
			Name:        w.Name,
			Type:        typ,
			Location:    geo.Point{Lat: w.Latitude, Lng: w.Longitude},
			Description: w.Description,
			Tags:        []string{},
		})
	}
	return t, nil
}
