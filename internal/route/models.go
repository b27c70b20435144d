package route

import (
	"slices"
	"time"

	"backend-chillwalk/internal/shared/geo"
)

type Route struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	DistanceKm   float64       `json:"distance_km"`
	DurationMin  int           `json:"duration_min"`
	Difficulty   Difficulty    `json:"difficulty"`
	Rating       float64       `json:"rating"`
	Likes        int           `json:"likes"`
	Seasons      []Season      `json:"seasons"`
	Temperatures []Temperature `json:"temperatures"`
	Path         []geo.Point   `json:"path"`
	Spots        []Spot        `json:"spots"`
	CreatedAt    time.Time     `json:"created_at"`
	AuthorID     string        `json:"author_id,omitempty"`
	AuthorName   string        `json:"author_name,omitempty"`
	ImageURL     string        `json:"image_url"`
}

type Spot struct {
	ID          string    `json:"id"`
	RouteID     string    `json:"route_id,omitempty"`
	Name        string    `json:"name"`
	Type        SpotType  `json:"type"`
	Location    geo.Point `json:"location"`
	Description string    `json:"description"`
	Rating      *float64  `json:"rating,omitempty"`
	Tags        []string  `json:"tags"`
	OpenHours   string    `json:"open_hours,omitempty"`
}

// RankedRoute pairs a route with its 1-based rank.
type RankedRoute struct {
	Rank  int   `json:"rank"`
	Route Route `json:"route"`
}

func (r Route) HasSeason(s Season) bool {
	return slices.Contains(r.Seasons, s)
}

func (r Route) HasTemperature(t Temperature) bool {
	return slices.Contains(r.Temperatures, t)
}

func (r Route) HasSpotType(t SpotType) bool {
	for _, s := range r.Spots {
		if s.Type == t {
			return true
		}
	}
	return false
}
