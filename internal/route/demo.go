package route

import (
	"time"

	"backend-chillwalk/internal/shared/geo"
)

func ptr(f float64) *float64 { return &f }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// DemoCatalog returns the bundled sample routes around central Tokyo.
// Each call returns a fresh copy.
func DemoCatalog() []Route {
	return []Route{
		{
			ID:           "1",
			Name:         "Spring Stream and Cherry Blossom Walk",
			Description:  "Follow the moat under full cherry blossoms from the station to the shrine. Great for photos.",
			DistanceKm:   3.5,
			DurationMin:  45,
			Difficulty:   Easy,
			Rating:       4.8,
			Likes:        1200,
			Seasons:      []Season{Spring},
			Temperatures: []Temperature{Mild},
			Path: []geo.Point{
				{Lat: 35.681236, Lng: 139.767125},
				{Lat: 35.685175, Lng: 139.752799},
				{Lat: 35.693825, Lng: 139.755094},
			},
			Spots: []Spot{
				{ID: "spot-1", Name: "Chidorigafuchi Green Way", Type: Viewpoint, Location: geo.Point{Lat: 35.685175, Lng: 139.752799},
					Description: "One of the city's best cherry blossom spots, viewable by rowboat.", Rating: ptr(4.9), Tags: []string{"sakura", "boats"}},
				{ID: "spot-2", Name: "Sizzle Cafe", Type: Cafe, Location: geo.Point{Lat: 35.688, Lng: 139.754},
					Description: "A quiet cafe for a break halfway.", Tags: []string{"coffee"}, OpenHours: "08:00-20:00"},
			},
			CreatedAt: day("2024-03-20"),
			AuthorID:  "demo",
			ImageURL:  "/images/route1.jpg",
		},
		{
			ID:           "2",
			Name:         "Summer Shade and Cool Spots",
			Description:  "Shaded park paths and air-conditioned stops that stay comfortable on hot days.",
			DistanceKm:   4.2,
			DurationMin:  60,
			Difficulty:   Easy,
			Rating:       4.5,
			Likes:        980,
			Seasons:      []Season{Summer},
			Temperatures: []Temperature{Hot},
			Path: []geo.Point{
				{Lat: 35.658581, Lng: 139.701321},
				{Lat: 35.66582, Lng: 139.69938},
				{Lat: 35.671522, Lng: 139.708983},
			},
			Spots: []Spot{
				{ID: "spot-3", Name: "Yoyogi Park", Type: Park, Location: geo.Point{Lat: 35.66582, Lng: 139.69938},
					Description: "Wide lawns and tall trees, an oasis for cooling off.", Tags: []string{"shade", "lawn"}},
				{ID: "spot-4", Name: "Omotesando Hills", Type: Shop, Location: geo.Point{Lat: 35.671522, Lng: 139.708983},
					Description: "Indoor shopping and art away from the heat.", Tags: []string{"indoor"}, OpenHours: "11:00-21:00"},
			},
			CreatedAt: day("2024-06-28"),
			AuthorID:  "demo",
			ImageURL:  "/images/route2.jpg",
		},
		{
			ID:           "3",
			Name:         "Autumn Leaves and Museum Stroll",
			Description:  "Red and gold leaves through the park, finishing at the national museum.",
			DistanceKm:   2.8,
			DurationMin:  40,
			Difficulty:   Easy,
			Rating:       4.7,
			Likes:        1500,
			Seasons:      []Season{Autumn},
			Temperatures: []Temperature{Mild, Cool},
			Path: []geo.Point{
				{Lat: 35.71503, Lng: 139.77526},
				{Lat: 35.71611, Lng: 139.77222},
				{Lat: 35.71861, Lng: 139.775},
			},
			Spots: []Spot{
				{ID: "spot-5", Name: "Ueno Park", Type: Park, Location: geo.Point{Lat: 35.71611, Lng: 139.77222},
					Description: "Museums and a zoo scattered across wide grounds, famous for autumn colour.", Rating: ptr(4.6), Tags: []string{"museum", "leaves"}},
				{ID: "spot-8", Name: "Ueno Toshogu", Type: Shrine, Location: geo.Point{Lat: 35.7155, Lng: 139.7712},
					Description: "Gilded shrine inside the park.", Tags: []string{"history"}},
			},
			CreatedAt: day("2024-10-05"),
			AuthorID:  "demo",
			ImageURL:  "/images/route3.jpg",
		},
		{
			ID:           "4",
			Name:         "Winter Illuminations and Warm Cafes",
			Description:  "Evening lights along the boulevard and a warm drink to finish a cold night.",
			DistanceKm:   2.5,
			DurationMin:  35,
			Difficulty:   Easy,
			Rating:       4.9,
			Likes:        2100,
			Seasons:      []Season{Winter},
			Temperatures: []Temperature{Cold},
			Path: []geo.Point{
				{Lat: 35.6695, Lng: 139.7635},
				{Lat: 35.6741, Lng: 139.762},
				{Lat: 35.6812, Lng: 139.7671},
			},
			Spots: []Spot{
				{ID: "spot-6", Name: "Marunouchi Naka-dori", Type: Viewpoint, Location: geo.Point{Lat: 35.6741, Lng: 139.762},
					Description: "Tree-lined street glowing with winter illuminations.", Tags: []string{"lights", "night"}},
				{ID: "spot-7", Name: "Hot & Cold Cafe", Type: Cafe, Location: geo.Point{Lat: 35.68, Lng: 139.765},
					Description: "Warm drinks after the lights.", Tags: []string{"coffee"}, OpenHours: "10:00-22:00"},
			},
			CreatedAt: day("2024-12-10"),
			AuthorID:  "demo",
			ImageURL:  "/images/route4.jpg",
		},
		{
			ID:           "5",
			Name:         "Riverside Long Loop",
			Description:  "A long riverside loop with benches every few hundred meters.",
			DistanceKm:   11.3,
			DurationMin:  150,
			Difficulty:   Hard,
			Rating:       4.2,
			Likes:        430,
			Seasons:      []Season{Spring, Autumn},
			Temperatures: []Temperature{Mild, Warm},
			Path: []geo.Point{
				{Lat: 35.7101, Lng: 139.8107},
				{Lat: 35.7003, Lng: 139.8048},
				{Lat: 35.6895, Lng: 139.7966},
				{Lat: 35.7101, Lng: 139.8107},
			},
			Spots: []Spot{
				{ID: "spot-9", Name: "Sumida Riverside Bench", Type: Bench, Location: geo.Point{Lat: 35.7003, Lng: 139.8048},
					Description: "River view rest stop.", Tags: []string{"river"}},
				{ID: "spot-10", Name: "Riverside Restroom", Type: Restroom, Location: geo.Point{Lat: 35.6895, Lng: 139.7966},
					Description: "Public restroom near the bridge.", Tags: []string{}},
			},
			CreatedAt: day("2025-04-02"),
			AuthorID:  "demo",
			ImageURL:  "/images/route5.jpg",
		},
		{
			ID:           "6",
			Name:         "Shrine Hill Morning Circuit",
			Description:  "Short climb to a hilltop shrine, best on cool mornings.",
			DistanceKm:   1.8,
			DurationMin:  25,
			Difficulty:   Moderate,
			Rating:       4.4,
			Likes:        610,
			Seasons:      []Season{Autumn, Winter, Spring},
			Temperatures: []Temperature{Cool, Mild},
			Path: []geo.Point{
				{Lat: 35.6581, Lng: 139.7454},
				{Lat: 35.6603, Lng: 139.7488},
			},
			Spots: []Spot{
				{ID: "spot-11", Name: "Atago Shrine", Type: Shrine, Location: geo.Point{Lat: 35.6603, Lng: 139.7488},
					Description: "Steep stone steps up to a quiet shrine.", Rating: ptr(4.5), Tags: []string{"stairs", "history"}, OpenHours: "09:00-17:00"},
			},
			CreatedAt: day("2025-09-14"),
			AuthorID:  "demo",
			ImageURL:  "/images/route6.jpg",
		},
	}
}
