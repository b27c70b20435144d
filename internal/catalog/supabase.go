package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// catalogView flattens routes with their author, path and spots. See migrations/001_init.sql.
const catalogView = "route_catalog"

// SupabaseSource reads the catalog through Supabase's REST interface.
type SupabaseSource struct {
	client *supabase.Client
}

func NewSupabaseSource(url, anonKey string) (*SupabaseSource, error) {
	if url == "" || anonKey == "" {
		return nil, fmt.Errorf("supabase url and anon key are required")
	}
	client, err := supabase.NewClient(url, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	return &SupabaseSource{client: client}, nil
}

type supabaseSpot struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
	OpenHours   string   `json:"open_hours"`
}

type supabaseRoute struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DistanceKm   float64         `json:"distance_km"`
	DurationMin  int             `json:"duration_min"`
	Difficulty   string          `json:"difficulty"`
	Rating       float64         `json:"rating"`
	Likes        int             `json:"likes"`
	Seasons      []string        `json:"seasons"`
	Temperatures []string        `json:"temperatures"`
	ImageURL     *string         `json:"image_url"`
	UserID       *string         `json:"user_id"`
	AuthorName   *string         `json:"author_name"`
	CreatedAt    time.Time       `json:"created_at"`
	Path         json.RawMessage `json:"path"`
	Spots        []supabaseSpot  `json:"spots"`
}

func (s *SupabaseSource) List(_ context.Context, q Query) ([]route.Route, error) {
	fb := s.client.From(catalogView).Select("*", "exact", false)
	if q.Season != "" {
		fb = fb.Contains("seasons", []string{string(q.Season)})
	}
	if q.Temperature != "" {
		fb = fb.Contains("temperatures", []string{string(q.Temperature)})
	}
	if q.Search != "" {
		fb = fb.Or(fmt.Sprintf("name.ilike.%[1]s,description.ilike.%[1]s", containsPattern(q.Search)), "")
	}
	if q.OrderBy != OrderNone {
		fb = fb.Order(string(q.OrderBy), &postgrest.OrderOpts{Ascending: false})
	}
	// Ties fall back to catalog order.
	fb = fb.Order(string(OrderCreatedAt), &postgrest.OrderOpts{Ascending: true})
	fb = fb.Order("id", &postgrest.OrderOpts{Ascending: true})
	if q.Limit > 0 {
		fb = fb.Limit(q.Limit, "")
	}

	var rows []supabaseRoute
	if _, err := fb.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return toRoutes(rows)
}

// containsPattern quotes text as a PostgREST ilike substring pattern. Quoting
// keeps commas, dots and parentheses from splitting the or=() filter; "*" is
// the PostgREST wildcard and is dropped from user text.
func containsPattern(text string) string {
	text = strings.ReplaceAll(text, "*", "")
	text = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)
	return `"*` + text + `*"`
}

func (s *SupabaseSource) Get(_ context.Context, id string) (route.Route, error) {
	if _, err := uuid.Parse(id); err != nil {
		return route.Route{}, ErrNotFound
	}
	var rows []supabaseRoute
	if _, err := s.client.From(catalogView).Select("*", "exact", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return route.Route{}, fmt.Errorf("get route: %w", err)
	}
	routes, err := toRoutes(rows)
	if err != nil {
		return route.Route{}, err
	}
	if len(routes) == 0 {
		return route.Route{}, ErrNotFound
	}
	return routes[0], nil
}

func toRoutes(rows []supabaseRoute) ([]route.Route, error) {
	out := make([]route.Route, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRoute()
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", row.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (row supabaseRoute) toRoute() (route.Route, error) {
	seasons, err := route.ParseSeasons(row.Seasons)
	if err != nil {
		return route.Route{}, err
	}
	temps, err := route.ParseTemperatures(row.Temperatures)
	if err != nil {
		return route.Route{}, err
	}
	path, err := decodePath(row.Path)
	if err != nil {
		return route.Route{}, err
	}

	r := route.Route{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		DistanceKm:   row.DistanceKm,
		DurationMin:  row.DurationMin,
		Difficulty:   route.Difficulty(row.Difficulty),
		Rating:       row.Rating,
		Likes:        row.Likes,
		Seasons:      seasons,
		Temperatures: temps,
		Path:         path,
		Spots:        make([]route.Spot, 0, len(row.Spots)),
		CreatedAt:    row.CreatedAt,
		AuthorID:     deref(row.UserID),
		AuthorName:   deref(row.AuthorName),
		ImageURL:     deref(row.ImageURL),
	}
	for _, sp := range row.Spots {
		r.Spots = append(r.Spots, route.Spot{
			ID:          sp.ID,
			RouteID:     row.ID,
			Name:        sp.Name,
			Type:        route.SpotType(sp.Type),
			Location:    geo.Point{Lat: sp.Lat, Lng: sp.Lng},
			Description: sp.Description,
			Rating:      sp.Rating,
			Tags:        sp.Tags,
			OpenHours:   sp.OpenHours,
		})
	}
	return r, nil
}

// decodePath reads the GeoJSON LineString the view emits for route_points.path.
func decodePath(raw json.RawMessage) ([]geo.Point, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("decode path: expected LineString, got %s", g.Type)
	}
	path := make([]geo.Point, len(ls))
	for i, p := range ls {
		path[i] = geo.FromOrb(p)
	}
	return path, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
