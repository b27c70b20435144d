package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"
)

// walkingMetersPerMinute estimates duration for imported tracks without timestamps.
const walkingMetersPerMinute = 80.0

type Service struct {
	source         Source
	store          Store
	rankingLimit   int
	recommendLimit int
	now            func() time.Time
}

// NewService reads from source and writes to store. store may be nil, in
// which case every write returns ErrReadOnly.
func NewService(source Source, store Store, rankingLimit, recommendLimit int) *Service {
	return &Service{
		source:         source,
		store:          store,
		rankingLimit:   rankingLimit,
		recommendLimit: recommendLimit,
		now:            time.Now,
	}
}

func (s *Service) CurrentSeason() route.Season {
	return route.SeasonOf(s.now())
}

// Search pushes the season, temperature and text criteria down to the source
// and applies the full criteria and sort in memory.
func (s *Service) Search(ctx context.Context, c route.Criteria, key route.SortKey) ([]route.Route, error) {
	routes, err := s.source.List(ctx, Query{
		Season:      c.Season,
		Temperature: c.Temperature,
		Search:      c.Search,
		OrderBy:     OrderFor(key),
	})
	if err != nil {
		return nil, err
	}
	return route.Sort(route.Filter(routes, c), key), nil
}

func (s *Service) Recommended(ctx context.Context) ([]route.Route, error) {
	routes, err := s.source.List(ctx, Query{})
	if err != nil {
		return nil, err
	}
	return route.Recommend(routes, s.recommendLimit), nil
}

type Ranking struct {
	Metric  route.Metric        `json:"metric"`
	Stats   route.Stats         `json:"stats"`
	Entries []route.RankedRoute `json:"entries"`
}

// Ranking is recomputed from the source on every call.
func (s *Service) Ranking(ctx context.Context, m route.Metric) (Ranking, error) {
	routes, err := s.source.List(ctx, Query{})
	if err != nil {
		return Ranking{}, err
	}
	return Ranking{
		Metric:  m,
		Stats:   route.Summarize(routes),
		Entries: route.Rank(routes, m, s.rankingLimit),
	}, nil
}

func (s *Service) Seasonal(ctx context.Context) ([]route.SeasonGroup, error) {
	routes, err := s.source.List(ctx, Query{})
	if err != nil {
		return nil, err
	}
	return route.SeasonalBoard(routes), nil
}

func (s *Service) Get(ctx context.Context, id string) (route.Route, error) {
	return s.source.Get(ctx, id)
}

func (s *Service) MapView(ctx context.Context, id string) (MapView, error) {
	r, err := s.source.Get(ctx, id)
	if err != nil {
		return MapView{}, err
	}
	return BuildMapView(r), nil
}

func (s *Service) ExportGPX(ctx context.Context, id string) (route.Route, []byte, error) {
	r, err := s.source.Get(ctx, id)
	if err != nil {
		return route.Route{}, nil, err
	}
	data, err := EncodeGPX(r)
	if err != nil {
		return route.Route{}, nil, err
	}
	return r, data, nil
}

type ImportMeta struct {
	Name         string
	Description  string
	Difficulty   route.Difficulty
	Seasons      []route.Season
	Temperatures []route.Temperature
}

// ImportGPX creates a route owned by userID from a GPX track. Distance comes
// from the track geometry and duration from its timestamps when present.
// Without explicit seasons the route is suitable for the current season.
func (s *Service) ImportGPX(ctx context.Context, userID string, data []byte, meta ImportMeta) (route.Route, error) {
	if s.store == nil {
		return route.Route{}, ErrReadOnly
	}
	track, err := DecodeGPX(data)
	if err != nil {
		return route.Route{}, err
	}
	if len(track.Path) < 2 {
		return route.Route{}, fmt.Errorf("%w: track needs at least 2 points", ErrInvalid)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSpace(track.Name)
	}
	if name == "" {
		return route.Route{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	desc := meta.Description
	if desc == "" {
		desc = track.Description
	}

	seasons := meta.Seasons
	if len(seasons) == 0 {
		seasons = []route.Season{s.CurrentSeason()}
	}

	meters := geo.PathLength(track.Path)
	minutes := int(math.Round(track.Duration.Minutes()))
	if track.Duration == 0 {
		minutes = int(math.Round(meters / walkingMetersPerMinute))
	}

	return s.store.CreateRoute(ctx, route.Route{
		Name:         name,
		Description:  desc,
		DistanceKm:   math.Round(meters) / 1000,
		DurationMin:  minutes,
		Difficulty:   meta.Difficulty,
		Seasons:      seasons,
		Temperatures: meta.Temperatures,
		Path:         track.Path,
		Spots:        track.Spots,
		AuthorID:     userID,
	})
}

func (s *Service) Like(ctx context.Context, routeID, userID string) (int, error) {
	if s.store == nil {
		return 0, ErrReadOnly
	}
	return s.store.Like(ctx, routeID, userID)
}

func (s *Service) AddSpot(ctx context.Context, routeID string, spot route.Spot) (route.Spot, error) {
	if s.store == nil {
		return route.Spot{}, ErrReadOnly
	}
	return s.store.AddSpot(ctx, routeID, spot)
}

func (s *Service) SetCover(ctx context.Context, routeID, userID, imageURL string) error {
	if s.store == nil {
		return ErrReadOnly
	}
	return s.store.SetCover(ctx, routeID, userID, imageURL)
}

func (s *Service) Delete(ctx context.Context, routeID, userID string) error {
	if s.store == nil {
		return ErrReadOnly
	}
	return s.store.DeleteRoute(ctx, routeID, userID)
}
