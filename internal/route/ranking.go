package route

import (
	"fmt"
	"strings"
)

const (
	DefaultRankingLimit   = 10
	DefaultRecommendLimit = 3
)

type Metric string

const (
	ByLikes  Metric = "likes"
	ByRating Metric = "rating"
	ByNewest Metric = "newest"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ByLikes, nil
	case ByLikes, ByRating, ByNewest:
		return m, nil
	case "new":
		return ByNewest, nil
	}
	return "", fmt.Errorf("unknown ranking metric %q", s)
}

func (m Metric) sortKey() SortKey {
	switch m {
	case ByRating:
		return SortRating
	case ByNewest:
		return SortNewest
	default:
		return SortLikes
	}
}

// Rank orders the catalog by m descending and labels the top n with 1-based
// ranks. Equal values keep catalog order. n <= 0 keeps every route.
func Rank(catalog []Route, m Metric, n int) []RankedRoute {
	ordered := Sort(catalog, m.sortKey())
	if n > 0 && len(ordered) > n {
		ordered = ordered[:n]
	}
	ranked := make([]RankedRoute, len(ordered))
	for i, r := range ordered {
		ranked[i] = RankedRoute{Rank: i + 1, Route: r}
	}
	return ranked
}

// Recommend picks up to limit mild-weather routes in catalog order.
func Recommend(catalog []Route, limit int) []Route {
	if limit <= 0 {
		return []Route{}
	}
	out := make([]Route, 0, limit)
	for _, r := range catalog {
		if len(out) >= limit {
			break
		}
		if r.HasTemperature(Mild) {
			out = append(out, r)
		}
	}
	return out
}

type SeasonGroup struct {
	Season Season  `json:"season"`
	Routes []Route `json:"routes"`
}

// SeasonalBoard groups the catalog by suitable season. A route may appear in several groups.
func SeasonalBoard(catalog []Route) []SeasonGroup {
	groups := make([]SeasonGroup, 0, len(Seasons))
	for _, s := range Seasons {
		groups = append(groups, SeasonGroup{
			Season: s,
			Routes: Filter(catalog, Criteria{Season: s}),
		})
	}
	return groups
}

type Stats struct {
	TopLikes    int     `json:"top_likes"`
	TopRating   float64 `json:"top_rating"`
	TotalRoutes int     `json:"total_routes"`
	Seasons     int     `json:"seasons"`
}

func Summarize(catalog []Route) Stats {
	st := Stats{TotalRoutes: len(catalog), Seasons: len(Seasons)}
	for _, r := range catalog {
		st.TopLikes = max(st.TopLikes, r.Likes)
		st.TopRating = max(st.TopRating, r.Rating)
	}
	return st
}
