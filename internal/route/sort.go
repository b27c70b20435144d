package route

import (
	"fmt"
	"sort"
	"strings"
)

type SortKey string

const (
	SortNone     SortKey = ""
	SortRating   SortKey = "rating"
	SortLikes    SortKey = "likes"
	SortDistance SortKey = "distance"
	SortDuration SortKey = "duration"
	SortNewest   SortKey = "newest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortRating, SortLikes, SortDistance, SortDuration, SortNewest:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// less reports whether a orders strictly before b under k.
func (k SortKey) less(a, b Route) bool {
	switch k {
	case SortRating:
		return a.Rating > b.Rating
	case SortLikes:
		return a.Likes > b.Likes
	case SortDistance:
		return a.DistanceKm < b.DistanceKm
	case SortDuration:
		return a.DurationMin < b.DurationMin
	case SortNewest:
		return a.CreatedAt.After(b.CreatedAt)
	}
	return false
}

// Sort returns a copy of routes ordered by k. Ties keep input order.
func Sort(routes []Route, k SortKey) []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	if k == SortNone {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return k.less(out[i], out[j])
	})
	return out
}
