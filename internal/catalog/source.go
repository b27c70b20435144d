// Package catalog serves the walking-route catalog from Postgres, Supabase or
// the bundled demo data, and owns the write paths for likes, spots and covers.
package catalog

import (
	"context"
	"errors"

	"backend-chillwalk/internal/route"
)

var (
	ErrNotFound = errors.New("route not found")
	ErrInvalid  = errors.New("invalid route")
	// ErrReadOnly is returned by write operations when no writable store is configured.
	ErrReadOnly = errors.New("catalog is read-only")
)

type OrderBy string

const (
	OrderNone      OrderBy = ""
	OrderCreatedAt OrderBy = "created_at"
	OrderLikes     OrderBy = "likes"
	OrderRating    OrderBy = "rating"
)

// OrderFor maps a sort key to the column a backend can pre-order by.
func OrderFor(k route.SortKey) OrderBy {
	switch k {
	case route.SortNewest:
		return OrderCreatedAt
	case route.SortLikes:
		return OrderLikes
	case route.SortRating:
		return OrderRating
	}
	return OrderNone
}

// Query is the subset of filtering a backend can push down. Zero values mean "all".
type Query struct {
	Season      route.Season
	Temperature route.Temperature
	Search      string
	OrderBy     OrderBy
	Limit       int
}

type Source interface {
	List(ctx context.Context, q Query) ([]route.Route, error)
	Get(ctx context.Context, id string) (route.Route, error)
}

// Store is a Source that also accepts writes.
type Store interface {
	Source
	CreateRoute(ctx context.Context, r route.Route) (route.Route, error)
	DeleteRoute(ctx context.Context, id, userID string) error
	AddSpot(ctx context.Context, routeID string, spot route.Spot) (route.Spot, error)
	Like(ctx context.Context, routeID, userID string) (int, error)
	SetCover(ctx context.Context, routeID, userID, imageURL string) error
}
