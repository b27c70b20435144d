package catalog

import (
	"context"

	"backend-chillwalk/internal/route"
)

// DemoSource serves the bundled sample catalog. It is read-only.
type DemoSource struct {
	routes []route.Route
}

func NewDemoSource() *DemoSource {
	return &DemoSource{routes: route.DemoCatalog()}
}

func (d *DemoSource) List(_ context.Context, q Query) ([]route.Route, error) {
	out := route.Filter(d.routes, route.Criteria{
		Season:      q.Season,
		Temperature: q.Temperature,
		Search:      q.Search,
	})
	switch q.OrderBy {
	case OrderCreatedAt:
		out = route.Sort(out, route.SortNewest)
	case OrderLikes:
		out = route.Sort(out, route.SortLikes)
	case OrderRating:
		out = route.Sort(out, route.SortRating)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (d *DemoSource) Get(_ context.Context, id string) (route.Route, error) {
	for _, r := range d.routes {
		if r.ID == id {
			return r, nil
		}
	}
	return route.Route{}, ErrNotFound
}
