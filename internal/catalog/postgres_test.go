package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

const routeID = "11111111-1111-4111-8111-111111111111"

var (
	routeCols = []string{"id", "name", "description", "distance_km", "duration_min", "difficulty", "rating", "likes",
		"seasons", "temperatures", "image_url", "user_id", "username", "created_at", "path"}
	spotCols = []string{"id", "route_id", "name", "type", "lat", "lng", "description", "rating", "tags", "open_hours"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresListPushesQueryDown(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`r\.seasons @> ARRAY\[\$1\]::text\[\] AND r\.temperatures @> ARRAY\[\$2\]::text\[\] AND \(r\.name ILIKE \$3 OR r\.description ILIKE \$3\) ORDER BY r\.likes DESC, r\.created_at, r\.id LIMIT \$4`).
		WithArgs("autumn", "mild", "%leaves%", 5).
		WillReturnRows(pgxmock.NewRows(routeCols).AddRow(
			routeID, "Autumn Leaves", "Red leaves", 2.8, 40, "easy", 4.7, 1500,
			[]string{"autumn"}, []string{"mild", "cool"}, "", "user-1", "walker", created,
			"LINESTRING(139.77526 35.71503,139.77222 35.71611)"))
	mock.ExpectQuery(`FROM route_spots WHERE route_id = ANY`).
		WithArgs([]string{routeID}).
		WillReturnRows(pgxmock.NewRows(spotCols).AddRow(
			"spot-1", routeID, "Ueno Park", "park", 35.71611, 139.77222, "Museums", nil, []string{"museum"}, ""))

	store := NewPostgresStore(mock)
	routes, err := store.List(context.Background(), Query{
		Season:      route.Autumn,
		Temperature: route.Mild,
		Search:      "leaves",
		OrderBy:     OrderLikes,
		Limit:       5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
	r := routes[0]
	if r.AuthorName != "walker" || r.Likes != 1500 || !r.HasTemperature(route.Cool) {
		t.Fatalf("unexpected route: %+v", r)
	}
	if len(r.Path) != 2 || r.Path[0] != (geo.Point{Lat: 35.71503, Lng: 139.77526}) {
		t.Fatalf("unexpected path: %+v", r.Path)
	}
	if len(r.Spots) != 1 || r.Spots[0].Type != route.Park || r.Spots[0].Rating != nil {
		t.Fatalf("unexpected spots: %+v", r.Spots)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListBreaksTiesAndMatchesSearchLiterally(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`\(r\.name ILIKE \$1 OR r\.description ILIKE \$1\) ORDER BY r\.rating DESC, r\.created_at, r\.id$`).
		WithArgs(`%100\%\_off\\%`).
		WillReturnRows(pgxmock.NewRows(routeCols))

	_, err := NewPostgresStore(mock).List(context.Background(), Query{
		Search:  `100%_off\`,
		OrderBy: OrderRating,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListDefaultOrderWithoutFilters(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`LEFT JOIN route_points rp ON rp\.route_id = r\.id ORDER BY r\.created_at, r\.id$`).
		WithArgs().
		WillReturnRows(pgxmock.NewRows(routeCols))

	routes, err := NewPostgresStore(mock).List(context.Background(), Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if routes == nil || len(routes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", routes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetNotFound(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	if _, err := store.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}

	mock.ExpectQuery(`WHERE r\.id = \$1`).
		WithArgs(routeID).
		WillReturnRows(pgxmock.NewRows(routeCols))
	if _, err := store.Get(context.Background(), routeID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateRouteInOneTransaction(t *testing.T) {
	mock := newMock(t)
	path := []geo.Point{{Lat: 35.681236, Lng: 139.767125}, {Lat: 35.685175, Lng: 139.752799}}
	pathWKT, err := geo.PathWKT(path)
	if err != nil {
		t.Fatalf("wkt: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(anyArgs(12)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO route_points .* ST_GeogFromText\(\$2\)`).
		WithArgs(pgxmock.AnyArg(), pathWKT).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO route_spots`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	created, err := NewPostgresStore(mock).CreateRoute(context.Background(), route.Route{
		Name:     "Moat walk",
		Path:     path,
		Spots:    []route.Spot{{Name: "Bench", Type: route.Bench, Location: path[1]}},
		AuthorID: "user-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Difficulty != route.Easy || created.Spots[0].RouteID != created.ID {
		t.Fatalf("unexpected created route: %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateRouteRollsBackOnPointsFailure(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO routes`).
		WithArgs(anyArgs(12)...).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO route_points`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewPostgresStore(mock).CreateRoute(context.Background(), route.Route{
		Name: "Moat walk",
		Path: []geo.Point{{Lat: 35.68, Lng: 139.76}, {Lat: 35.69, Lng: 139.75}},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresLikeIsIdempotentPerUser(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO route_likes`).
		WithArgs(routeID, "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE routes SET likes = likes \+ 1`).
		WithArgs(routeID).
		WillReturnRows(pgxmock.NewRows([]string{"likes"}).AddRow(11))
	mock.ExpectCommit()

	likes, err := store.Like(context.Background(), routeID, "user-1")
	if err != nil || likes != 11 {
		t.Fatalf("first like: %d %v", likes, err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO route_likes`).
		WithArgs(routeID, "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(`SELECT likes FROM routes`).
		WithArgs(routeID).
		WillReturnRows(pgxmock.NewRows([]string{"likes"}).AddRow(11))
	mock.ExpectCommit()

	likes, err = store.Like(context.Background(), routeID, "user-1")
	if err != nil || likes != 11 {
		t.Fatalf("repeat like: %d %v", likes, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresLikeUnknownRoute(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO route_likes`).
		WithArgs(routeID, "user-1").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	if _, err := NewPostgresStore(mock).Like(context.Background(), routeID, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresOwnerWrites(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM routes WHERE id=\$1 AND user_id=\$2`).
		WithArgs(routeID, "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := store.DeleteRoute(ctx, routeID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign route, got %v", err)
	}

	mock.ExpectExec(`DELETE FROM routes`).
		WithArgs(routeID, "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := store.DeleteRoute(ctx, routeID, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec(`UPDATE routes SET image_url=\$3`).
		WithArgs(routeID, "user-1", "https://img.example/cover.jpg").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := store.SetCover(ctx, routeID, "user-1", "https://img.example/cover.jpg"); err != nil {
		t.Fatalf("set cover: %v", err)
	}

	mock.ExpectExec(`INSERT INTO route_spots`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	spot, err := store.AddSpot(ctx, routeID, route.Spot{Name: "Kiosk", Type: route.Shop})
	if err != nil {
		t.Fatalf("add spot: %v", err)
	}
	if spot.ID == "" || spot.RouteID != routeID || spot.Tags == nil {
		t.Fatalf("unexpected spot: %+v", spot)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
