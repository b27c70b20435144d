package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-chillwalk/internal/db"
	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const selectRoutes = `
	SELECT r.id::text, r.name, r.description, r.distance_km, r.duration_min, r.difficulty, r.rating, r.likes,
	       r.seasons, r.temperatures, COALESCE(r.image_url, ''), COALESCE(r.user_id::text, ''),
	       COALESCE(p.username, ''), r.created_at, COALESCE(ST_AsText(rp.path), '')
	FROM routes r
	LEFT JOIN profiles p ON p.id = r.user_id
	LEFT JOIN route_points rp ON rp.route_id = r.id`

// PostgresStore reads and writes the catalog in a PostGIS-enabled Postgres.
type PostgresStore struct {
	db db.TxBeginner
}

func NewPostgresStore(db db.TxBeginner) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, q Query) ([]route.Route, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.Season != "" {
		add("r.seasons @> ARRAY[$%d]::text[]", string(q.Season))
	}
	if q.Temperature != "" {
		add("r.temperatures @> ARRAY[$%d]::text[]", string(q.Temperature))
	}
	if q.Search != "" {
		add("(r.name ILIKE $%[1]d OR r.description ILIKE $%[1]d)", "%"+likeEscaper.Replace(q.Search)+"%")
	}

	var sql strings.Builder
	sql.WriteString(selectRoutes)
	if len(where) > 0 {
		sql.WriteString("\n\tWHERE " + strings.Join(where, " AND "))
	}
	switch q.OrderBy {
	case OrderCreatedAt, OrderLikes, OrderRating:
		sql.WriteString("\n\tORDER BY r." + string(q.OrderBy) + " DESC, r.created_at, r.id")
	default:
		sql.WriteString("\n\tORDER BY r.created_at, r.id")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sql, "\n\tLIMIT $%d", len(args))
	}

	return s.queryRoutes(ctx, sql.String(), args...)
}

// likeEscaper makes search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PostgresStore) Get(ctx context.Context, id string) (route.Route, error) {
	if _, err := uuid.Parse(id); err != nil {
		return route.Route{}, ErrNotFound
	}
	routes, err := s.queryRoutes(ctx, selectRoutes+"\n\tWHERE r.id = $1", id)
	if err != nil {
		return route.Route{}, err
	}
	if len(routes) == 0 {
		return route.Route{}, ErrNotFound
	}
	return routes[0], nil
}

func (s *PostgresStore) queryRoutes(ctx context.Context, sql string, args ...any) ([]route.Route, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	routes := []route.Route{}
	var ids []string
	for rows.Next() {
		var (
			r              route.Route
			difficulty     string
			seasons, temps []string
			pathWKT        string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.DistanceKm, &r.DurationMin, &difficulty, &r.Rating, &r.Likes,
			&seasons, &temps, &r.ImageURL, &r.AuthorID, &r.AuthorName, &r.CreatedAt, &pathWKT); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		r.Difficulty = route.Difficulty(difficulty)
		if r.Seasons, err = route.ParseSeasons(seasons); err != nil {
			return nil, fmt.Errorf("route %s: %w", r.ID, err)
		}
		if r.Temperatures, err = route.ParseTemperatures(temps); err != nil {
			return nil, fmt.Errorf("route %s: %w", r.ID, err)
		}
		if pathWKT != "" {
			if r.Path, err = geo.ParsePathWKT(pathWKT); err != nil {
				return nil, fmt.Errorf("route %s path: %w", r.ID, err)
			}
		}
		ids = append(ids, r.ID)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}

	spots, err := s.loadSpots(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range routes {
		routes[i].Spots = spots[routes[i].ID]
		if routes[i].Spots == nil {
			routes[i].Spots = []route.Spot{}
		}
	}
	return routes, nil
}

func (s *PostgresStore) loadSpots(ctx context.Context, routeIDs []string) (map[string][]route.Spot, error) {
	if len(routeIDs) == 0 {
		return map[string][]route.Spot{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id::text, route_id::text, name, type, ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(description, ''), rating, COALESCE(tags, '{}'), COALESCE(open_hours, '')
		FROM route_spots WHERE route_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, routeIDs)
	if err != nil {
		return nil, fmt.Errorf("query spots: %w", err)
	}
	defer rows.Close()

	spots := map[string][]route.Spot{}
	for rows.Next() {
		var (
			sp       route.Spot
			spotType string
		)
		if err := rows.Scan(&sp.ID, &sp.RouteID, &sp.Name, &spotType, &sp.Location.Lat, &sp.Location.Lng,
			&sp.Description, &sp.Rating, &sp.Tags, &sp.OpenHours); err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		sp.Type = route.SpotType(spotType)
		spots[sp.RouteID] = append(spots[sp.RouteID], sp)
	}
	return spots, rows.Err()
}

// CreateRoute inserts the route, its path and its spots in a single transaction.
func (s *PostgresStore) CreateRoute(ctx context.Context, r route.Route) (route.Route, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return route.Route{}, fmt.Errorf("begin: %w", err)
	}
	fail := func(err error) (route.Route, error) {
		_ = tx.Rollback(ctx)
		return route.Route{}, err
	}

	r.ID = uuid.NewString()
	if r.Difficulty == "" {
		r.Difficulty = route.Easy
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO routes (id, name, description, distance_km, duration_min, difficulty, rating, likes, seasons, temperatures, image_url, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, r.ID, r.Name, r.Description, r.DistanceKm, r.DurationMin, string(r.Difficulty), r.Rating, r.Likes,
		route.SeasonStrings(r.Seasons), route.TemperatureStrings(r.Temperatures), nullable(r.ImageURL), nullable(r.AuthorID))
	if err := row.Scan(&r.CreatedAt); err != nil {
		return fail(fmt.Errorf("insert route: %w", err))
	}

	if len(r.Path) > 0 {
		path, err := geo.PathWKT(r.Path)
		if err != nil {
			return fail(err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO route_points (route_id, path)
			VALUES ($1, ST_GeogFromText($2))
		`, r.ID, path); err != nil {
			return fail(fmt.Errorf("insert route points: %w", err))
		}
	}

	for i := range r.Spots {
		r.Spots[i].RouteID = r.ID
		if err := insertSpot(ctx, tx, &r.Spots[i]); err != nil {
			return fail(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return route.Route{}, fmt.Errorf("commit: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) AddSpot(ctx context.Context, routeID string, spot route.Spot) (route.Spot, error) {
	if _, err := uuid.Parse(routeID); err != nil {
		return route.Spot{}, ErrNotFound
	}
	spot.RouteID = routeID
	if err := insertSpot(ctx, s.db, &spot); err != nil {
		return route.Spot{}, err
	}
	return spot, nil
}

func insertSpot(ctx context.Context, q db.Querier, spot *route.Spot) error {
	spot.ID = uuid.NewString()
	if spot.Tags == nil {
		spot.Tags = []string{}
	}
	_, err := q.Exec(ctx, `
		INSERT INTO route_spots (id, route_id, name, type, location, description, rating, tags, open_hours)
		VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography, $7,$8,$9,$10)
	`, spot.ID, spot.RouteID, spot.Name, string(spot.Type), spot.Location.Lng, spot.Location.Lat,
		spot.Description, spot.Rating, spot.Tags, spot.OpenHours)
	if err != nil {
		return mapErr(fmt.Errorf("insert spot: %w", err))
	}
	return nil
}

// DeleteRoute removes a route owned by userID. Spots, points and likes go with it.
func (s *PostgresStore) DeleteRoute(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Like records userID's like once and returns the route's like count.
func (s *PostgresStore) Like(ctx context.Context, routeID, userID string) (int, error) {
	if _, err := uuid.Parse(routeID); err != nil {
		return 0, ErrNotFound
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO route_likes (route_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, routeID, userID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, mapErr(fmt.Errorf("insert like: %w", err))
	}

	var row pgx.Row
	if tag.RowsAffected() == 1 {
		row = tx.QueryRow(ctx, `UPDATE routes SET likes = likes + 1 WHERE id=$1 RETURNING likes`, routeID)
	} else {
		row = tx.QueryRow(ctx, `SELECT likes FROM routes WHERE id=$1`, routeID)
	}
	var likes int
	if err := row.Scan(&likes); err != nil {
		_ = tx.Rollback(ctx)
		return 0, mapErr(fmt.Errorf("count likes: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return likes, nil
}

func (s *PostgresStore) SetCover(ctx context.Context, routeID, userID, imageURL string) error {
	if _, err := uuid.Parse(routeID); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `UPDATE routes SET image_url=$3 WHERE id=$1 AND user_id=$2`, routeID, userID, imageURL)
	if err != nil {
		return fmt.Errorf("set cover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapErr turns missing rows and dangling foreign keys into ErrNotFound.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
