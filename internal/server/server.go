package server

import (
	"errors"
	"log/slog"

	"backend-chillwalk/internal/auth"
	"backend-chillwalk/internal/catalog"
	"backend-chillwalk/internal/config"
	"backend-chillwalk/internal/recording"
	"backend-chillwalk/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App        *fiber.App
	Cfg        config.Config
	DB         *pgxpool.Pool
	Redis      *redis.Client
	Stream     *stream.Hub
	Recordings *recording.Service
}

// NewServer wires every route group. db and redisClient may be nil: the
// catalog then falls back to the demo data and the live feed stays local.
func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

// Close ends every recording session and the live feed subscription.
func (s *Server) Close() {
	if s.Recordings != nil {
		s.Recordings.Close()
	}
	s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	var (
		authSvc  *auth.Service
		store    *catalog.PostgresStore
		profiles recording.ProfileEnsurer
		writer   recording.RouteWriter
	)
	if s.DB != nil {
		authSvc = auth.NewService(s.Cfg.JWTSecret, s.DB)
		store = catalog.NewPostgresStore(s.DB)
		profiles = authSvc
		writer = store
	} else {
		authSvc = auth.NewService(s.Cfg.JWTSecret, nil)
	}

	source, catalogStore := catalogSources(s.Cfg, store)
	catalogSvc := catalog.NewService(source, catalogStore, s.Cfg.RankingLimit, s.Cfg.RecommendLimit)
	s.Recordings = recording.NewService(writer, profiles, s.Stream, recording.DefaultWatchOptions(s.Cfg.FixTimeout))

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc, jwtMiddleware)
	catalog.RegisterRoutes(s.App.Group("/routes"), catalogSvc, jwtMiddleware)
	recording.RegisterRoutes(s.App.Group("/recordings"), s.Recordings, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

// catalogSources picks the read source named by CATALOG_SOURCE. Writes always
// go to Postgres when it is connected; the demo catalog is read-only.
func catalogSources(cfg config.Config, store *catalog.PostgresStore) (catalog.Source, catalog.Store) {
	var writes catalog.Store
	if store != nil {
		writes = store
	}

	switch cfg.CatalogSource {
	case config.SourceSupabase:
		src, err := catalog.NewSupabaseSource(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err == nil {
			return src, writes
		}
		slog.Warn("supabase catalog unavailable, serving demo routes", "error", err)
	case config.SourcePostgres, "":
		if store != nil {
			return store, writes
		}
		slog.Warn("postgres catalog unavailable, serving demo routes")
	case config.SourceDemo:
	default:
		slog.Warn("unknown catalog source, serving demo routes", "source", cfg.CatalogSource)
	}
	return catalog.NewDemoSource(), nil
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
