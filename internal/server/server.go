package server

import (
	"github.com/jlucaswrk/coldservice-recife/internal/auth"
	"github.com/jlucaswrk/coldservice-recife/internal/config"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/stream"
	"github.com/jlucaswrk/coldservice-recife/internal/technician"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

// NewServer wires the API. Sessions live in Postgres and technician
// positions in Redis when those backends are configured; either falls back
// to an in-memory store so the API stays usable in development.
func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
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

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	var sessionStore session.Store = session.NewMemoryStore()
	if s.DB != nil {
		sessionStore = session.NewPostgresStore(s.DB)
	}

	var technicianStore technician.Store = technician.NewMemoryStore()
	if s.Redis != nil {
		technicianStore = technician.NewRedisStore(s.Redis)
	}

	window := s.Cfg.StalenessWindow()
	if window <= 0 {
		window = technician.DefaultStalenessWindow
	}

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	if s.DB != nil {
		auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	} else {
		// accounts need the database; without it the auth endpoints refuse
		// instead of panicking inside a query
		s.App.Group("/auth").All("/*", func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusServiceUnavailable, "account store unavailable")
		})
	}
	session.RegisterRoutes(s.App.Group("/session"), session.NewService(sessionStore))
	technician.RegisterRoutes(s.App.Group("/technician-location"), technician.NewService(technicianStore, s.Stream, window), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
