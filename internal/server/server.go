// Package server exposes classification, question resolution and
// suggestion over HTTP so the completion key stays server-side.
package server

import (
	"context"
	"strings"

	"formsuggest/internal/config"
	"formsuggest/internal/extract"
	"formsuggest/internal/logging"
	"formsuggest/internal/store"
	"formsuggest/internal/suggest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the services the handlers call into.
type Deps struct {
	Suggester *suggest.Service
	Settings  *store.Settings
	Extractor *extract.Extractor
}

type Server struct {
	app  *fiber.App
	cfg  config.ServerConfig
	deps Deps
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	bodyLimit := cfg.BodyLimitKB * 1024
	if bodyLimit <= 0 {
		bodyLimit = 2 * 1024 * 1024
	}
	origins := cfg.AllowOrigins
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "formsuggest",
		BodyLimit:             bodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))

	if deps.Suggester == nil {
		// answers every request with the missing-key fallback
		deps.Suggester = suggest.NewService(nil)
	}

	s := &Server{app: app, cfg: cfg, deps: deps}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1")
	api.Get("/health", s.health)
	api.Post("/classify", s.classify)
	api.Post("/question", s.question)
	api.Post("/suggest", s.suggest)
	api.Get("/content", s.getContent)
	api.Put("/content", s.putContent)
	api.Get("/settings", s.getSettings)
	api.Put("/settings", s.putSettings)
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run listens on the configured address until Shutdown.
func (s *Server) Run() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8787"
	}
	logging.Server("listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
