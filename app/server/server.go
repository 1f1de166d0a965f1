package server

import (
	"context"
	"log/slog"
	"time"

	"circuitflow/app/api"
	"circuitflow/app/middleware"
	"circuitflow/config"
	"circuitflow/generator"
	"circuitflow/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg    config.ServerConfig
	app    *fiber.App
	store  store.DocumentStorer
	logger *slog.Logger
}

// NewServer wires the routes around an already opened store. The server does
// not own the store; the caller closes it after Stop.
func NewServer(cfg config.ServerConfig, s store.DocumentStorer) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "circuitflow",
		ErrorHandler:          api.ErrorHandler,
		CaseSensitive:         true,
		DisableStartupMessage: true,
	})

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Handler())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: cfg.CORSOrigin != "*",
	}))

	var (
		checkHandler    = api.NewCheckHandler(cfg.Version, s)
		documentHandler = api.NewDocumentHandler(s)
		generateHandler = api.NewGenerateHandler(generator.Generate)
		apiGroup        = app.Group("/api")
	)

	app.Get("/health", checkHandler.HandleHealthy)
	app.Get("/ready", checkHandler.HandleReady)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiGroup.Get("/documents", documentHandler.HandleList)
	apiGroup.Get("/documents/:id", documentHandler.HandleGet)
	apiGroup.Get("/documents/:id/download", documentHandler.HandleDownload)
	apiGroup.Post("/generate", generateHandler.HandleGenerate)

	app.Use(func(c *fiber.Ctx) error {
		return api.ErrRouteNotFound()
	})

	return &Server{
		cfg:    cfg,
		app:    app,
		store:  s,
		logger: slog.Default(),
	}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks until the listener stops.
func (s *Server) Run() error {
	s.logger.Info("circuit flow api listening",
		"addr", s.cfg.Addr(),
		"health", s.cfg.APIBaseURL+"/health",
		"documents", s.cfg.APIBaseURL+"/api/documents")
	return s.app.Listen(s.cfg.Addr())
}

func (s *Server) Stop(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := s.app.ShutdownWithTimeout(timeout); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
