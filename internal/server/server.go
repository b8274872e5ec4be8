package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/config"
	"github.com/congo-pay/bankist/internal/routes"
	"github.com/congo-pay/bankist/internal/session"
)

// Server wraps the Fiber application and the bank services it fronts.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	services *routes.Services
	logger   *slog.Logger
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, accounts *account.Registry, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	services, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Accounts: accounts})
	if err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, services: services, logger: logger}, nil
}

// App exposes the Fiber application, e.g. for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown stops accepting requests, cancels pending loan grants and ends
// the active session.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.services.Teller.Shutdown()
	if logoutErr := s.services.Session.Logout(); logoutErr != nil && !errors.Is(logoutErr, session.ErrNoSession) {
		s.logger.Warn("end session", slog.Any("error", logoutErr))
	}
	return err
}
