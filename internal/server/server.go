// Package server exposes strip analysis and upload sessions over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/stripscan/internal/session"
	"github.com/jmylchreest/stripscan/internal/strip"
)

const (
	// DefaultSessionTTL is how long an idle session is kept.
	DefaultSessionTTL = 30 * time.Minute

	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Analyser       *strip.Analyser
	Logger         hclog.Logger
	MaxUploadBytes int
	SessionTTL     time.Duration
}

// Server is the HTTP front end.
type Server struct {
	app      *fiber.App
	analyser *strip.Analyser
	sessions *session.Store
	logger   hclog.Logger
	ttl      time.Duration
	maxBytes int
}

// New builds the fiber app and routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	s := &Server{
		analyser: opts.Analyser,
		sessions: session.NewStore(),
		logger:   logger.Named("http"),
		ttl:      ttl,
		maxBytes: opts.MaxUploadBytes,
	}

	app := fiber.New(fiber.Config{
		AppName:               "stripscan",
		DisableStartupMessage: true,
		// Params and form values outlive the request as session keys and reports.
		Immutable:    true,
		BodyLimit:    bodyLimit(opts.MaxUploadBytes),
		ErrorHandler: s.handleError,
	})

	app.Use(s.logRequests)

	app.Get("/", s.handleIndex)
	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api")
	api.Get("/version", s.handleVersion)
	api.Get("/table", s.handleTable)
	api.Post("/classify", s.handleClassify)

	sessions := api.Group("/sessions")
	sessions.Post("/", s.handleCreateSession)
	sessions.Get("/:id", s.handleGetSession)
	sessions.Post("/:id/submit", s.handleSubmit)
	sessions.Post("/:id/reset", s.handleReset)
	sessions.Delete("/:id", s.handleDeleteSession)

	s.app = app
	return s
}

// bodyLimit leaves headroom for multipart framing around the image itself.
func bodyLimit(maxUpload int) int {
	if maxUpload <= 0 {
		return fiber.DefaultBodyLimit
	}
	return maxUpload + 64<<10
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Run listens on addr until ctx is cancelled, pruning idle sessions as it goes.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "table", s.analyser.Table().Name(), "threshold", s.analyser.Threshold())
		errCh <- s.app.Listen(addr)
	}()

	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			if n := s.sessions.Prune(s.ttl); n > 0 {
				s.logger.Debug("pruned idle sessions", "count", n)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
	}
}

// logRequests logs every request once it has been handled.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if err != nil {
		status = statusFor(err)
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	args := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		s.logger.Error("request failed", append(args, "error", err)...)
	case err != nil:
		s.logger.Info("request rejected", append(args, "error", err)...)
	default:
		s.logger.Debug("request", args...)
	}
	return err
}
