// Package server is the browser dashboard: upload a sensor file, then chart,
// summarize, filter and download it.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/luxboard/internal/chart"
	"github.com/KaramelBytes/luxboard/internal/logging"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/session"
	"github.com/KaramelBytes/luxboard/internal/site"
)

//go:embed templates/index.html
var templatesFS embed.FS

// SessionCookie names the cookie holding the session ID.
const SessionCookie = "luxboard_session"

// DownloadName is the file name offered for filtered downloads.
const DownloadName = "datos_filtrados.csv"

// Config contains configuration options for the dashboard server.
type Config struct {
	Addr string
	// BodyLimit bounds uploads in bytes.
	BodyLimit       int
	SessionCapacity int
	SessionTTL      time.Duration
	Chart           chart.Options
	Parser          parser.Options
	Site            site.Info
	// BannerPath is the decorative image; a missing file shows a notice.
	BannerPath string
	Logger     *slog.Logger
	// AccessLog receives one line per request; nil disables it.
	AccessLog io.Writer
}

// Server handles the HTTP interface of the dashboard.
type Server struct {
	cfg      Config
	app      *fiber.App
	sessions *session.Store
	tmpl     *template.Template
	log      *slog.Logger
}

// New builds the fiber app and session store.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 200 << 20
	}
	if cfg.SessionCapacity <= 0 {
		cfg.SessionCapacity = 256
	}
	if err := cfg.Site.Validate(); err != nil {
		return nil, err
	}
	store, err := session.New(session.Options{
		Capacity: cfg.SessionCapacity,
		TTL:      cfg.SessionTTL,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("index.html").
		Funcs(template.FuncMap{"formatStat": formatStat}).
		ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{cfg: cfg, sessions: store, tmpl: tmpl, log: cfg.Logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "luxboard",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
		Immutable:             true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	if cfg.AccessLog != nil {
		s.app.Use(logger.New(logger.Config{Output: cfg.AccessLog}))
	}
	s.setupRoutes()
	return s, nil
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) setupRoutes() {
	s.app.Get("/", s.handleIndex)
	s.app.Post("/upload", s.handleUpload)
	s.app.Post("/reset", s.handleReset)
	s.app.Get("/chart", s.handleChart)
	s.app.Get("/download", s.handleDownload)
	s.app.Get("/banner", s.handleBanner)
	s.app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := s.app.Group("/api", cors.New())
	api.Get("/stats", s.handleStats)
	api.Get("/filter", s.handleFilter)
	api.Get("/site", s.handleSite)
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the dashboard on ln, the session sweeper, and the shutdown watcher
// in one group. It returns after a graceful shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dashboard listening", "addr", ln.Addr().String())
		if err := s.app.Listener(ln); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.sweepSessions(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) sweepSessions(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	interval := max(s.cfg.SessionTTL/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
