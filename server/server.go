// Package server exposes the home page, profile meta pages and the meta-image
// endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/home"
	"github.com/anatolykoptev/go-lenster/og"
	"github.com/anatolykoptev/go-lenster/store"
)

// CacheControl is sent with every meta image and fallback response.
const CacheControl = "s-maxage=86400"

// Config configures the HTTP surface.
type Config struct {
	Addr            string
	PublicURL       string
	ProfileCookie   string
	MessagesCookie  string
	HandleSuffix    string
	RateLimit       int // requests per minute per IP on /api/og; 0 disables
	ShutdownTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ProfileCookie == "" {
		c.ProfileCookie = "lenster.profile"
	}
	if c.MessagesCookie == "" {
		c.MessagesCookie = "lenster.messages"
	}
	if c.HandleSuffix == "" {
		c.HandleSuffix = ".lens"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
}

// Profiles looks up a profile by handle.
type Profiles interface {
	Profile(ctx context.Context, handle string) (*lens.Profile, error)
}

// Deps are the components the handlers call into.
type Deps struct {
	Profiles  Profiles
	Loader    *home.Loader
	Generator *og.Generator
	Store     store.Store
}

// Server is the HTTP front.
type Server struct {
	cfg    Config
	deps   Deps
	router chi.Router
}

// New wires routes and middleware.
func New(cfg Config, deps Deps) *Server {
	cfg.defaults()
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observe)
	r.Use(recovery)

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleHome)
	r.Get("/u/{handle}", s.handleProfileMeta)

	r.Group(func(g chi.Router) {
		if s.cfg.RateLimit > 0 {
			g.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		g.Get("/api/og/profile/{handle}", s.handleProfileImage)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	slog.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
