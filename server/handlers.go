package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/home"
	"github.com/anatolykoptev/go-lenster/meta"
	"github.com/anatolykoptev/go-lenster/og"
)

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", slog.Any("error", err))
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeFallback answers with the generic meta document.
func writeFallback(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", CacheControl)
	_, _ = w.Write(meta.Fallback())
}

func (s *Server) handleProfileImage(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	format := og.ParseFormat(r.URL.Query().Get("format"))

	data, err := s.deps.Generator.Render(r.Context(), handle, format)
	if err != nil {
		slog.Warn("cannot generate og image", slog.String("handle", handle), slog.Any("error", err))
		ogFallbacksTotal.Inc()
		writeFallback(w)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", CacheControl)
	_, _ = w.Write(data)
}

func (s *Server) handleProfileMeta(w http.ResponseWriter, r *http.Request) {
	handle, err := og.NormalizeHandle(chi.URLParam(r, "handle"), s.cfg.HandleSuffix)
	if err != nil {
		writeFallback(w)
		return
	}
	p, err := s.deps.Profiles.Profile(r.Context(), handle)
	if err != nil {
		if !lens.IsNotFound(err) {
			slog.Warn("profile meta lookup failed", slog.String("handle", handle), slog.Any("error", err))
		}
		writeFallback(w)
		return
	}
	imageURL := s.cfg.PublicURL + "/api/og/profile/" + url.PathEscape(handle)
	m := meta.ForProfile(p, imageURL)
	m.URL = s.cfg.PublicURL + "/u/" + url.PathEscape(handle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheControl)
	_, _ = w.Write(meta.Generate(m))
}

// currentState reads the session state from cookies. A profile that cannot
// be loaded leaves the visitor logged out.
func (s *Server) currentState(r *http.Request) home.State {
	var st home.State
	if c, err := r.Cookie(s.cfg.MessagesCookie); err == nil && c.Value == "1" {
		st.MessagesEnabled = true
	}
	c, err := r.Cookie(s.cfg.ProfileCookie)
	if err != nil || c.Value == "" {
		return st
	}
	handle, err := og.NormalizeHandle(c.Value, s.cfg.HandleSuffix)
	if err != nil {
		return st
	}
	p, err := s.deps.Profiles.Profile(r.Context(), handle)
	if err != nil {
		slog.Warn("current profile lookup failed", slog.String("handle", handle), slog.Any("error", err))
		return st
	}
	st.CurrentProfile = p
	return st
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := home.Compose(s.currentState(r), home.ParseFeedType(q.Get("type")))
	if s.deps.Loader != nil {
		s.deps.Loader.Load(r.Context(), &page, q.Get("cursor"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := home.Render(w, page); err != nil {
		slog.Error("render home", slog.Any("error", err))
		writeFallback(w)
	}
}
