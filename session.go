package lens

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// sessionPath returns the file path for the persisted session.
func sessionPath(dir string) string {
	return filepath.Join(dir, "session.json")
}

// savedSession holds serialized tokens for persistence.
type savedSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SavedAt      time.Time `json:"saved_at"`
}

// saveSession persists access and refresh tokens to disk.
func saveSession(dir, access, refresh string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	s := savedSession{AccessToken: access, RefreshToken: refresh, SavedAt: time.Now()}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	path := sessionPath(dir)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	slog.Debug("session saved", slog.String("path", path))
	return nil
}

// loadSession loads a persisted session from disk. An expired or missing
// session returns empty tokens and no error.
func loadSession(dir string, ttl time.Duration) (access, refresh string, err error) {
	data, err := os.ReadFile(sessionPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", err
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", "", err
	}
	if time.Since(s.SavedAt) > ttl {
		slog.Debug("session expired", slog.String("dir", dir))
		return "", "", nil
	}
	return s.AccessToken, s.RefreshToken, nil
}

// RefreshSession exchanges the refresh token for a new token pair and
// persists it when a session dir is configured.
func (c *Client) RefreshSession(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return fmt.Errorf("refresh session: no refresh token")
	}

	body, err := c.doQuery(ctx, Operations["Refresh"], map[string]any{
		"request": map[string]any{"refreshToken": refresh},
	})
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	access, newRefresh, err := parseRefresh(body)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	if newRefresh == "" {
		newRefresh = refresh
	}
	c.setTokens(access, newRefresh)

	if c.cfg.SessionDir != "" {
		if err := saveSession(c.cfg.SessionDir, access, newRefresh); err != nil {
			slog.Warn("session save failed", slog.Any("error", err))
		}
	}
	slog.Info("session refreshed")
	return nil
}
