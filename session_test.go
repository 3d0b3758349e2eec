package lens

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-lenster/lenstest"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	require.NoError(t, saveSession(dir, "a1", "r1"))

	info, err := os.Stat(sessionPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	access, refresh, err := loadSession(dir, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)
}

func TestLoadSession_Expired(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(savedSession{AccessToken: "a", RefreshToken: "r", SavedAt: time.Now().Add(-48 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sessionPath(dir), data, 0600))

	access, refresh, err := loadSession(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestLoadSession_Missing(t *testing.T) {
	access, refresh, err := loadSession(t.TempDir(), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestNewClient_LoadsPersistedSession(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, saveSession(dir, "disk-access", "disk-refresh"))

	c := newTestClient(t, lenstest.New(), func(cfg *ClientConfig) {
		cfg.SessionDir = dir
		cfg.RefreshToken = "configured"
	})
	access, refresh := c.tokens()
	assert.Equal(t, "disk-access", access)
	assert.Equal(t, "disk-refresh", refresh)
}
