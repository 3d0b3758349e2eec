package lens

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-lenster/lenstest"
)

func newTestClient(t *testing.T, tr *lenstest.Transport, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		Upstreams: []string{"https://api.test/"},
		Transport: tr,
		Backoff: stealth.BackoffConfig{
			InitialWait: time.Millisecond,
			MaxWait:     2 * time.Millisecond,
			Multiplier:  1.0,
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClientProfile(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(200, profileBody))
	c := newTestClient(t, tr)

	p, err := c.Profile(context.Background(), "yoginth.lens")
	require.NoError(t, err)
	assert.Equal(t, "Yoginth", p.Name)
	assert.Equal(t, 12345, p.Followers)

	reqs := tr.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "POST", reqs[0].Method)
	assert.Equal(t, "https://api.test", reqs[0].URL)
	assert.Equal(t, "application/json", reqs[0].Headers["content-type"])
	assert.NotContains(t, reqs[0].Headers, "x-access-token")
	request, ok := reqs[0].Variables["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "yoginth.lens", request["handle"])
}

func TestClientProfile_NotFound(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(200, lenstest.NotFoundBody))
	c := newTestClient(t, tr)

	_, err := c.Profile(context.Background(), "nobody.lens")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound))
	assert.True(t, IsNotFound(err))
}

func TestDoQuery_RetriesServerErrors(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.Sequence(
		lenstest.JSON(502, "bad gateway"),
		lenstest.JSON(200, profileBody),
	))

	var mu sync.Mutex
	var outcomes []bool
	c := newTestClient(t, tr, func(cfg *ClientConfig) {
		cfg.MetricsHook = func(_ string, success, _ bool) {
			mu.Lock()
			outcomes = append(outcomes, success)
			mu.Unlock()
		}
	})

	p, err := c.Profile(context.Background(), "yoginth.lens")
	require.NoError(t, err)
	assert.Equal(t, "yoginth.lens", p.Handle)
	assert.Equal(t, 2, tr.Calls("Profile"))
	assert.Equal(t, []bool{false, true}, outcomes)
}

func TestDoQuery_BadInputNotRetried(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(400,
		`{"errors":[{"message":"Handle is invalid","extensions":{"code":"BAD_USER_INPUT"}}]}`))
	c := newTestClient(t, tr)

	_, err := c.Profile(context.Background(), "???")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, 1, tr.Calls("Profile"))
}

func TestDoQuery_TransportErrorExhaustsRetries(t *testing.T) {
	tr := lenstest.New()
	tr.Err = errors.New("connection refused")
	c := newTestClient(t, tr)

	_, err := c.Profile(context.Background(), "yoginth.lens")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDoQuery_InternalErrorWithData(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(200,
		`{"data":{"profile":{"id":"0x01","handle":"a.lens"}},"errors":[{"message":"partial","extensions":{"code":"INTERNAL_SERVER_ERROR"}}]}`))
	c := newTestClient(t, tr)

	p, err := c.Profile(context.Background(), "a.lens")
	require.NoError(t, err)
	assert.Equal(t, "a.lens", p.Handle)
	assert.Equal(t, 1, tr.Calls("Profile"))
}

func TestDoQuery_ContextCanceled(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(200, profileBody))
	c := newTestClient(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Profile(ctx, "yoginth.lens")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tr.Calls("Profile"))
}

func TestDoQuery_RefreshesSessionOnce(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", func(req lenstest.Request) (int, string) {
		if req.Headers["x-access-token"] != "Bearer fresh" {
			return 200, `{"errors":[{"message":"expired","extensions":{"code":"UNAUTHENTICATED"}}]}`
		}
		return 200, profileBody
	})
	tr.Handle("Refresh", lenstest.JSON(200, `{"data":{"refresh":{"accessToken":"fresh","refreshToken":"r2"}}}`))

	dir := t.TempDir()
	c := newTestClient(t, tr, func(cfg *ClientConfig) {
		cfg.AccessToken = "stale"
		cfg.RefreshToken = "r1"
		cfg.SessionDir = dir
	})

	p, err := c.Profile(context.Background(), "yoginth.lens")
	require.NoError(t, err)
	assert.Equal(t, "Yoginth", p.Name)
	assert.Equal(t, 1, tr.Calls("Refresh"))
	assert.Equal(t, 2, tr.Calls("Profile"))

	access, refresh := c.tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "r2", refresh)

	_, err = os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
}

func TestDoQuery_ConcurrentRefreshShared(t *testing.T) {
	const callers = 4
	var (
		mu    sync.Mutex
		stale int
	)
	allStale := make(chan struct{})
	tr := lenstest.New()
	tr.Handle("Profile", func(req lenstest.Request) (int, string) {
		if req.Headers["x-access-token"] == "Bearer fresh" {
			return 200, profileBody
		}
		mu.Lock()
		stale++
		if stale == callers {
			close(allStale)
		}
		mu.Unlock()
		select {
		case <-allStale:
		case <-time.After(2 * time.Second):
		}
		return 401, "unauthorized"
	})
	tr.Handle("Refresh", func(lenstest.Request) (int, string) {
		time.Sleep(100 * time.Millisecond)
		return 200, `{"data":{"refresh":{"accessToken":"fresh","refreshToken":"r2"}}}`
	})
	c := newTestClient(t, tr, func(cfg *ClientConfig) {
		cfg.AccessToken = "stale"
		cfg.RefreshToken = "r1"
	})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Profile(context.Background(), "yoginth.lens")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tr.Calls("Refresh"))
	assert.Equal(t, 2*callers, tr.Calls("Profile"))
}

func TestDoQuery_NoRefreshWithoutToken(t *testing.T) {
	tr := lenstest.New()
	tr.Handle("Profile", lenstest.JSON(401, "unauthorized"))
	c := newTestClient(t, tr)

	_, err := c.Profile(context.Background(), "yoginth.lens")
	require.Error(t, err)
	assert.Equal(t, 0, tr.Calls("Refresh"))
	assert.Equal(t, 1, tr.Calls("Profile"))
}

func TestFetchMedia(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	tr := lenstest.New()
	tr.ServeMedia("https://cdn.test/a.png", png)
	c := newTestClient(t, tr)

	data, mime, err := c.FetchMedia(context.Background(), "https://cdn.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", mime)

	_, _, err = c.FetchMedia(context.Background(), "https://cdn.test/missing.png")
	require.Error(t, err)

	_, _, err = c.FetchMedia(context.Background(), "")
	require.Error(t, err)
}

func TestFetchMedia_TooLarge(t *testing.T) {
	tr := lenstest.New()
	tr.ServeMedia("https://cdn.test/big", make([]byte, 64))
	tr.ServeMedia("https://cdn.test/fits", make([]byte, 32))
	c := newTestClient(t, tr, func(cfg *ClientConfig) { cfg.MaxMediaBytes = 32 })

	_, _, err := c.FetchMedia(context.Background(), "https://cdn.test/big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "64 bytes exceeds limit 32")

	body, _, err := c.FetchMedia(context.Background(), "https://cdn.test/fits")
	require.NoError(t, err)
	assert.Len(t, body, 32)
}

func TestFetchMedia_DefaultLimit(t *testing.T) {
	c := newTestClient(t, lenstest.New())
	assert.Equal(t, 5<<20, c.cfg.MaxMediaBytes)
}
