package lens

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
	"golang.org/x/sync/singleflight"
)

// Doer performs one HTTP exchange with an explicit header order.
// *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client is the Lens API GraphQL client.
type Client struct {
	transport Doer
	pool      *pool.Pool[*Upstream]
	cfg       ClientConfig

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	refreshGroup singleflight.Group
}

// NewClient creates a fully-wired Lens client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	transport := cfg.Transport
	if transport == nil {
		opts := []stealth.ClientOption{
			stealth.WithHeaderOrder(lensHeaderOrder),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
		transport = bc
	}

	upstreams := make([]*Upstream, 0, len(cfg.Upstreams))
	for _, u := range cfg.Upstreams {
		upstreams = append(upstreams, newUpstream(u, cfg.RateLimit))
	}

	poolCfg := pool.Config{
		AlertHook: func(topic string, payload any) {
			slog.Warn("upstream pool alert", slog.String("topic", topic), slog.Any("payload", payload))
		},
	}

	c := &Client{
		transport:    transport,
		pool:         pool.New(upstreams, poolCfg),
		cfg:          cfg,
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
	}

	if cfg.SessionDir != "" {
		access, refresh, err := loadSession(cfg.SessionDir, cfg.SessionTTL)
		if err != nil {
			slog.Warn("error loading session", slog.Any("error", err))
		}
		if refresh != "" {
			c.setTokens(access, refresh)
			slog.Info("loaded session from disk", slog.String("dir", cfg.SessionDir))
		}
	}

	return c, nil
}

// Pool returns the underlying upstream pool.
func (c *Client) Pool() *pool.Pool[*Upstream] {
	return c.pool
}

// Gateways returns the configured URI gateways for picture resolution.
func (c *Client) Gateways() Gateways {
	return c.cfg.Gateways()
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(operation string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(operation, success, rateLimited)
	}
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

// tokens returns a snapshot of (accessToken, refreshToken) under lock.
func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}
