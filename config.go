package lens

import (
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// DefaultAPIURL is the public Lens API endpoint.
const DefaultAPIURL = "https://api.lens.dev"

// ClientConfig holds all configuration for the Lens client.
type ClientConfig struct {
	// Upstreams is the list of Lens API GraphQL endpoints, tried in pool order.
	Upstreams []string

	// AccessToken and RefreshToken seed an authenticated session.
	// Public queries work without them.
	AccessToken  string
	RefreshToken string

	// SessionDir is where refreshed tokens are persisted. Empty disables persistence.
	SessionDir string

	// SessionTTL controls how long a persisted session is considered valid.
	SessionTTL time.Duration

	// RateLimit configures per-upstream per-operation rate limiting.
	RateLimit ratelimit.Config

	// Backoff is the delay schedule between attempts.
	Backoff stealth.BackoffConfig

	// UpstreamCooldown is the soft-deactivation duration for an unhealthy upstream.
	UpstreamCooldown time.Duration

	// MetricsHook is called on each API attempt for external metrics collection.
	// operation is the GraphQL operation name, success and rateLimited indicate the outcome.
	MetricsHook func(operation string, success, rateLimited bool)

	// Proxy is an optional proxy URL for all outgoing requests.
	Proxy string

	// IPFSGateway rewrites ipfs:// picture URIs. Default: https://lens.infura-ipfs.io/ipfs/
	IPFSGateway string

	// ArweaveGateway rewrites ar:// picture URIs. Default: https://arweave.net/
	ArweaveGateway string

	// UserAgent is sent on every request.
	UserAgent string

	// MaxMediaBytes is the largest media body FetchMedia hands back. The
	// transport buffers the full body, so larger ones are rejected after download.
	MaxMediaBytes int

	// Transport overrides the HTTP transport. Nil builds a stealth client.
	Transport Doer
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if len(cfg.Upstreams) == 0 {
		cfg.Upstreams = []string{DefaultAPIURL}
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.Backoff.InitialWait == 0 {
		cfg.Backoff = stealth.DefaultBackoff
	}
	if cfg.UpstreamCooldown == 0 {
		cfg.UpstreamCooldown = 2 * time.Minute
	}
	if cfg.IPFSGateway == "" {
		cfg.IPFSGateway = "https://lens.infura-ipfs.io/ipfs/"
	}
	if cfg.ArweaveGateway == "" {
		cfg.ArweaveGateway = "https://arweave.net/"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxMediaBytes == 0 {
		cfg.MaxMediaBytes = 5 << 20
	}
}

// Gateways returns the URI rewrite targets used by Picture.URL.
func (cfg ClientConfig) Gateways() Gateways {
	return Gateways{IPFS: cfg.IPFSGateway, Arweave: cfg.ArweaveGateway}
}
