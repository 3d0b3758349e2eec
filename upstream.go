package lens

import (
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Upstream is one Lens API endpoint tracked by the pool.
type Upstream struct {
	URL string

	active       bool
	reactivateAt time.Time

	mu          sync.Mutex
	rateLimiter *ratelimit.Limiter

	pool.HealthTracker
}

func newUpstream(url string, rl ratelimit.Config) *Upstream {
	return &Upstream{
		URL:           strings.TrimRight(url, "/"),
		active:        true,
		rateLimiter:   ratelimit.NewLimiter(rl),
		HealthTracker: pool.DefaultHealthTracker(),
	}
}

// ID implements pool.Identity.
func (u *Upstream) ID() string { return u.URL }

// IsActive implements pool.Identity.
func (u *Upstream) IsActive() bool { return u.active }

// SetActive implements pool.Identity.
func (u *Upstream) SetActive(v bool) { u.active = v }

// ReactivateAt implements pool.Identity.
func (u *Upstream) ReactivateAt() time.Time { return u.reactivateAt }

// SetReactivateAt implements pool.Identity.
func (u *Upstream) SetReactivateAt(t time.Time) { u.reactivateAt = t }

// AllowRequest checks if this upstream can take a request for the given operation.
func (u *Upstream) AllowRequest(operation string) bool {
	u.mu.Lock()
	rl := u.rateLimiter
	u.mu.Unlock()
	if rl == nil {
		return true
	}
	return rl.Allow(operation)
}

// MarkRateLimited blocks the operation on this upstream until the given time.
func (u *Upstream) MarkRateLimited(operation string, until time.Time) {
	u.mu.Lock()
	rl := u.rateLimiter
	u.mu.Unlock()
	if rl == nil {
		return
	}
	rl.MarkRateLimited(operation, until)
}

// IsRateLimited returns true if the operation is currently blocked.
func (u *Upstream) IsRateLimited(operation string) bool {
	u.mu.Lock()
	rl := u.rateLimiter
	u.mu.Unlock()
	if rl == nil {
		return false
	}
	return rl.IsRateLimited(operation)
}

// ParseUpstreams parses a comma-separated list of API URLs.
func ParseUpstreams(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}
