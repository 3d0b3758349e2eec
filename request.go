package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const maxRetries = 3

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// doQuery executes a GraphQL operation with upstream rotation, session refresh,
// and backoff between attempts. It returns the raw response body on success.
func (c *Client) doQuery(ctx context.Context, op Operation, variables map[string]any) ([]byte, error) {
	payload, err := json.Marshal(graphQLRequest{
		OperationName: op.Name,
		Query:         op.Query,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", op.Name, err)
	}

	var lastErr error
	refreshed := false
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := c.cfg.Backoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		up, upErr := c.pool.Next(func(u *Upstream) bool {
			return u.AllowRequest(op.Name)
		})
		if upErr != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("%w for %s: %w", ErrNoUpstream, op.Name, lastErr)
			}
			return nil, fmt.Errorf("%w for %s: %v", ErrNoUpstream, op.Name, upErr)
		}

		access, _ := c.tokens()
		body, respHdrs, status, err := c.transport.DoWithHeaderOrder(
			"POST", up.URL, apiHeaders(access, c.cfg.UserAgent), bytes.NewReader(payload), lensHeaderOrder)
		if err != nil {
			c.recordAPICall(op.Name, false, false)
			c.recordUpstreamFailure(up)
			lastErr = err
			continue
		}

		switch {
		case status == 429:
			c.recordAPICall(op.Name, false, true)
			up.MarkRateLimited(op.Name, parseRateLimitReset(respHdrs["x-ratelimit-reset"]))
			lastErr = fmt.Errorf("%s: 429 rate limited", op.Name)
			continue

		case status == 401:
			c.recordAPICall(op.Name, false, false)
			if c.tryRefresh(ctx, op, &refreshed) {
				continue
			}
			return nil, fmt.Errorf("%s HTTP 401: %s", op.Name, truncateBytes(body, 200))

		case status >= 500:
			c.recordAPICall(op.Name, false, false)
			slog.Warn("lens upstream 5xx", slog.String("upstream", up.URL), slog.String("operation", op.Name), slog.Int("status", status))
			c.recordUpstreamFailure(up)
			lastErr = fmt.Errorf("%s HTTP %d: %s", op.Name, status, truncateBytes(body, 200))
			continue

		case status != 200 && status != 400:
			c.recordAPICall(op.Name, false, false)
			return nil, fmt.Errorf("%s HTTP %d: %s", op.Name, status, truncateBytes(body, 200))
		}

		// GraphQL servers answer 200 or 400 with an "errors" array.
		errClass, msg := classifyError(body)
		switch errClass {
		case errNone:
			if status == 400 {
				c.recordAPICall(op.Name, false, false)
				return nil, fmt.Errorf("%w: %s HTTP 400: %s", ErrBadRequest, op.Name, truncateBytes(body, 200))
			}
			c.recordAPICall(op.Name, true, false)
			up.RecordSuccess()
			return body, nil

		case errUnauthenticated:
			c.recordAPICall(op.Name, false, false)
			if c.tryRefresh(ctx, op, &refreshed) {
				continue
			}
			return nil, fmt.Errorf("%s: unauthenticated: %s", op.Name, msg)

		case errBadInput:
			c.recordAPICall(op.Name, false, false)
			return nil, fmt.Errorf("%w: %s: %s", ErrBadRequest, op.Name, msg)

		case errRateLimited:
			c.recordAPICall(op.Name, false, true)
			up.MarkRateLimited(op.Name, parseRateLimitReset(respHdrs["x-ratelimit-reset"]))
			lastErr = fmt.Errorf("%s: rate limited: %s", op.Name, msg)
			continue

		case errInternal:
			if hasResponseData(body) {
				c.recordAPICall(op.Name, true, false)
				up.RecordSuccess()
				slog.Debug("internal error with usable data, treating as success", slog.String("operation", op.Name))
				return body, nil
			}
			c.recordAPICall(op.Name, false, false)
			slog.Warn("lens internal error, retrying", slog.String("upstream", up.URL), slog.String("operation", op.Name))
			c.recordUpstreamFailure(up)
			lastErr = fmt.Errorf("%s: internal error: %s", op.Name, msg)
			continue

		default: // errForbidden
			c.recordAPICall(op.Name, false, false)
			return nil, fmt.Errorf("%s: forbidden: %s", op.Name, msg)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s failed after %d attempts: %w", op.Name, maxRetries, lastErr)
	}
	return nil, fmt.Errorf("%s failed after %d attempts", op.Name, maxRetries)
}

// tryRefresh refreshes the session once per query, joining any refresh
// already in flight. It reports whether the caller should retry.
func (c *Client) tryRefresh(ctx context.Context, op Operation, refreshed *bool) bool {
	if *refreshed || op.Name == "Refresh" {
		return false
	}
	if _, refresh := c.tokens(); refresh == "" {
		return false
	}
	*refreshed = true
	slog.Warn("access token rejected, refreshing session", slog.String("operation", op.Name))
	// Queries rejected together share one refresh mutation.
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.RefreshSession(ctx)
	})
	if err != nil {
		slog.Warn("session refresh failed", slog.Any("error", err))
		return false
	}
	return true
}

// recordUpstreamFailure soft-deactivates an upstream once its health tracker
// reports it unhealthy.
func (c *Client) recordUpstreamFailure(up *Upstream) {
	if shouldDeactivate := up.RecordFailure(); shouldDeactivate {
		total, failed, consec := up.Stats()
		slog.Warn("upstream unhealthy, cooling down",
			slog.String("upstream", up.URL),
			slog.Int("total", total),
			slog.Int("failed", failed),
			slog.Int("consec", consec),
			slog.Duration("cooldown", c.cfg.UpstreamCooldown))
		c.pool.SoftDeactivate(up, c.cfg.UpstreamCooldown)
	}
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData returns true if the JSON body contains a non-null "data" field.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}

// IsNotFound reports whether err means the requested profile does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}
