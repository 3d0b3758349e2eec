package lens

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrProfileNotFound is returned when the API answers with a null profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrBadRequest is returned for GraphQL input validation errors. Not retried.
	ErrBadRequest = errors.New("bad request")
	// ErrNoUpstream is returned when every upstream is inactive or rate-limited.
	ErrNoUpstream = errors.New("no upstream available")
)

// errorClass categorizes Lens API error responses for targeted handling.
type errorClass int

const (
	errNone            errorClass = iota
	errUnauthenticated            // UNAUTHENTICATED: access token missing or expired
	errForbidden                  // FORBIDDEN
	errBadInput                   // BAD_USER_INPUT, GRAPHQL_VALIDATION_FAILED
	errRateLimited                // TOO_MANY_REQUESTS
	errInternal                   // INTERNAL_SERVER_ERROR
)

// graphQLError is one entry of a GraphQL "errors" array.
type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// classifyError inspects a response body for known GraphQL error codes.
func classifyError(body []byte) (errorClass, string) {
	var errResp struct {
		Errors []graphQLError `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone, ""
	}

	for _, e := range errResp.Errors {
		switch e.Extensions.Code {
		case "UNAUTHENTICATED":
			return errUnauthenticated, e.Message
		case "FORBIDDEN":
			return errForbidden, e.Message
		case "BAD_USER_INPUT", "GRAPHQL_VALIDATION_FAILED", "GRAPHQL_PARSE_FAILED":
			return errBadInput, e.Message
		case "TOO_MANY_REQUESTS":
			return errRateLimited, e.Message
		case "INTERNAL_SERVER_ERROR":
			return errInternal, e.Message
		}
	}
	return errNone, errResp.Errors[0].Message
}

// parseRateLimitReset parses the x-ratelimit-reset header.
// Small values are seconds from now, large values a unix timestamp.
// Falls back to one minute from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
		if n > 1_000_000_000 {
			return time.Unix(n, 0)
		}
		return time.Now().Add(time.Duration(n) * time.Second)
	}
	return time.Now().Add(time.Minute)
}
