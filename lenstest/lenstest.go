// Package lenstest provides an in-memory Lens API transport for tests.
package lenstest

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Request is one recorded exchange.
type Request struct {
	Method        string
	URL           string
	Headers       map[string]string
	OperationName string
	Variables     map[string]any
}

// Handler answers a GraphQL request with a status code and a JSON body.
type Handler func(req Request) (status int, body string)

// Transport implements lens.Doer. GraphQL POSTs are routed by operationName,
// GETs are served from Media.
type Transport struct {
	mu       sync.Mutex
	handlers map[string]Handler
	media    map[string][]byte
	requests []Request

	// Err, when set, is returned for every request.
	Err error
}

// New returns an empty transport.
func New() *Transport {
	return &Transport{
		handlers: make(map[string]Handler),
		media:    make(map[string][]byte),
	}
}

// Handle registers the handler for a GraphQL operation.
func (t *Transport) Handle(operation string, h Handler) {
	t.mu.Lock()
	t.handlers[operation] = h
	t.mu.Unlock()
}

// ServeMedia registers raw bytes returned for GET url.
func (t *Transport) ServeMedia(url string, data []byte) {
	t.mu.Lock()
	t.media[url] = data
	t.mu.Unlock()
}

// Requests returns a copy of the recorded exchanges.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.requests...)
}

// Calls counts recorded requests for one operation.
func (t *Transport) Calls(operation string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, r := range t.requests {
		if r.OperationName == operation {
			n++
		}
	}
	return n
}

// DoWithHeaderOrder implements lens.Doer.
func (t *Transport) DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	req := Request{Method: method, URL: url, Headers: headers}
	if body != nil {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, nil, 0, err
		}
		var gql struct {
			OperationName string         `json:"operationName"`
			Variables     map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(raw, &gql); err != nil {
			return nil, nil, 0, fmt.Errorf("lenstest: bad graphql body: %w", err)
		}
		req.OperationName = gql.OperationName
		req.Variables = gql.Variables
	}

	t.mu.Lock()
	t.requests = append(t.requests, req)
	tErr := t.Err
	h := t.handlers[req.OperationName]
	data, hasMedia := t.media[url]
	t.mu.Unlock()

	if tErr != nil {
		return nil, nil, 0, tErr
	}
	if method == "GET" {
		if !hasMedia {
			return []byte("not found"), map[string]string{}, 404, nil
		}
		return data, map[string]string{}, 200, nil
	}
	if h == nil {
		return []byte(`{"errors":[{"message":"unknown operation"}]}`), map[string]string{}, 400, nil
	}
	status, respBody := h(req)
	return []byte(respBody), map[string]string{"content-type": "application/json"}, status, nil
}

// JSON returns a handler that always answers with status and body.
func JSON(status int, body string) Handler {
	return func(Request) (int, string) { return status, body }
}

// Sequence answers successive calls with successive handlers and repeats the
// last one once exhausted.
func Sequence(hs ...Handler) Handler {
	var mu sync.Mutex
	i := 0
	return func(req Request) (int, string) {
		mu.Lock()
		h := hs[min(i, len(hs)-1)]
		i++
		mu.Unlock()
		return h(req)
	}
}

// ProfileBody builds a Profile response for a handle.
func ProfileBody(handle, name, bio string, followers, following int, pictureURL string) string {
	profile := map[string]any{
		"id":        "0x01",
		"handle":    handle,
		"name":      name,
		"bio":       bio,
		"isDefault": true,
		"stats": map[string]any{
			"totalFollowers": followers,
			"totalFollowing": following,
			"totalPosts":     0,
		},
	}
	if pictureURL != "" {
		profile["picture"] = map[string]any{
			"__typename": "MediaSet",
			"original":   map[string]any{"url": pictureURL},
		}
	}
	b, _ := json.Marshal(map[string]any{"data": map[string]any{"profile": profile}})
	return string(b)
}

// NotFoundBody is a Profile response with a null profile.
const NotFoundBody = `{"data":{"profile":null}}`
