package lens

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// FetchMedia downloads a picture through the client transport and returns the
// bytes along with the sniffed MIME type. Bodies over MaxMediaBytes are
// discarded with an error once downloaded.
func (c *Client) FetchMedia(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("fetch media: empty url")
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	body, _, status, err := c.transport.DoWithHeaderOrder("GET", url, mediaHeaders(c.cfg.UserAgent), nil, lensHeaderOrder)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media %s: %w", url, err)
	}
	if status != 200 {
		return nil, "", fmt.Errorf("fetch media %s: HTTP %d", url, status)
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("fetch media %s: empty body", url)
	}
	if len(body) > c.cfg.MaxMediaBytes {
		return nil, "", fmt.Errorf("fetch media %s: %d bytes exceeds limit %d", url, len(body), c.cfg.MaxMediaBytes)
	}
	return body, mimetype.Detect(body).String(), nil
}
