package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore reads bucket objects from an HTTP endpoint (bucket base URL + path)
// and signed URLs with a separate unauthenticated client.
type HTTPStore struct {
	bucket *resty.Client
	signed *resty.Client
}

// NewHTTPStore creates a store for the bucket rooted at baseURL. token, when
// set, is sent as a bearer token on bucket reads only; signed URLs carry their
// own authorization.
func NewHTTPStore(baseURL, token string, timeout time.Duration) *HTTPStore {
	bucket := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if token != "" {
		bucket.SetAuthToken(token)
	}
	return &HTTPStore{bucket: bucket, signed: NewURLClient(timeout)}
}

// NewURLClient returns the client used for signed URL downloads.
func NewURLClient(timeout time.Duration) *resty.Client {
	return resty.New().SetTimeout(timeout)
}

// FetchBytes implements Fetcher.
func (s *HTTPStore) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("empty object path")
	}
	resp, err := s.bucket.R().
		SetContext(ctx).
		Get("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("object request %s: %w", path, err)
	}
	return checkResponse(path, resp)
}

// FetchURL implements Fetcher.
func (s *HTTPStore) FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	return fetchURL(ctx, s.signed, rawURL)
}

func fetchURL(ctx context.Context, c *resty.Client, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty url")
	}
	resp, err := c.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		// url.Error repeats the full URL, signature included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("request %s: %w", redactQuery(rawURL), err)
	}
	return checkResponse(redactQuery(rawURL), resp)
}

func checkResponse(name string, resp *resty.Response) ([]byte, error) {
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("Failed to fetch %s: %s (Status: %d)", name, http.StatusText(resp.StatusCode()), resp.StatusCode())
	}
	return resp.Body(), nil
}

// redactQuery drops the query string so signatures never end up in messages.
func redactQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
