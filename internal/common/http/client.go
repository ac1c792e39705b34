// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin net/http wrapper that backs off on 429 responses,
// doubling the delay between attempts.
type Client struct {
	httpClient   *http.Client
	initialDelay time.Duration
	maxDelay     time.Duration
	maxAttempts  int
}

type Option func(*Client)

func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.initialDelay = initial
		c.maxDelay = max
	}
}

// WithMaxAttempts bounds the number of sends, including the first one.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
		maxAttempts:  4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithRetry sends a request built from method, url and body, retrying on
// 429 until maxAttempts or ctx expires. The caller closes the response body.
func (c *Client) DoWithRetry(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	delay := c.initialDelay

	for attempt := 1; ; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("rate limited after %d attempts", attempt)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < c.maxDelay {
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}
	}
}
