package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "mytv/1.0"
)

// Transport performs a GET and returns the decoded body
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// TransportError reports a failed request or a non-2xx response
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPTransport is a Transport over net/http with brotli and gzip
// content-encoding and an optional per-host rate limit
type HTTPTransport struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
	rps       float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// TransportOption configures an HTTPTransport
type TransportOption func(*HTTPTransport)

// WithClient replaces the default http.Client
func WithClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the per-request timeout. A client given through
// WithClient is copied, never modified.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) TransportOption {
	return func(t *HTTPTransport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) TransportOption {
	return func(t *HTTPTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRateLimit caps requests per second per host; 0 disables the limit
func WithRateLimit(rps float64) TransportOption {
	return func(t *HTTPTransport) {
		t.rps = rps
	}
}

// NewHTTPTransport creates an HTTPTransport
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(t)
	}

	switch {
	case t.client == nil:
		timeout := DefaultTimeout
		if t.timeout > 0 {
			timeout = t.timeout
		}
		t.client = &http.Client{Timeout: timeout}
	case t.timeout > 0:
		client := *t.client
		client.Timeout = t.timeout
		t.client = &client
	}
	return t
}

// Get implements Transport.Get
func (t *HTTPTransport) Get(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := t.wait(ctx, rawURL); err != nil {
		return 0, nil, &TransportError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept-Encoding", "br, gzip")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("request failed", zap.String("url", rawURL), zap.Error(err))
		return 0, nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	t.logger.Debug("request done",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.String("content_encoding", resp.Header.Get("Content-Encoding")),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp.StatusCode, body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *HTTPTransport) wait(ctx context.Context, rawURL string) error {
	if t.rps <= 0 {
		return nil
	}
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	t.mu.Lock()
	l, ok := t.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(t.rps), 1)
		t.limiters[host] = l
	}
	t.mu.Unlock()

	return l.Wait(ctx)
}
