// Package tomtom calls the TomTom Routing API calculateRoute endpoint.
package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/routerelay/internal/domain/route"
	"github.com/okian/routerelay/pkg/logger"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultUserAgent        = "routerelay/1.0"
	defaultMaxResponseBytes = 16 << 20
	statusBodyPreview       = 512
)

// Client issues one GET per route query. Safe for concurrent use.
type Client struct {
	http             *http.Client
	timeout          time.Duration
	userAgent        string
	maxResponseBytes int64
	logger           logger.Logger
}

// New constructs a Client with defaults overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{
		http:             &http.Client{},
		timeout:          defaultTimeout,
		userAgent:        defaultUserAgent,
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	return c
}

// Response is a successful upstream reply.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// CalculateRoute performs the upstream call for q. On 200 it returns the body
// unmodified once it is confirmed to be JSON. Any other outcome is an error
// of one of this package's kinds; a *StatusError for non-200 replies.
func (c *Client) CalculateRoute(ctx context.Context, q route.Query) (Response, error) {
	const op = "tomtom.calculate_route"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.URL(), http.NoBody)
	if err != nil {
		// Only reachable with a broken endpoint; report without the key.
		return Response{}, fmt.Errorf("%s: %w: build request for %s", op, ErrUnavailable, q.Redacted())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = q.Redacted()
		}
		return Response{}, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, statusBodyPreview))
		c.logger.Debug(ctx, "upstream non-success",
			logger.Int("status", resp.StatusCode),
			logger.String("body", string(preview)))
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%s: %w", op, &StatusError{Code: resp.StatusCode, Body: string(preview)})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%s: read body: %w", op, classify(ctx, err))
	}
	if int64(len(body)) > c.maxResponseBytes {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%s: %w: body exceeds %d bytes", op, ErrInvalidPayload, c.maxResponseBytes)
	}
	if !json.Valid(body) {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%s: %w: body is not JSON", op, ErrInvalidPayload)
	}

	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// classify maps a transport error onto ErrTimeout or ErrUnavailable.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
