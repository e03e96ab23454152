// Package upstream implements the ScriptBlox and Rscripts REST clients.
//
// Both clients share one rate-limited HTTP client. Responses are decoded
// tolerantly: display fields are optional and missing envelope keys surface
// as *SchemaError naming the key.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 8 << 20

// Doer is the subset of *http.Client used by the API clients.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient issues rate-limited GET requests and decodes JSON bodies.
type HTTPClient struct {
	doer      Doer
	limiter   *rate.Limiter
	userAgent string
}

// HTTPOptions configures NewHTTPClient.
type HTTPOptions struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	UserAgent string
	Doer      Doer // overrides the default *http.Client, mainly for tests
}

// NewHTTPClient creates a rate-limited JSON client.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultUpstreamTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = constants.DefaultRateLimit
	}
	if opts.UserAgent == "" {
		opts.UserAgent = constants.DefaultUserAgent
	}
	doer := opts.Doer
	if doer == nil {
		doer = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPClient{
		doer:      doer,
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		userAgent: opts.UserAgent,
	}
}

// GetJSON fetches endpoint with query and decodes the body into out.
func (c *HTTPClient) GetJSON(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"op":          op,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("upstream-request-completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &TransportError{Op: op, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, URL: target, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &SchemaError{Op: op, Key: typeErr.Field, Err: err}
		}
		if errors.As(err, &syntaxErr) {
			return &SchemaError{Op: op, Key: "body", Err: err}
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
