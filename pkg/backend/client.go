package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/metrics"
)

const (
	defaultTimeout          = 10 * time.Second
	apiPrefix               = "/api"
	errorBodyReadLimit      = 4 << 10
	responseBodyReadLimit   = 8 << 20
	breakerName             = "storefront-backend"
	defaultBreakerFailures  = 5
	defaultBreakerOpenDelay = 30 * time.Second
)

// Client talks to the storefront REST backend. Every call takes the caller's credential explicitly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	metrics    *metrics.UpstreamMetrics
	logg       *logger.Logger
}

// BreakerSettings tunes the optional circuit breaker. Only transport failures count toward tripping it.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
	Interval    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTransport swaps the round tripper while keeping the configured timeout.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient.Transport = rt
		}
	}
}

// WithBaseURL overrides the configured backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBreaker enables the circuit breaker.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(settings, c)
	}
}

// WithMetrics records per-endpoint duration and outcome.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger attaches the logger used for upstream failures.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds the backend client from config.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.baseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	if client.breaker == nil && cfg.BreakerEnabled {
		client.breaker = newBreaker(BreakerSettings{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
			Interval:    cfg.BreakerInterval,
		}, client)
	}

	return client, nil
}

func newBreaker(settings BreakerSettings, c *Client) *gobreaker.CircuitBreaker[*http.Response] {
	maxFailures := settings.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerFailures
	}
	openTimeout := settings.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultBreakerOpenDelay
	}
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a caller giving up is not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
			if c.logg != nil {
				ctx := c.logg.WithFields(context.Background(), map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
				c.logg.Warn(ctx, "upstream.breaker.state_changed")
			}
		},
	})
}

// request describes one backend call. Out may be nil, a *string for plain-text bodies, or any JSON target.
type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	out      any
}

func (c *Client) do(ctx context.Context, cred auth.Credential, req request) error {
	if c == nil || c.httpClient == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	httpReq.Header.Set("Accept", "application/json, text/plain")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if cred.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Request-Id", id)
	}

	started := time.Now()
	resp, err := c.send(httpReq)
	if err != nil {
		outcome := metrics.OutcomeUnreachable
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = metrics.OutcomeBreakerOpen
		}
		c.metrics.Observe(req.endpoint, outcome, 0, time.Since(started))
		c.logFailure(ctx, req, 0, err)
		return unavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.Observe(req.endpoint, metrics.OutcomeHTTPError, resp.StatusCode, time.Since(started))
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		mapped := statusError(resp.StatusCode, data)
		c.logFailure(ctx, req, resp.StatusCode, mapped)
		return mapped
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	c.metrics.Observe(req.endpoint, metrics.OutcomeSuccess, resp.StatusCode, time.Since(started))
	if err != nil {
		return unavailable(err)
	}
	return decodeInto(req.out, data)
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
}

func decodeInto(out any, data []byte) error {
	switch target := out.(type) {
	case nil:
		return nil
	case *string:
		*target = strings.TrimSpace(string(data))
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "the storefront service returned an unreadable response")
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, req request, status int, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"endpoint":        req.endpoint,
		"method":          req.method,
		"path":            req.path,
		"upstream_status": status,
		"error":           err.Error(),
	})
	c.logg.Warn(ctx, "upstream.request.failed")
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + apiPrefix + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func escape(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}

func pathf(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, segment := range segments {
		args[i] = escape(segment)
	}
	return fmt.Sprintf(format, args...)
}
