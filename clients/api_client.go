package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/common/logger"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
)

// DefaultTimeout applies when the client is built with a zero timeout.
const DefaultTimeout = 10 * time.Second

// Response is the normalized result of any HTTP call, whatever its status.
type Response struct {
	Status int
	// Data is the decoded JSON body, the raw body as a string when it is not
	// JSON, or nil when the body is empty.
	Data any
	// Headers uses lower-cased names; repeated headers are joined with ", ".
	Headers map[string]string
	Body    []byte
}

// Header returns a response header by case-insensitive name.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body (status %d)", r.Status)
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response body (status %d): %w", r.Status, err)
	}
	return nil
}

// Object returns Data as a JSON object, or nil when it is not one.
func (r *Response) Object() map[string]any {
	m, _ := r.Data.(map[string]any)
	return m
}

// Decode unmarshals the response body into a new T.
func Decode[T any](r *Response) (T, error) {
	var out T
	err := r.Decode(&out)
	return out, err
}

// TransportError means the call could not complete: no response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline or network timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// MetricsRecorder is implemented by *aws_pkg.MetricsClient.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

// APIClient issues requests against the orders service. Non-2xx statuses are
// returned as responses; only transport failures are errors.
type APIClient struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     MetricsRecorder
	bearerToken string
}

// ClientOption configures an APIClient.
type ClientOption func(*APIClient)

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *APIClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request latency and status classes.
func WithMetrics(m MetricsRecorder) ClientOption {
	return func(c *APIClient) { c.metrics = m }
}

// WithBearerToken sends Authorization: Bearer <token> on every request.
func WithBearerToken(token string) ClientOption {
	return func(c *APIClient) { c.bearerToken = token }
}

// WithHTTPClient replaces the underlying client. Its Timeout should be zero;
// deadlines are applied per request.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *APIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewAPIClient creates a client for baseURL with a default per-request timeout.
func NewAPIClient(baseURL string, timeout time.Duration, opts ...ClientOption) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *APIClient) BaseURL() string { return c.baseURL }

type requestOptions struct {
	timeout time.Duration
	headers http.Header
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

// WithHeader sets a request header, replacing defaults such as Content-Type.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.headers.Set(key, value) }
}

// WithHeaders sets several request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			o.headers.Set(k, v)
		}
	}
}

// WithTimeout overrides the client timeout for one call.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func (c *APIClient) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *APIClient) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *APIClient) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *APIClient) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *APIClient) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends method to path. path is either absolute or relative to the base URL.
// A nil body sends nothing; strings and byte slices are sent verbatim; other
// values are JSON-encoded.
func (c *APIClient) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	ro := requestOptions{timeout: c.timeout, headers: http.Header{}}
	for _, opt := range opts {
		opt(&ro)
	}

	u := c.resolve(path)
	payload, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}

	rid := logger.RequestID(ctx)
	ctx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	if rid != "" {
		req.Header.Set(logger.RequestIDHeader, rid)
	}
	for k, v := range ro.headers {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportFailure(ctx, method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportFailure(ctx, method, u, fmt.Errorf("reading body: %w", err))
	}
	latency := time.Since(start)

	out := &Response{
		Status:  resp.StatusCode,
		Data:    decodeData(raw),
		Headers: flattenHeaders(resp.Header),
		Body:    raw,
	}

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	)
	c.record(ctx, method, resp.StatusCode, latency)
	return out, nil
}

func (c *APIClient) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *APIClient) transportFailure(ctx context.Context, method, u string, err error) error {
	c.logger.Warn("api call failed", zap.String("method", method), zap.String("url", u), zap.Error(err))
	if c.metrics != nil {
		_ = c.metrics.RecordCount(context.WithoutCancel(ctx), aws_pkg.MetricTransportErrors, map[string]string{"Method": method})
	}
	return &TransportError{Method: method, URL: u, Err: err}
}

func (c *APIClient) record(ctx context.Context, method string, status int, latency time.Duration) {
	if c.metrics == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	dims := map[string]string{"Method": method, "Status": strconv.Itoa(status)}
	_ = c.metrics.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dims)
	_ = c.metrics.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, latency, map[string]string{"Method": method})
	switch {
	case status >= 500:
		_ = c.metrics.RecordCount(ctx, aws_pkg.MetricHTTP5xx, dims)
	case status >= 400:
		_ = c.metrics.RecordCount(ctx, aws_pkg.MetricHTTP4xx, dims)
	}
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return b, nil
}

func decodeData(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}
