package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adminpanel/internal/metrics"
	"adminpanel/internal/session"
	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	UseMockData bool
	// RequestsPerSecond throttles network calls; zero disables throttling.
	RequestsPerSecond int
}

// Client is the single point of outbound traffic to the admin API. Every call
// resolves to a normalized v1.Response or fails with an *APIError.
type Client struct {
	baseURL    string
	basePath   string
	timeout    time.Duration
	httpClient *http.Client
	session    *session.Session
	observer   metrics.ClientObserver
	limiter    *rate.Limiter
	mock       *MockShim
	onExpired  func()
	now        func() time.Time

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithObserver(o metrics.ClientObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithSessionExpired registers the callback run after a failed refresh has
// cleared the session (the redirect-to-login of a browser front end).
func WithSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

func WithRateLimit(rps int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(cfg Config, sess *session.Session, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = constraints.DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constraints.DefaultTimeout
	}

	var basePath string
	if u, err := url.Parse(base); err == nil {
		basePath = u.Path
	}

	c := &Client{
		baseURL:    base,
		basePath:   basePath,
		timeout:    timeout,
		httpClient: &http.Client{},
		session:    sess,
		observer:   metrics.Nop(),
		now:        time.Now,
	}
	if cfg.RequestsPerSecond > 0 {
		WithRateLimit(cfg.RequestsPerSecond)(c)
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.UseMockData {
		c.mock = NewMockShim(basePath, c.now)
	}
	return c
}

func (c *Client) Session() *session.Session {
	return c.session
}

// MockEnabled reports whether the mock response shim is active.
func (c *Client) MockEnabled() bool {
	return c.mock != nil
}

type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
	// Timeout overrides the client default for this call.
	Timeout time.Duration
}

// CallOption tweaks a single verb call.
type CallOption func(*RequestOptions)

func Timeout(d time.Duration) CallOption {
	return func(o *RequestOptions) { o.Timeout = d }
}

func Header(key, value string) CallOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// call is a fully encoded request that can be replayed after a refresh.
type call struct {
	method      string
	endpoint    string
	headers     map[string]string
	body        []byte
	contentType string
	timeout     time.Duration
	// bearer is the access token the last attempt carried.
	bearer string
}

// Request issues endpoint (relative to the base URL) and normalizes the reply.
// ctx cancels the wait for a response; it does not stop the backend.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*v1.Response[json.RawMessage], error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	if c.mock != nil {
		if body, ok := c.mock.Match(opts.Method, endpoint); ok {
			c.observer.RecordMockHit(metricLabel(endpoint))
			logger.Debug("mock response served", zap.String("endpoint", endpoint))
			return c.normalize(http.StatusOK, body)
		}
	}

	cl := &call{
		method:   opts.Method,
		endpoint: endpoint,
		headers:  opts.Headers,
		timeout:  opts.Timeout,
	}
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, c.wrap(constraints.UnknownError, "Failed to encode request body", 0, err)
		}
		cl.body = b
		cl.contentType = "application/json"
	}
	return c.execute(ctx, cl)
}

func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	return c.Request(ctx, endpoint, buildOptions(http.MethodGet, nil, opts))
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	return c.Request(ctx, endpoint, buildOptions(http.MethodPost, body, opts))
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	return c.Request(ctx, endpoint, buildOptions(http.MethodPut, body, opts))
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	return c.Request(ctx, endpoint, buildOptions(http.MethodPatch, body, opts))
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	return c.Request(ctx, endpoint, buildOptions(http.MethodDelete, nil, opts))
}

func buildOptions(method string, body any, opts []CallOption) RequestOptions {
	o := RequestOptions{Method: method, Body: body}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type File struct {
	Field   string
	Name    string
	Content []byte
}

// Form is a multipart upload payload.
type Form struct {
	Fields map[string]string
	Files  []File
}

// Upload always POSTs multipart/form-data. The mock shim never applies.
func (c *Client) Upload(ctx context.Context, endpoint string, form Form, opts ...CallOption) (*v1.Response[json.RawMessage], error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range form.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, c.wrap(constraints.UnknownError, "Failed to encode upload", 0, err)
		}
	}
	for _, f := range form.Files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, c.wrap(constraints.UnknownError, "Failed to encode upload", 0, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, c.wrap(constraints.UnknownError, "Failed to encode upload", 0, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, c.wrap(constraints.UnknownError, "Failed to encode upload", 0, err)
	}

	o := buildOptions(http.MethodPost, nil, opts)
	return c.execute(ctx, &call{
		method:      http.MethodPost,
		endpoint:    endpoint,
		headers:     o.Headers,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		timeout:     o.Timeout,
	})
}

// Decode converts the raw data of a normalized response into T. It is meant
// to wrap a verb call directly: Decode[v1.Admin](c.Get(ctx, path)).
func Decode[T any](res *v1.Response[json.RawMessage], err error) (*v1.Response[T], error) {
	if err != nil {
		return nil, err
	}
	out := &v1.Response[T]{Success: res.Success, Message: res.Message}
	data := bytes.TrimSpace(res.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out.Data); err != nil {
		return nil, &APIError{
			Type:      constraints.UnknownError,
			Message:   "Failed to parse response",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			cause:     err,
		}
	}
	return out, nil
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// send performs one network round trip with the bearer currently stored.
// status is zero when no response was received.
func (c *Client) send(ctx context.Context, cl *call) (status int, body []byte, err error) {
	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, c.classifyTransport(ctx, err, false)
		}
	}

	var reader io.Reader
	if cl.body != nil {
		reader = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.url(cl.endpoint), reader)
	if err != nil {
		return 0, nil, c.wrap(constraints.UnknownError, "Failed to build request", 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	cl.bearer = c.session.AccessToken(ctx)
	if cl.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+cl.bearer)
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.classifyTransport(ctx, err, false)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, c.classifyTransport(ctx, err, true)
	}
	return resp.StatusCode, body, nil
}

// attempt sends cl once and turns the reply into a normalized response.
func (c *Client) attempt(ctx context.Context, cl *call) (*v1.Response[json.RawMessage], int, error) {
	status, body, err := c.send(ctx, cl)
	if err != nil {
		return nil, status, err
	}
	if status < 200 || status >= 300 {
		return nil, status, c.classifyStatus(status, body)
	}
	resp, err := c.normalize(status, body)
	return resp, status, err
}

func (c *Client) execute(ctx context.Context, cl *call) (*v1.Response[json.RawMessage], error) {
	start := time.Now()
	resp, status, err := c.attempt(ctx, cl)

	if err != nil && status == http.StatusUnauthorized && c.shouldRefresh(ctx, cl.endpoint) {
		switch {
		case c.session.AccessToken(ctx) != cl.bearer:
			// Refreshed by another caller since this attempt was sent.
			logger.Debug("access token replaced, replaying", zap.String("endpoint", cl.endpoint))
			resp, _, err = c.attempt(ctx, cl)
		case c.RefreshToken(ctx):
			logger.Info("access token rejected, refreshed", zap.String("endpoint", cl.endpoint))
			resp, _, err = c.attempt(ctx, cl)
		default:
			c.expire(ctx)
		}
	}

	outcome := "ok"
	if err != nil {
		outcome = string(TypeOf(err))
		logger.Debug("api request failed",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.Error(err))
	}
	c.observer.ObserveRequest(cl.method, metricLabel(cl.endpoint), outcome, time.Since(start).Seconds())
	return resp, err
}

// metricLabel keeps label cardinality bounded by dropping ids and queries.
func metricLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.SplitN(strings.TrimPrefix(endpoint, "/"), "/", 2)
	return "/" + parts[0]
}
