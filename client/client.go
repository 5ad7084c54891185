package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/grove/api"
	"pkt.systems/pslog"
)

// Default client tuning values. All of them can be overridden per client
// via options.
const (
	// DefaultHTTPTimeout bounds individual JSON requests (allocation,
	// challenges, status). Multipart uploads are not subject to it.
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultPropagationTimeout bounds WaitForPropagation end to end.
	DefaultPropagationTimeout = 60 * time.Second
	// DefaultPollInterval is the pause between propagation status polls.
	DefaultPollInterval = 500 * time.Millisecond
)

// Client talks to a grove storage backend over HTTP. It is safe for
// concurrent use; independent operations share nothing but the HTTP
// transport and the one-time streaming-capability probe.
type Client struct {
	baseURL            string
	gatewayBase        string
	chainID            int64
	httpClient         *http.Client
	httpTimeout        time.Duration
	propagationTimeout time.Duration
	pollInterval       time.Duration
	logger             pslog.Base
	probe              *streamProbe
	forceBuffered      bool
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient supplies a custom HTTP client/transport stack. Use this
// for custom TLS roots, proxies, or tracing round-trippers.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.httpClient = cli
		}
	}
}

// WithLogger supplies a logger for client diagnostics.
// Passing nil falls back to pslog.NoopLogger().
func WithLogger(logger pslog.Base) Option {
	return func(c *Client) {
		if logger == nil {
			c.logger = pslog.NoopLogger()
			return
		}
		c.logger = logger
	}
}

// WithHTTPTimeout overrides the per-request timeout applied to JSON
// boundary calls. It does not bound multipart upload bodies.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpTimeout = d
		}
	}
}

// WithPropagationTimeout overrides the total time WaitForPropagation is
// allowed to spend before reporting a timeout.
func WithPropagationTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.propagationTimeout = d
		}
	}
}

// WithPollInterval overrides the pause between propagation status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithChainID overrides the environment's default chain identifier used
// when resolving ACL policies.
func WithChainID(chainID int64) Option {
	return func(c *Client) {
		if chainID > 0 {
			c.chainID = chainID
		}
	}
}

// WithGatewayBase overrides the base URL used to derive gateway URLs.
// The default is the backend base URL.
func WithGatewayBase(base string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
		if trimmed != "" {
			c.gatewayBase = trimmed
		}
	}
}

// WithBufferedMultipart skips the streaming-capability probe and always
// uses the buffered multipart encoding.
func WithBufferedMultipart() Option {
	return func(c *Client) {
		c.forceBuffered = true
	}
}

// New creates a client for the given environment.
// Example:
//
//	cli, err := client.New(client.Production())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := cli.UploadFile(ctx, client.FileFromBytes("hello.txt", "text/plain", data), client.UploadOptions{})
func New(env Environment, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(env.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("grove: environment base URL required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("grove: invalid base URL %q: %w", env.BaseURL, err)
	}
	c := &Client{
		baseURL:            base,
		gatewayBase:        base,
		chainID:            env.ChainID,
		httpClient:         http.DefaultClient,
		httpTimeout:        DefaultHTTPTimeout,
		propagationTimeout: DefaultPropagationTimeout,
		pollInterval:       DefaultPollInterval,
		logger:             pslog.NoopLogger(),
		probe:              processProbe,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChainID returns the default chain identifier applied when ACL policies
// omit one.
func (c *Client) ChainID() int64 {
	return c.chainID
}

// APIError describes a non-success response from the backend.
type APIError struct {
	// Status is the HTTP status code returned by the backend.
	Status int
	// Response is the decoded backend error envelope, when available.
	Response api.ErrorResponse
	// Body contains the raw response body bytes for diagnostics.
	Body []byte
}

func (e *APIError) Error() string {
	if e.Response.Message != "" {
		return fmt.Sprintf("grove: backend error: %s", e.Response.Message)
	}
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		return fmt.Sprintf("grove: backend error (status %d): %s", e.Status, body)
	}
	return fmt.Sprintf("grove: backend status %d", e.Status)
}

func (c *Client) decodeError(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var envelope api.ErrorResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &envelope); err != nil {
			// Keep the body for diagnostics; the envelope stays empty.
			return &APIError{Status: resp.StatusCode, Body: data}
		}
	}
	return &APIError{Status: resp.StatusCode, Response: envelope, Body: data}
}

func (c *Client) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.httpTimeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, c.httpTimeout)
}

// endpoint joins path segments onto the backend base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// postJSON issues a JSON POST and decodes the response into out when out
// is non-nil. A nil payload sends an empty body.
func (c *Client) postJSON(ctx context.Context, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return err
		}
		body = buf
	}
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyCorrelationHeader(ctx, req)
	return c.execute(ctx, req, path, out)
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.endpoint(path, nil), nil)
	if err != nil {
		return err
	}
	c.applyCorrelationHeader(ctx, req)
	return c.execute(ctx, req, path, out)
}

func (c *Client) execute(ctx context.Context, req *http.Request, path string, out any) error {
	c.logTraceCtx(ctx, "client.http.request", "method", req.Method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logErrorCtx(ctx, "client.http.transport_error", "method", req.Method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logWarnCtx(ctx, "client.http.error", "method", req.Method, "path", path, "status", resp.StatusCode)
		return c.decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	c.logTraceCtx(ctx, "client.http.success", "method", req.Method, "path", path, "status", resp.StatusCode)
	return nil
}

// sendBody issues a request carrying an encoded multipart body. The
// caller's context applies unmodified: upload duration is bounded by the
// caller, not by the JSON request timeout.
func (c *Client) sendBody(ctx context.Context, method, path string, query url.Values, body *encodedBody) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body.content)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", body.contentType)
	if body.contentLength >= 0 {
		req.ContentLength = body.contentLength
	}
	c.applyCorrelationHeader(ctx, req)
	return c.execute(ctx, req, path, nil)
}

func (c *Client) logTraceCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Trace(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logDebugCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logInfoCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logWarnCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logErrorCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) enrichKeyvals(ctx context.Context, keyvals []any) []any {
	cid := CorrelationIDFromContext(ctx)
	if cid == "" || hasKey(keyvals, "cid") {
		return keyvals
	}
	enriched := append([]any(nil), keyvals...)
	return append(enriched, "cid", cid)
}

func hasKey(keyvals []any, target string) bool {
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok && key == target {
			return true
		}
	}
	return false
}
