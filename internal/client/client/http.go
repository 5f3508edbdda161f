package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storygen/internal/buildinfo"
	"github.com/dmitrijs2005/storygen/internal/common"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

// TokenSource yields the current credential; "" means none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// RequestOptions describe one call. The zero value is an authenticated GET.
type RequestOptions struct {
	// Method defaults to GET, or POST when Body is set.
	Method      string
	Body        io.Reader
	ContentType string
	Headers     map[string]string
	// SkipAuth omits the Authorization header even when a credential exists.
	SkipAuth bool
	// AllowText accepts a successful non-JSON body instead of failing with
	// MalformedResponseError.
	AllowText bool
}

// Response is a successful reply. Data holds the decoded JSON when JSON is
// true; Raw always holds the body text.
type Response struct {
	Status int
	Raw    string
	JSON   bool
	Data   any
}

// HTTPClient talks JSON over HTTP to the extraction service. Every request
// gets an X-Request-ID. A 401 response triggers the unauthorized callback
// exactly once before the call returns. There are no retries.
type HTTPClient struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	userAgent      string
	log            logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request, body read included.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// NewHTTPClient builds a client for baseURL. tokens may be nil for a client
// that never authenticates; onUnauthorized may be nil.
func NewHTTPClient(baseURL string, tokens TokenSource, onUnauthorized func(ctx context.Context), opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
		userAgent:      "storygen/" + buildinfo.Version(),
		log:            logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *HTTPClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Request performs one call and decodes the reply.
//
// Failures:
//   - transport errors wrap ErrNetwork;
//   - a body that is not JSON yields *MalformedResponseError, unless the
//     status is 2xx and AllowText is set;
//   - a JSON body with a non-2xx status yields *RequestFailedError.
//
// Both typed errors match ErrUnauthorized for status 401.
func (c *HTTPClient) Request(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if opts.Body != nil {
			method = http.MethodPost
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), opts.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if !opts.SkipAuth {
		if t := c.token(); t != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+t)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", requestID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	log.Debug(ctx, "response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(started))

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}

	return decodeResponse(resp.StatusCode, body, opts.AllowText)
}

func decodeResponse(status int, body []byte, allowText bool) (*Response, error) {
	ok := status >= 200 && status < 300
	raw := string(body)

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		if ok && allowText {
			return &Response{Status: status, Raw: raw}, nil
		}
		return nil, &MalformedResponseError{Status: status, Raw: strings.TrimSpace(raw)}
	}

	if !ok {
		return nil, &RequestFailedError{Status: status, Message: failureMessage(data)}
	}

	return &Response{Status: status, Raw: raw, JSON: true, Data: data}, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the reply into out.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any, skipAuth bool) error {
	opts := RequestOptions{Method: method, SkipAuth: skipAuth}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		opts.Body = bytes.NewReader(b)
		opts.ContentType = "application/json"
	}

	resp, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(resp.Raw), out); err != nil {
		return &MalformedResponseError{Status: resp.Status, Raw: resp.Raw}
	}
	return nil
}
