// internal/app/system/backend/client.go
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

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a response we are willing to buffer.
const maxBody = 32 << 20

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Circuit breaker: trip once at least BreakerMinRequests calls were made
	// in the current interval and the failure ratio reaches
	// BreakerFailureRatio. Stay open for BreakerOpenTimeout.
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	// Transport overrides the base transport (tests).
	Transport http.RoundTripper
}

// Client talks to the HR REST backend. It is safe for concurrent use.
type Client struct {
	base *url.URL
	hc   *http.Client
	cb   *gobreaker.CircuitBreaker[*rawResponse]
	log  *zap.Logger
}

type rawResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// New builds a Client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("backend: base URL is empty")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend: base URL must be http or https, got %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		base: base,
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		log: logger,
	}
	c.cb = newBreaker(cfg, logger)
	return c, nil
}

func newBreaker(cfg Config, logger *zap.Logger) *gobreaker.CircuitBreaker[*rawResponse] {
	minReq := cfg.BreakerMinRequests
	if minReq == 0 {
		minReq = 5
	}
	ratio := cfg.BreakerFailureRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.6
	}

	var st gobreaker.Settings
	st.Name = "hr-backend"
	st.Timeout = cfg.BreakerOpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minReq && failureRatio >= ratio
	}
	// Only transport failures and 5xx responses say anything about backend
	// health. Business rejections, 401s and callers that went away are
	// normal traffic.
	st.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) {
			return true
		}
		if errors.Is(err, ErrNetwork) {
			return false
		}
		var apiErr *APIError
		return !(errors.As(err, &apiErr) && apiErr.Status >= 500)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("backend circuit breaker state change",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	return gobreaker.NewCircuitBreaker[*rawResponse](st)
}

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

/*─────────────────────────────────────────────────────────────────────────────*
| Per-request credentials                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey struct{}

// WithToken returns a context whose backend calls carry token as a bearer
// credential.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, &oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func tokenFrom(ctx context.Context) (*oauth2.Token, bool) {
	tok, ok := ctx.Value(ctxKey{}).(*oauth2.Token)
	return tok, ok && tok.AccessToken != ""
}

// httpClient returns the shared client, wrapped in an oauth2 transport when
// the context carries a token.
func (c *Client) httpClient(ctx context.Context) *http.Client {
	tok, ok := tokenFrom(ctx)
	if !ok {
		return c.hc
	}
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.hc), oauth2.StaticTokenSource(tok))
	authed.Timeout = c.hc.Timeout
	return authed
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request plumbing                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do performs one request through the circuit breaker. Non-2xx responses
// are returned as errors; 2xx bodies are returned raw.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string) (*rawResponse, error) {
	reqID := uuid.NewString()

	raw, err := c.cb.Execute(func() (*rawResponse, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
		if err != nil {
			return nil, fmt.Errorf("backend: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", reqID)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient(ctx).Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s %s: %w", ErrNetwork, method, path, err)
		}
		raw := &rawResponse{Status: resp.StatusCode, Header: resp.Header, Body: data}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, statusError(raw)
		}
		return raw, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	if err != nil {
		c.log.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, err
	}
	return raw, nil
}

func statusError(raw *rawResponse) error {
	var env envelope
	if json.Unmarshal(raw.Body, &env) == nil && env.Message != "" {
		return &APIError{Status: raw.Status, Message: env.Message}
	}
	return &APIError{Status: raw.Status}
}

// call sends a JSON request and unwraps the envelope's data into out.
// out may be nil when the caller does not need the payload.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	raw, err := c.do(ctx, method, path, q, body, contentType)
	if err != nil {
		return err
	}
	return unwrap(raw, out)
}

// unwrap decodes a success envelope. success=false becomes an *APIError
// carrying the backend's message.
func unwrap(raw *rawResponse, out any) error {
	var env envelope
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return fmt.Errorf("backend: decode envelope: %w", err)
	}
	if !env.Success {
		return &APIError{Status: raw.Status, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("backend: decode data: %w", err)
	}
	return nil
}
