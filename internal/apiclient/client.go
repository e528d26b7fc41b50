// Package apiclient is the single outbound gateway to the EventHub backend.
//
// Every request carries the session token when there is one. A 401 answer
// clears the stored token and is published on the auth bus before the
// error is returned, so the session owner signs out without this package
// knowing about it. Requests are never retried.
package apiclient

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
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"go.opentelemetry.io/otel/codes"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/authbus"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

const (
	headerRequestID = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// TokenSource yields the bearer token of the current session, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenClearer drops the persisted token.
type TokenClearer interface {
	ClearToken(ctx context.Context)
}

// Publisher receives authentication failures.
type Publisher interface {
	Publish(ctx context.Context, ev authbus.Event)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Timeout is overwritten
// when WithTimeout is also given.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout bounds every request. Zero leaves the platform default.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

func WithApplication(app commoncfg.Application) Option {
	return func(cl *Client) { cl.app = app }
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	app       commoncfg.Application
	userAgent string

	tokens    TokenSource
	clearer   TokenClearer
	publisher Publisher
	telemetry *telemetry
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Public requests answer 401 for bad input credentials, not for a bad
	// session, so they never trigger a sign-out.
	Public bool
}

func New(baseURL string, tokens TokenSource, clearer TokenClearer, publisher Publisher, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		tokens:    tokens,
		clearer:   clearer,
		publisher: publisher,
		userAgent: "eventhub-client",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}

	c.telemetry, err = newTelemetry(c.app)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Do sends req and decodes a successful JSON answer into out, which may be
// nil. Failures are *serviceerr.Error values.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	operation := req.Method + " " + req.Path
	requestID := uuid.NewString()
	ctx = slogctx.With(ctx,
		commoncfg.AttrRequestID, requestID,
		commoncfg.AttrOperation, operation,
	)

	httpReq, err := c.newRequest(ctx, req, requestID)
	if err != nil {
		return err
	}

	ctx, span := c.telemetry.start(ctx, httpReq, operation)
	defer span.End()
	httpReq = httpReq.WithContext(ctx)

	start := time.Now()
	slogctx.Debug(ctx, "Sending request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.telemetry.record(ctx, operation, 0, time.Since(start))
		span.SetStatus(codes.Error, "transport failure")
		slogctx.Warn(ctx, "Request failed", "error", err)
		return c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	c.telemetry.record(ctx, operation, resp.StatusCode, time.Since(start))
	slogctx.Debug(ctx, "Received response", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeBody(resp, out)
	}

	span.SetStatus(codes.Error, resp.Status)

	return c.handleFailure(ctx, req, resp)
}

func (c *Client) newRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(headerRequestID, requestID)

	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	return httpReq, nil
}

func (c *Client) handleFailure(ctx context.Context, req Request, resp *http.Response) error {
	message := readErrorMessage(resp)
	svcErr := serviceerr.FromResponse(resp.StatusCode, message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !req.Public:
		slogctx.Warn(ctx, "Session rejected by backend")
		if c.clearer != nil {
			c.clearer.ClearToken(ctx)
		}
		if c.publisher != nil {
			c.publisher.Publish(ctx, authbus.Event{
				Reason: authbus.ReasonUnauthorized,
				Method: req.Method,
				Path:   req.Path,
			})
		}
		svcErr.Description = serviceerr.ErrAuthentication.Description
	case resp.StatusCode == http.StatusForbidden:
		slogctx.Info(ctx, "Request forbidden")
	default:
		slogctx.Info(ctx, "Request rejected", "status", resp.StatusCode, "message", message)
	}

	return svcErr
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}

	return &serviceerr.Error{
		Err:         serviceerr.CodeConnectivity,
		Description: serviceerr.ErrConnectivity.Description,
	}
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &serviceerr.Error{
			Err:         serviceerr.CodeUnknown,
			Description: "Unexpected response from the server.",
			Status:      resp.StatusCode,
		}
	}

	return nil
}

// readErrorMessage reads the "error" or "message" field of a JSON error
// body, falling back to the status text.
func readErrorMessage(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(b) > 0 {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &body) == nil {
			if body.Error != "" {
				return body.Error
			}
			if body.Message != "" {
				return body.Message
			}
		}
	}

	return http.StatusText(resp.StatusCode)
}
