package restclient

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
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/tokenstore"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	// maxRefreshRetries caps how many times one call may be replayed after a
	// token refresh.
	maxRefreshRetries = 1

	requestIDHeader      = "X-Request-Id"
	responseBodyLimit    = 4 << 20
	refreshFlightKey     = "refresh"
	outcomeRefreshOK     = "success"
	outcomeRefreshFailed = "failure"
)

var errBaseURLRequired = errors.New("api base url is required")

// Request describes one backend call. Route is the low-cardinality template
// used for metrics (e.g. "/orders/my-orders/:id"); it defaults to Path.
type Request struct {
	Method string
	Path   string
	Route  string
	Query  url.Values
	Body   any
}

// Client talks to the storefront REST API. It attaches the stored bearer
// token and renews it once per call when the backend reports it expired.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	jar         http.CookieJar
	timeout     time.Duration
	tokens      tokenstore.Store
	logg        *logger.Logger
	metrics     *metrics.ClientMetrics
	refreshPath string
	userAgent   string

	refreshGroup singleflight.Group

	hookMu    sync.RWMutex
	onExpired func(ctx context.Context)
}

// NewClient builds the client for the API rooted at baseURL.
func NewClient(baseURL string, tokens tokenstore.Store, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if tokens == nil {
		tokens = tokenstore.NewMemoryStore()
	}

	client := &Client{
		baseURL:     trimmed,
		httpClient:  &http.Client{},
		timeout:     defaultTimeout,
		tokens:      tokens,
		logg:        logger.Nop(),
		refreshPath: defaultRefreshPath,
		userAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.jar != nil {
		hc := *client.httpClient
		hc.Jar = client.jar
		client.httpClient = &hc
	}
	return client, nil
}

// SetOnSessionExpired replaces the hook fired when a refresh fails. The
// session registers itself here once it exists.
func (c *Client) SetOnSessionExpired(fn func(ctx context.Context)) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onExpired = fn
}

// Do performs req and decodes the response into out (which may be nil). An
// expired access token is refreshed and the call replayed at most once.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	return c.do(ctx, req, out, 0)
}

// Raw performs req without the refresh-and-retry step. Login, register and
// the refresh call itself go through here.
func (c *Client) Raw(ctx context.Context, req Request, out any) error {
	_, err := c.send(ctx, req, out)
	return err
}

func (c *Client) do(ctx context.Context, req Request, out any, retries int) error {
	used, err := c.send(ctx, req, out)
	if err == nil || !pkgerrors.IsCode(err, pkgerrors.CodeTokenExpired) || used == "" {
		return err
	}

	if retries >= maxRefreshRetries {
		c.logg.Warn(c.requestCtx(ctx, req), "http.token_expired_after_refresh")
		return c.expire(ctx, err)
	}

	// Another call may have refreshed while this one was in flight.
	if current, terr := c.tokens.Token(ctx); terr == nil && current != "" && current != used {
		return c.do(ctx, req, out, retries+1)
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	return c.do(ctx, req, out, retries+1)
}

// refresh renews the access token. Concurrent callers share one request.
func (c *Client) refresh(ctx context.Context) error {
	results := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		// The refresh outlives whichever caller started it.
		refreshCtx := context.WithoutCancel(ctx)
		var resp types.RefreshResponse
		_, err := c.send(refreshCtx, Request{Method: http.MethodGet, Path: c.refreshPath}, &resp)
		if err == nil && strings.TrimSpace(resp.AccessToken) == "" {
			err = pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh returned no access token")
		}
		if err == nil {
			err = c.tokens.SetToken(refreshCtx, resp.AccessToken)
		}
		if err != nil {
			c.metrics.IncRefresh(outcomeRefreshFailed)
			c.logg.Error(refreshCtx, "auth.refresh_failed", err)
			return nil, c.expire(refreshCtx, err)
		}
		c.metrics.IncRefresh(outcomeRefreshOK)
		c.logg.Info(refreshCtx, "auth.refreshed")
		return resp.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return wrapTransportError(ctx.Err())
	case res := <-results:
		return res.Err
	}
}

// expire drops the stored token and tells the session it is over.
func (c *Client) expire(ctx context.Context, cause error) error {
	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logg.Error(ctx, "auth.clear_token_failed", err)
	}
	c.hookMu.RLock()
	hook := c.onExpired
	c.hookMu.RUnlock()
	if hook != nil {
		hook(ctx)
	}
	return pkgerrors.Wrap(pkgerrors.CodeTokenExpired, cause, "session expired")
}

// send performs one round trip. It returns the token it attached.
func (c *Client) send(ctx context.Context, req Request, out any) (string, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read access token")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, requestID, err := c.newRequest(reqCtx, req, token)
	if err != nil {
		return token, err
	}
	logCtx := c.logg.WithRequestID(c.requestCtx(ctx, req), requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, c.route(req), 0, time.Since(start))
		mapped := wrapTransportError(err)
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "http.transport_failed")
		return token, mapped
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	duration := time.Since(start)
	c.metrics.ObserveRequest(req.Method, c.route(req), resp.StatusCode, duration)
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return token, wrapTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, body)
		c.logg.Warn(c.logg.WithField(logCtx, "error_code", string(apiErr.Code())), "http.request_failed")
		return token, apiErr
	}
	c.logg.Debug(logCtx, "http.request")

	if err := decodeSuccess(body, out); err != nil {
		return token, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode response")
	}
	return token, nil
}

func (c *Client) newRequest(ctx context.Context, req Request, token string) (*http.Request, string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, requestID, nil
}

func (c *Client) requestCtx(ctx context.Context, req Request) context.Context {
	return c.logg.WithFields(ctx, map[string]any{
		"method": req.Method,
		"path":   req.Path,
	})
}

func (c *Client) route(req Request) string {
	if req.Route != "" {
		return req.Route
	}
	return req.Path
}

func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request failed")
}
