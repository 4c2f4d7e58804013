package restclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultRefreshPath = "/auth/refresh"
	defaultUserAgent   = "storefront-cli"
)

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

// WithTimeout sets the fixed per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRefreshPath overrides the endpoint used to renew the access token.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			c.refreshPath = trimmed
		}
	}
}

// WithOnSessionExpired registers the hook fired when a refresh fails.
func WithOnSessionExpired(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// WithCookieJar installs the jar that carries the refresh cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(ua); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// Doer is the part of Client the resource repositories depend on.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

var _ Doer = (*Client)(nil)
