package apitest

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/pkg/cache"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/notify"
	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/tokenstore"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Harness is a client stack pointed at a fresh backend: REST client with a
// persisting cookie jar, shared cache, mutation runner and a notice recorder.
type Harness struct {
	Server   *Server
	Client   *restclient.Client
	Tokens   *tokenstore.MemoryStore
	Jar      *tokenstore.Jar
	Cache    *cache.Cache
	Runner   *optimistic.Runner
	Notices  *notify.Recorder
	Metrics  *metrics.ClientMetrics
	Registry *prometheus.Registry
}

func NewHarness(t testing.TB) *Harness {
	t.Helper()
	srv := New(t)

	origin, err := url.Parse(srv.URL)
	require.NoError(t, err)

	tokens := tokenstore.NewMemoryStore()
	jar, err := tokenstore.NewJar(context.Background(), tokens, origin, nil, controllers.RefreshCookieName)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	client, err := restclient.NewClient(srv.URL, tokens,
		restclient.WithHTTPClient(srv.Client()),
		restclient.WithCookieJar(jar),
		restclient.WithMetrics(m),
	)
	require.NoError(t, err)

	c := cache.New(cache.NewMemoryStore(), cache.Options{Metrics: m})
	notices := &notify.Recorder{}
	return &Harness{
		Server:   srv,
		Client:   client,
		Tokens:   tokens,
		Jar:      jar,
		Cache:    c,
		Runner:   optimistic.NewRunner(c, notices, nil, m),
		Notices:  notices,
		Metrics:  m,
		Registry: reg,
	}
}

// SignIn registers a shopper and logs in over HTTP so the token store and
// the jar hold a real session.
func (h *Harness) SignIn(t testing.TB, email string) types.User {
	t.Helper()
	h.Server.Register(t, "Test Shopper", email)

	var resp types.AuthResponse
	err := h.Client.Raw(context.Background(), restclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": email, "password": DefaultPassword},
	}, &resp)
	require.NoError(t, err)
	require.NoError(t, h.Tokens.SetToken(context.Background(), resp.AccessToken))
	return resp.User
}

// Calls reports how many requests reached method and path.
func (h *Harness) Calls(method, path string) int {
	return h.Server.Faults.Calls(method, path)
}
