// Package storefront wires the client stack from configuration: logger,
// metrics, cache, token store, REST client, session and resource services.
package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/internal/address"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/optimistic"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/users"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/cache"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/notify"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/tokenstore"
)

// Options carries the view-layer pieces the caller owns.
type Options struct {
	Logger     *logger.Logger
	Notifier   notify.Notifier
	Navigator  session.Navigator
	HTTPClient *http.Client
}

// App is the assembled client.
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.ClientMetrics
	Cache     *cache.Cache
	Tokens    tokenstore.Store
	Jar       *tokenstore.Jar
	Client    *restclient.Client
	Runner    *optimistic.Runner
	Navigator session.Navigator

	Session  session.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Orders   orders.Service
	Address  address.Service
	Users    users.Service

	closers []func() error
}

// New builds the App. On error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, opts Options) (app *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	navigator := opts.Navigator
	if navigator == nil {
		navigator = &session.RouteRecorder{}
	}

	app = &App{Config: cfg, Logger: logg, Navigator: navigator}
	built := app
	defer func() {
		if err != nil {
			err = multierr.Append(err, built.Close())
		}
	}()

	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Metrics = metrics.NewClientMetrics(app.Registry)
	}

	store, err := app.cacheStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Cache = cache.New(store, cache.Options{
		StaleTime: cfg.Cache.StaleTime,
		Logger:    logg,
		Metrics:   app.Metrics,
	})

	if app.Tokens, err = app.tokenStore(ctx); err != nil {
		return nil, err
	}

	origin, err := url.Parse(strings.TrimSpace(cfg.API.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if app.Jar, err = tokenstore.NewJar(ctx, app.Tokens, origin, logg, cfg.API.RefreshCookieName); err != nil {
		return nil, fmt.Errorf("restoring cookies: %w", err)
	}

	app.Client, err = restclient.NewClient(cfg.API.BaseURL, app.Tokens,
		restclient.WithHTTPClient(opts.HTTPClient),
		restclient.WithTimeout(cfg.API.RequestTimeout),
		restclient.WithLogger(logg),
		restclient.WithMetrics(app.Metrics),
		restclient.WithRefreshPath(cfg.API.RefreshPath),
		restclient.WithCookieJar(app.Jar),
		restclient.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return nil, err
	}
	app.Runner = optimistic.NewRunner(app.Cache, notifier, logg, app.Metrics)

	if err := app.buildServices(notifier); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) buildServices(notifier notify.Notifier) error {
	var err error
	if a.Session, err = session.NewService(session.ServiceParams{
		API:        a.Client,
		Tokens:     a.Tokens,
		Cache:      a.Cache,
		Cookies:    a.Jar,
		Navigator:  a.Navigator,
		Notifier:   notifier,
		Logger:     a.Logger,
		HomeRoute:  a.Config.Session.HomeRoute,
		LoginRoute: a.Config.Session.LoginRoute,
	}); err != nil {
		return err
	}
	a.Client.SetOnSessionExpired(a.Session.Expire)

	if a.Catalog, err = catalog.NewService(catalog.ServiceParams{Repo: catalog.NewRepository(a.Client), Cache: a.Cache}); err != nil {
		return err
	}
	if a.Cart, err = cart.NewService(cart.ServiceParams{Repo: cart.NewRepository(a.Client), Runner: a.Runner}); err != nil {
		return err
	}
	if a.Wishlist, err = wishlist.NewService(wishlist.ServiceParams{Repo: wishlist.NewRepository(a.Client), Runner: a.Runner}); err != nil {
		return err
	}
	if a.Orders, err = orders.NewService(orders.ServiceParams{Repo: orders.NewRepository(a.Client), Runner: a.Runner, Cart: a.Cart}); err != nil {
		return err
	}
	if a.Address, err = address.NewService(address.ServiceParams{Repo: address.NewRepository(a.Client), Runner: a.Runner}); err != nil {
		return err
	}
	if a.Users, err = users.NewService(users.ServiceParams{Repo: users.NewRepository(a.Client), Runner: a.Runner}); err != nil {
		return err
	}

	if a.Config.Session.MergeGuestOnLogin {
		a.Session.OnLogin(MergeGuest(a.Cart, a.Wishlist))
	}
	return nil
}

func (a *App) cacheStore(ctx context.Context) (cache.Store, error) {
	cfg := a.Config
	if !strings.EqualFold(cfg.Cache.Driver, config.CacheDriverRedis) {
		return cache.NewMemoryStore(), nil
	}
	client, err := redis.New(ctx, cfg.Redis, cfg.Cache.Namespace, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap redis cache: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewRedisStore(client), nil
}

func (a *App) tokenStore(ctx context.Context) (tokenstore.Store, error) {
	cfg := a.Config
	if strings.EqualFold(cfg.TokenStore.Driver, config.TokenStoreMemory) {
		return tokenstore.NewMemoryStore(), nil
	}
	client, err := db.New(ctx, cfg.TokenStore.SQLitePath, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap token store: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return tokenstore.NewSQLStore(ctx, client)
}

// Close releases the redis and sqlite connections, newest first.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
