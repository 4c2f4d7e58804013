package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/pkg/cache"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/notify"
	"github.com/angelmondragon/storefront/pkg/restclient"
	"github.com/angelmondragon/storefront/pkg/tokenstore"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const (
	defaultHomeRoute  = "/"
	defaultLoginRoute = "/login"
)

// API is the part of the REST client the session uses. Raw skips the
// refresh-and-retry step.
type API interface {
	Do(ctx context.Context, req restclient.Request, out any) error
	Raw(ctx context.Context, req restclient.Request, out any) error
}

// CookieClearer forgets persisted cookies (the refresh cookie).
type CookieClearer interface {
	Clear(ctx context.Context) error
}

// LoginHook runs after a successful sign-in with what the shopper had
// cached beforehand. Hook errors are logged, never returned.
type LoginHook func(ctx context.Context, user types.User, guest GuestState) error

// ServiceParams groups dependencies for the session service.
type ServiceParams struct {
	API       API
	Tokens    tokenstore.Store
	Cache     *cache.Cache
	Cookies   CookieClearer
	Navigator Navigator
	Notifier  notify.Notifier
	Logger    *logger.Logger

	HomeRoute  string
	LoginRoute string
}

// Service owns the sign-in lifecycle:
// unauthenticated -> authenticating -> authenticated, and back to
// unauthenticated on logout or when the session cannot be renewed.
type Service interface {
	State() enums.SessionState
	CurrentUser(ctx context.Context) (types.User, bool)
	CheckAuth(ctx context.Context) (*types.User, error)
	Login(ctx context.Context, in LoginInput) (types.User, error)
	Register(ctx context.Context, in RegisterInput) (types.User, error)
	Logout(ctx context.Context) error
	Expire(ctx context.Context)
	OnLogin(hook LoginHook)
}

type service struct {
	api       API
	tokens    tokenstore.Store
	cache     *cache.Cache
	cookies   CookieClearer
	navigator Navigator
	notifier  notify.Notifier
	logg      *logger.Logger

	homeRoute  string
	loginRoute string

	mu    sync.Mutex
	state enums.SessionState
	hooks []LoginHook
}

// NewService builds a session service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token store is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	s := &service{
		api:        params.API,
		tokens:     params.Tokens,
		cache:      params.Cache,
		cookies:    params.Cookies,
		navigator:  params.Navigator,
		notifier:   params.Notifier,
		logg:       params.Logger,
		homeRoute:  firstNonEmpty(params.HomeRoute, defaultHomeRoute),
		loginRoute: firstNonEmpty(params.LoginRoute, defaultLoginRoute),
		state:      enums.SessionUnauthenticated,
	}
	if s.navigator == nil {
		s.navigator = &RouteRecorder{}
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	return s, nil
}

func (s *service) State() enums.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *service) OnLogin(hook LoginHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// CurrentUser returns the cached user without touching the network.
func (s *service) CurrentUser(ctx context.Context) (types.User, bool) {
	user, ok, err := cache.Get[types.User](ctx, s.cache, cache.KeyAuthUser)
	if err != nil {
		return types.User{}, false
	}
	return user, ok
}

// CheckAuth resolves the signed-in user. Without a stored token it settles
// on unauthenticated without a request. A rejected token ends the session
// and yields a nil user; other failures are returned.
func (s *service) CheckAuth(ctx context.Context) (*types.User, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read access token")
	}
	if strings.TrimSpace(token) == "" {
		s.setState(ctx, enums.SessionUnauthenticated)
		return nil, nil
	}

	if s.State() != enums.SessionAuthenticated {
		s.setState(ctx, enums.SessionAuthenticating)
	}
	user, err := cache.Fetch(ctx, s.cache, cache.KeyAuthUser, func(ctx context.Context) (types.User, error) {
		var u types.User
		err := s.api.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/auth/check-user"}, &u)
		return u, err
	})
	if err != nil {
		if s.rejected(ctx, err) {
			if cerr := s.clearLocal(ctx); cerr != nil {
				s.logg.Error(ctx, "session.clear_failed", cerr)
			}
			s.setState(ctx, enums.SessionUnauthenticated)
			return nil, nil
		}
		s.setState(ctx, enums.SessionUnauthenticated)
		return nil, err
	}

	s.setState(s.logg.WithUserID(ctx, user.ID), enums.SessionAuthenticated)
	return &user, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (types.User, error) {
	in = in.normalize()
	if err := validate.Struct(in); err != nil {
		s.notifier.Error(ctx, "", err)
		return types.User{}, err
	}
	return s.authenticate(ctx, "/auth/login", in, "welcome back", "login failed")
}

func (s *service) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in = in.normalize()
	if err := validate.Struct(in); err != nil {
		s.notifier.Error(ctx, "", err)
		return types.User{}, err
	}
	return s.authenticate(ctx, "/auth/register", in, "account created", "registration failed")
}

// authenticate posts credentials and, on success, seeds the user cache from
// the response instead of asking check-user again.
func (s *service) authenticate(ctx context.Context, path string, body any, okMsg, failMsg string) (types.User, error) {
	guest := s.guestState(ctx)
	previous := s.State()
	s.setState(ctx, enums.SessionAuthenticating)

	var resp types.AuthResponse
	err := s.api.Raw(ctx, restclient.Request{Method: http.MethodPost, Path: path, Body: body}, &resp)
	if err == nil && strings.TrimSpace(resp.AccessToken) == "" {
		err = pkgerrors.New(pkgerrors.CodeInternal, "auth response has no access token")
	}
	if err != nil {
		s.setState(ctx, previous)
		s.notifier.Error(ctx, failMsg, err)
		return types.User{}, err
	}

	// Whatever the previous user left in the cache must not leak.
	if err := s.cache.Clear(ctx); err != nil {
		s.logg.Error(ctx, "session.cache_clear_failed", err)
	}
	if err := s.tokens.SetToken(ctx, resp.AccessToken); err != nil {
		s.setState(ctx, enums.SessionUnauthenticated)
		return types.User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store access token")
	}
	if err := cache.Set(ctx, s.cache, cache.KeyAuthUser, resp.User); err != nil {
		s.logg.Error(ctx, "session.seed_user_failed", err)
	}

	ctx = s.logg.WithUserID(ctx, resp.User.ID)
	s.setState(ctx, enums.SessionAuthenticated)
	s.navigator.Navigate(s.homeRoute)
	s.runHooks(ctx, resp.User, guest)
	s.notifier.Success(ctx, okMsg)
	return resp.User, nil
}

// Logout tells the backend, then clears every cached resource, the token
// and the refresh cookie whatever the backend answered. Only local cleanup
// failures are returned.
func (s *service) Logout(ctx context.Context) error {
	if err := s.api.Raw(ctx, restclient.Request{Method: http.MethodPost, Path: "/auth/logout"}, nil); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session.logout_request_failed")
	}

	err := s.clearLocal(ctx)
	s.setState(ctx, enums.SessionUnauthenticated)
	s.navigator.Navigate(s.loginRoute)
	if err != nil {
		s.logg.Error(ctx, "session.logout_cleanup_failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear local session")
	}
	s.notifier.Success(ctx, "signed out")
	return nil
}

// Expire ends the session after the token could not be renewed.
func (s *service) Expire(ctx context.Context) {
	wasSignedIn := s.State() != enums.SessionUnauthenticated
	if err := s.clearLocal(ctx); err != nil {
		s.logg.Error(ctx, "session.expire_cleanup_failed", err)
	}
	s.setState(ctx, enums.SessionUnauthenticated)
	s.navigator.Navigate(s.loginRoute)
	if wasSignedIn {
		s.notifier.Error(ctx, "", pkgerrors.New(pkgerrors.CodeTokenExpired, "session expired"))
	}
}

// rejected reports whether err means the stored token is no longer usable.
// A check-user fetch cancelled by Expire surfaces as cache.ErrCancelled with
// the token already gone.
func (s *service) rejected(ctx context.Context, err error) bool {
	if typed := pkgerrors.As(err); typed != nil && typed.Kind() == pkgerrors.KindAuth {
		return true
	}
	if !errors.Is(err, cache.ErrCancelled) {
		return false
	}
	token, terr := s.tokens.Token(ctx)
	return terr == nil && strings.TrimSpace(token) == ""
}

func (s *service) clearLocal(ctx context.Context) error {
	err := multierr.Combine(
		s.cache.Clear(ctx),
		s.tokens.ClearToken(ctx),
	)
	if s.cookies != nil {
		err = multierr.Append(err, s.cookies.Clear(ctx))
	}
	return err
}

// guestState captures the cart and wishlist cached while signed out.
func (s *service) guestState(ctx context.Context) GuestState {
	if s.State() == enums.SessionAuthenticated {
		return GuestState{}
	}
	var guest GuestState
	if c, ok, err := cache.Get[types.Cart](ctx, s.cache, cache.KeyCart); err == nil && ok {
		guest.Cart = c
	}
	if w, ok, err := cache.Get[types.Wishlist](ctx, s.cache, cache.KeyWishlist); err == nil && ok {
		guest.Wishlist = w
	}
	return guest
}

func (s *service) runHooks(ctx context.Context, user types.User, guest GuestState) {
	s.mu.Lock()
	hooks := append([]LoginHook(nil), s.hooks...)
	s.mu.Unlock()
	for _, hook := range hooks {
		if err := hook(ctx, user, guest); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session.login_hook_failed")
		}
	}
}

func (s *service) setState(ctx context.Context, next enums.SessionState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	if prev != next {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"from": prev.String(),
			"to":   next.String(),
		}), "session.transition")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
