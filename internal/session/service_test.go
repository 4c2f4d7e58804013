package session

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/api/apitest"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/pkg/cache"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

type fixture struct {
	h      *apitest.Harness
	routes *RouteRecorder
	svc    Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := apitest.NewHarness(t)
	routes := &RouteRecorder{}
	svc, err := NewService(ServiceParams{
		API:       h.Client,
		Tokens:    h.Tokens,
		Cache:     h.Cache,
		Cookies:   h.Jar,
		Navigator: routes,
		Notifier:  h.Notices,
	})
	require.NoError(t, err)
	h.Client.SetOnSessionExpired(svc.Expire)
	return &fixture{h: h, routes: routes, svc: svc}
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	token, err := f.h.Tokens.Token(context.Background())
	require.NoError(t, err)
	return token
}

func (f *fixture) login(t *testing.T, email string) types.User {
	t.Helper()
	f.h.Server.Register(t, "Test Shopper", email)
	user, err := f.svc.Login(context.Background(), LoginInput{Email: email, Password: apitest.DefaultPassword})
	require.NoError(t, err)
	return user
}

func (f *fixture) refreshCookies() []*http.Cookie {
	origin, _ := url.Parse(f.h.Server.URL)
	return f.h.Jar.Cookies(origin)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCheckAuthWithoutTokenSkipsRequest(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.CheckAuth(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, enums.SessionUnauthenticated, f.svc.State())
	assert.Zero(t, f.h.Calls(http.MethodGet, "/auth/check-user"))
}

func TestLoginResetsCacheAndRunsHooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	guestCart := types.Cart{Items: []types.CartItem{{ID: "g1", Product: types.ProductSummary{ID: "prod-tee"}, Color: "white", Size: "M", Quantity: 1}}}
	require.NoError(t, cache.Set(ctx, f.h.Cache, cache.KeyCart, guestCart))
	require.NoError(t, cache.Set(ctx, f.h.Cache, cache.KeyOrders, []types.Order{{ID: "someone-elses"}}))

	var seen GuestState
	f.svc.OnLogin(func(_ context.Context, _ types.User, guest GuestState) error {
		seen = guest
		return nil
	})

	user := f.login(t, "  Shopper@Example.com ")
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.Equal(t, enums.SessionAuthenticated, f.svc.State())
	assert.Equal(t, "/", f.routes.Current())
	assert.NotEmpty(t, f.token(t))
	assert.NotEmpty(t, f.refreshCookies())

	require.Len(t, seen.Cart.Items, 1)
	assert.Equal(t, "g1", seen.Cart.Items[0].ID)

	for _, key := range []cache.Key{cache.KeyCart, cache.KeyOrders} {
		_, ok, err := cache.Get[types.Cart](ctx, f.h.Cache, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	current, ok := f.svc.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, current.ID)

	// The login response seeds the user, so check-user is not asked.
	checked, err := f.svc.CheckAuth(ctx)
	require.NoError(t, err)
	require.NotNil(t, checked)
	assert.Zero(t, f.h.Calls(http.MethodGet, "/auth/check-user"))

	notices := f.h.Notices.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "welcome back", notices[len(notices)-1].Message)
}

func TestLoginHookErrorsAreSwallowed(t *testing.T) {
	f := newFixture(t)
	f.svc.OnLogin(func(context.Context, types.User, GuestState) error {
		return pkgerrors.New(pkgerrors.CodeInternal, "merge failed")
	})
	f.login(t, "hooks@example.com")
	assert.Equal(t, enums.SessionAuthenticated, f.svc.State())
}

func TestLoginFailureRestoresState(t *testing.T) {
	f := newFixture(t)
	f.h.Server.Register(t, "Test Shopper", "wrong@example.com")

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "wrong@example.com", Password: "not-the-password"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, enums.SessionUnauthenticated, f.svc.State())
	assert.Empty(t, f.token(t))
	assert.Empty(t, f.routes.History())

	errs := f.h.Notices.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "login failed", errs[0].Message)
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "secret123"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.Register(context.Background(), RegisterInput{
		FullName: "New Shopper", Email: "new@example.com", Password: "secret123", ConfirmPassword: "secret124",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Zero(t, f.h.Calls(http.MethodPost, "/auth/login"))
	assert.Zero(t, f.h.Calls(http.MethodPost, "/auth/register"))
}

func TestRegisterSignsIn(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Register(context.Background(), RegisterInput{
		FullName: " New Shopper ", Email: "new@example.com", Password: "secret123", ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Shopper", user.FullName)
	assert.Equal(t, enums.SessionAuthenticated, f.svc.State())
	assert.NotEmpty(t, f.token(t))

	_, err = f.svc.Register(context.Background(), RegisterInput{
		FullName: "Again", Email: "new@example.com", Password: "secret123", ConfirmPassword: "secret123",
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestLogoutClearsEverythingEvenWhenBackendFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "leaving@example.com")
	require.NoError(t, cache.Set(ctx, f.h.Cache, cache.KeyWishlist, types.Wishlist{}))

	f.h.Server.Faults.Fail(http.MethodPost, "/auth/logout", middleware.Fault{Status: http.StatusInternalServerError})
	require.NoError(t, f.svc.Logout(ctx))

	assert.Equal(t, 1, f.h.Calls(http.MethodPost, "/auth/logout"))
	assert.Equal(t, enums.SessionUnauthenticated, f.svc.State())
	assert.Equal(t, "/login", f.routes.Current())
	assert.Empty(t, f.token(t))
	assert.Empty(t, f.refreshCookies())
	_, ok := f.svc.CurrentUser(ctx)
	assert.False(t, ok)
	_, ok, err := cache.Get[types.Wishlist](ctx, f.h.Cache, cache.KeyWishlist)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiredTokenRefreshesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.login(t, "refresh@example.com")
	before := f.token(t)

	f.h.Server.ExpireTokens()
	require.NoError(t, f.h.Cache.Invalidate(ctx, cache.KeyAuthUser))

	checked, err := f.svc.CheckAuth(ctx)
	require.NoError(t, err)
	require.NotNil(t, checked)
	assert.Equal(t, user.ID, checked.ID)

	assert.Equal(t, 1, f.h.Calls(http.MethodGet, "/auth/refresh"))
	assert.Equal(t, 2, f.h.Calls(http.MethodGet, "/auth/check-user"))
	assert.NotEqual(t, before, f.token(t))
	assert.Equal(t, enums.SessionAuthenticated, f.svc.State())
}

func TestFailedRefreshExpiresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "expired@example.com")

	f.h.Server.ExpireTokens()
	f.h.Server.Store.RevokeRefreshTokens()
	require.NoError(t, f.h.Cache.Invalidate(ctx, cache.KeyAuthUser))

	user, err := f.svc.CheckAuth(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.Equal(t, enums.SessionUnauthenticated, f.svc.State())
	assert.Equal(t, "/login", f.routes.Current())
	assert.Empty(t, f.token(t))
	assert.Empty(t, f.refreshCookies())

	errs := f.h.Notices.Errors()
	require.NotEmpty(t, errs)
	assert.True(t, pkgerrors.IsCode(errs[len(errs)-1].Err, pkgerrors.CodeTokenExpired))
}

func TestExpiryDuringMutationLeavesNothingCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "first@example.com")

	carts, err := cart.NewService(cart.ServiceParams{Repo: cart.NewRepository(f.h.Client), Runner: f.h.Runner})
	require.NoError(t, err)
	_, err = carts.Add(ctx, cart.AddItemInput{ProductID: "prod-tee", Quantity: 1, Color: "white", Size: "M"})
	require.NoError(t, err)

	f.h.Server.ExpireTokens()
	f.h.Server.Store.RevokeRefreshTokens()
	_, err = carts.Add(ctx, cart.AddItemInput{ProductID: "prod-tee", Quantity: 1, Color: "white", Size: "M"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTokenExpired), "got %v", err)

	assert.Equal(t, enums.SessionUnauthenticated, f.svc.State())
	assert.Empty(t, f.token(t))
	_, ok, err := cache.Get[types.Cart](ctx, f.h.Cache, cache.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)

	var guest GuestState
	f.svc.OnLogin(func(_ context.Context, _ types.User, g GuestState) error {
		guest = g
		return nil
	})
	f.login(t, "second@example.com")
	assert.True(t, guest.Empty())
}

func TestGuestStateEmpty(t *testing.T) {
	assert.True(t, GuestState{}.Empty())
	assert.False(t, GuestState{Wishlist: types.Wishlist{Products: []types.Product{{ID: "p"}}}}.Empty())
}
