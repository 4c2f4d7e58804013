package restclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/tokenstore"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, tokens tokenstore.Store, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("http://shop.test/api/v1/", tokens, opts...)
	require.NoError(t, err)
	return client
}

func TestDoSendsHeadersAndDecodesEnvelope(t *testing.T) {
	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "tok-1"))

	var captured *http.Request
	var payload map[string]any
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &payload))
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"id":"c1","totalItems":2}}`), nil
	}, tokens, WithUserAgent("test-agent"))

	var out struct {
		ID         string `json:"id"`
		TotalItems int    `json:"totalItems"`
	}
	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/cart/add",
		Query:  url.Values{"expand": []string{"product"}},
		Body:   map[string]any{"productId": "p1", "quantity": 2},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "http://shop.test/api/v1/cart/add?expand=product", captured.URL.String())
	assert.Equal(t, "Bearer tok-1", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "test-agent", captured.Header.Get("User-Agent"))
	assert.NotEmpty(t, captured.Header.Get(requestIDHeader))
	assert.Equal(t, "p1", payload["productId"])
	assert.Equal(t, "c1", out.ID)
	assert.Equal(t, 2, out.TotalItems)
}

func TestDoDecodesBareBodyWithoutToken(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Empty(t, req.Header.Get("Content-Type"))
		return jsonResponse(http.StatusOK, `[{"id":"b1"},{"id":"b2"}]`), nil
	}, nil)

	var out []struct {
		ID string `json:"id"`
	}
	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodGet, Path: "brands"}, &out))
	assert.Len(t, out, 2)

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodGet, Path: "brands"}, nil))
}

func TestDecodeError(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		code    pkgerrors.Code
		message string
	}{
		{"nested envelope", http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"product not found"}}`, pkgerrors.CodeNotFound, "product not found"},
		{"flat body", http.StatusBadRequest, `{"code":"VALIDATION_ERROR","message":"quantity must be at least 1","details":{"quantity":"min"}}`, pkgerrors.CodeValidation, "quantity must be at least 1"},
		{"expired by code", http.StatusUnauthorized, `{"error":{"code":"TokenExpired","message":"jwt expired"}}`, pkgerrors.CodeTokenExpired, "jwt expired"},
		{"expired by message", http.StatusUnauthorized, `{"message":"TokenExpired"}`, pkgerrors.CodeTokenExpired, "TokenExpired"},
		{"expired as error string", http.StatusUnauthorized, `{"error":"TokenExpired","message":"access token expired"}`, pkgerrors.CodeTokenExpired, "access token expired"},
		{"plain unauthorized", http.StatusUnauthorized, `{"message":"invalid token"}`, pkgerrors.CodeUnauthorized, "invalid token"},
		{"expired marker on other status", http.StatusForbidden, `{"message":"TokenExpired"}`, pkgerrors.CodeForbidden, "TokenExpired"},
		{"unknown code falls back to status", http.StatusUnprocessableEntity, `{"code":"CART_EMPTY","message":"cart empty"}`, pkgerrors.CodeBusinessRule, "cart empty"},
		{"non json", http.StatusBadGateway, `upstream down`, pkgerrors.CodeDependency, "upstream down"},
		{"empty body", http.StatusInternalServerError, ``, pkgerrors.CodeInternal, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeError(tc.status, []byte(tc.body))
			assert.Equal(t, tc.code, err.Code())
			assert.Equal(t, tc.message, err.Message())
		})
	}

	withDetails := decodeError(http.StatusBadRequest, []byte(`{"error":{"code":"VALIDATION_ERROR","message":"bad","details":{"email":"required"}}}`))
	assert.Equal(t, map[string]any{"email": "required"}, withDetails.Details())
}

func TestTransportErrors(t *testing.T) {
	t.Run("network", func(t *testing.T) {
		client := newTestClient(t, func(*http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		}, nil)
		err := client.Do(context.Background(), Request{Path: "/products"}, nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNetwork), "got %v", err)
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}, nil, WithTimeout(20*time.Millisecond))
		err := client.Do(context.Background(), Request{Path: "/products"}, nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTimeout), "got %v", err)
	})
}

// fakeAuthServer accepts only the current token and mints a new one on refresh.
type fakeAuthServer struct {
	mu            sync.Mutex
	validToken    string
	nextToken     string
	refreshStatus int
	refreshDelay  time.Duration
	rejectAll     bool
	refreshCalls  atomic.Int32
	protected     atomic.Int32
	seenTokens    []string
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		time.Sleep(f.refreshDelay)
		if f.refreshStatus != 0 {
			w.WriteHeader(f.refreshStatus)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"refresh token invalid"}}`))
			return
		}
		f.mu.Lock()
		if !f.rejectAll {
			f.validToken = f.nextToken
		}
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"accessToken":"` + f.nextToken + `"}`))
	})
	mux.HandleFunc("GET /api/v1/orders/my-orders", func(w http.ResponseWriter, r *http.Request) {
		f.protected.Add(1)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		f.seenTokens = append(f.seenTokens, token)
		valid := !f.rejectAll && token == f.validToken
		f.mu.Unlock()
		if !valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"TokenExpired","message":"jwt expired"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"o1"}]}`))
	})
	return mux
}

type orderRef struct {
	ID string `json:"id"`
}

func TestExpiredTokenRefreshedOnceAndReplayed(t *testing.T) {
	fake := &fakeAuthServer{validToken: "fresh", nextToken: "fresh"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "stale"))

	var expired atomic.Int32
	client, err := NewClient(srv.URL+"/api/v1", tokens, WithOnSessionExpired(func(context.Context) { expired.Add(1) }))
	require.NoError(t, err)

	var out []orderRef
	require.NoError(t, client.Do(context.Background(), Request{Path: "/orders/my-orders"}, &out))

	assert.Equal(t, []orderRef{{ID: "o1"}}, out)
	assert.Equal(t, int32(1), fake.refreshCalls.Load())
	assert.Equal(t, []string{"stale", "fresh"}, fake.seenTokens)
	assert.Equal(t, int32(0), expired.Load())

	stored, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored)
}

func TestRefreshFailureClearsTokenAndExpiresSession(t *testing.T) {
	fake := &fakeAuthServer{validToken: "fresh", refreshStatus: http.StatusUnauthorized}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "stale"))

	client, err := NewClient(srv.URL+"/api/v1", tokens)
	require.NoError(t, err)
	var expired atomic.Int32
	client.SetOnSessionExpired(func(context.Context) { expired.Add(1) })

	err = client.Do(context.Background(), Request{Path: "/orders/my-orders"}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTokenExpired), "got %v", err)
	assert.Equal(t, int32(1), fake.refreshCalls.Load())
	assert.Equal(t, int32(1), fake.protected.Load())
	assert.Equal(t, int32(1), expired.Load())

	stored, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRetryIsCappedAtOne(t *testing.T) {
	// The refresh hands out a token the protected endpoint still rejects.
	fake := &fakeAuthServer{nextToken: "also-expired", rejectAll: true}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "stale"))
	var expired atomic.Int32
	client, err := NewClient(srv.URL+"/api/v1", tokens, WithOnSessionExpired(func(context.Context) { expired.Add(1) }))
	require.NoError(t, err)

	err = client.Do(context.Background(), Request{Path: "/orders/my-orders"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTokenExpired))
	assert.Equal(t, int32(1), fake.refreshCalls.Load())
	assert.Equal(t, int32(2), fake.protected.Load())
	assert.Equal(t, int32(1), expired.Load())
}

func TestConcurrentExpiriesShareOneRefresh(t *testing.T) {
	fake := &fakeAuthServer{validToken: "fresh", nextToken: "fresh", refreshDelay: 30 * time.Millisecond}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "stale"))
	client, err := NewClient(srv.URL+"/api/v1", tokens)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Do(context.Background(), Request{Path: "/orders/my-orders"}, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.refreshCalls.Load())
}

func TestRawDoesNotRefresh(t *testing.T) {
	fake := &fakeAuthServer{validToken: "fresh", nextToken: "fresh"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.SetToken(context.Background(), "stale"))
	client, err := NewClient(srv.URL+"/api/v1", tokens)
	require.NoError(t, err)

	err = client.Raw(context.Background(), Request{Path: "/orders/my-orders"}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTokenExpired))
	assert.Equal(t, int32(0), fake.refreshCalls.Load())

	stored, _ := tokens.Token(context.Background())
	assert.Equal(t, "stale", stored)
}

func TestRefreshSendsCookieFromJar(t *testing.T) {
	var gotCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r-1", Path: "/", HttpOnly: true})
		_, _ = w.Write([]byte(`{"data":{"accessToken":"stale"}}`))
	})
	mux.HandleFunc("GET /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("refreshToken"); err == nil {
			gotCookie = c.Value
		}
		_, _ = w.Write([]byte(`{"accessToken":"fresh"}`))
	})
	mux.HandleFunc("GET /api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"TokenExpired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	origin, err := url.Parse(srv.URL + "/api/v1")
	require.NoError(t, err)
	tokens := tokenstore.NewMemoryStore()
	jar, err := tokenstore.NewJar(context.Background(), tokens, origin, nil, "refreshToken")
	require.NoError(t, err)

	client, err := NewClient(origin.String(), tokens, WithCookieJar(jar))
	require.NoError(t, err)

	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, client.Raw(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login"}, &login))
	require.NoError(t, tokens.SetToken(context.Background(), login.AccessToken))

	require.NoError(t, client.Do(context.Background(), Request{Path: "/cart"}, nil))
	assert.Equal(t, "r-1", gotCookie)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", nil)
	assert.ErrorIs(t, err, errBaseURLRequired)
}
