// Package apitest runs the dev backend on an httptest server for client
// tests.
package apitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/api/backend"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	// DefaultPassword is the password of accounts created by Register.
	DefaultPassword = "secret123"
	testSecret      = "apitest-secret"
)

// Server is a running dev backend plus handles to steer it.
type Server struct {
	*httptest.Server
	Store  *backend.Store
	Faults *middleware.Faults
}

// New starts a backend with the demo catalog and stops it when t ends.
func New(t testing.TB) *Server {
	t.Helper()
	store := backend.NewStore(backend.Options{
		Secret:    testSecret,
		AccessTTL: 10 * time.Minute,
	})
	faults := middleware.NewFaults()
	srv := httptest.NewServer(routes.NewRouter(routes.Options{Store: store, Faults: faults}))
	t.Cleanup(func() {
		faults.Reset()
		srv.Close()
	})
	return &Server{Server: srv, Store: store, Faults: faults}
}

// Register creates an account and returns its user and a valid access token.
func (s *Server) Register(t testing.TB, fullName, email string) (types.User, string) {
	t.Helper()
	sess, err := s.Store.Register(backend.RegisterInput{
		FullName:        fullName,
		Email:           email,
		Password:        DefaultPassword,
		ConfirmPassword: DefaultPassword,
	})
	require.NoError(t, err)
	return sess.User, sess.AccessToken
}

// ExpireTokens moves the backend clock past the access token lifetime.
func (s *Server) ExpireTokens() {
	s.Store.Advance(11 * time.Minute)
}
