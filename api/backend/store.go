// Package backend is an in-memory storefront backend. The dev server and the
// client test suites run against it.
package backend

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

const (
	defaultAccessTTL = 15 * time.Minute
	defaultRole      = "customer"
)

// Options configures a Store.
type Options struct {
	Secret    string
	AccessTTL time.Duration
	// Now seeds the store clock. Defaults to time.Now.
	Now func() time.Time
	// EmptyCatalog skips the demo products, categories and brands.
	EmptyCatalog bool
}

type account struct {
	user         types.User
	passwordHash string
}

// Session is what login and register hand back.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         types.User
}

// Store holds every shopper's state. It is safe for concurrent use.
type Store struct {
	secret    string
	accessTTL time.Duration
	now       func() time.Time

	mu     sync.Mutex
	offset time.Duration

	accounts map[string]*account // by email
	byID     map[string]*account
	refresh  map[string]string // refresh token -> user id

	products   []types.Product
	categories []types.Category
	brands     []types.Brand

	carts     map[string]*types.Cart
	wishlists map[string][]string
	orders    map[string][]types.Order
	addresses map[string][]types.Address
}

func NewStore(opts Options) *Store {
	if opts.Secret == "" {
		opts.Secret = uuid.NewString()
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = defaultAccessTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		secret:    opts.Secret,
		accessTTL: opts.AccessTTL,
		now:       opts.Now,
		accounts:  make(map[string]*account),
		byID:      make(map[string]*account),
		refresh:   make(map[string]string),
		carts:     make(map[string]*types.Cart),
		wishlists: make(map[string][]string),
		orders:    make(map[string][]types.Order),
		addresses: make(map[string][]types.Address),
	}
	if !opts.EmptyCatalog {
		s.products, s.categories, s.brands = demoCatalog()
	}
	return s
}

// Secret is the HS256 key access tokens are signed with.
func (s *Store) Secret() string {
	return s.secret
}

// Now is the store clock.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock()
}

// Advance moves the store clock forward, expiring tokens issued before.
func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += d
}

func (s *Store) clock() time.Time {
	return s.now().Add(s.offset)
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Store) Register(in RegisterInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := hashPassword(in.Password)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return Session{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	acc := &account{
		user: types.User{
			ID:       uuid.NewString(),
			FullName: strings.TrimSpace(in.FullName),
			Email:    email,
			Phone:    strings.TrimSpace(in.Phone),
			Role:     defaultRole,
		},
		passwordHash: hash,
	}
	s.accounts[email] = acc
	s.byID[acc.user.ID] = acc
	return s.issueLocked(acc.user)
}

func (s *Store) Login(in LoginInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	match, err := verifyPassword(in.Password, acc.passwordHash)
	if err != nil || !match {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	return s.issueLocked(acc.user)
}

// Refresh mints a new access token for a known refresh token.
func (s *Store) Refresh(refreshToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.refresh[refreshToken]
	if !ok || refreshToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token invalid")
	}
	acc, ok := s.byID[userID]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token invalid")
	}
	return s.mintLocked(acc.user)
}

// Logout forgets refreshToken. Unknown tokens are ignored.
func (s *Store) Logout(refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, refreshToken)
}

// RevokeRefreshTokens forgets every refresh token so the next refresh fails.
func (s *Store) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

// IssueToken mints an access token for a registered email.
func (s *Store) IssueToken(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.mintLocked(acc.user)
}

func (s *Store) User(userID string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[userID]
	if !ok {
		return types.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
	}
	return acc.user, nil
}

// ProfileInput is the body of PUT /users/profile.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func (s *Store) UpdateProfile(userID string, in ProfileInput) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[userID]
	if !ok {
		return types.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
	}
	acc.user.FullName = strings.TrimSpace(in.FullName)
	if in.Phone != "" {
		acc.user.Phone = strings.TrimSpace(in.Phone)
	}
	if in.Avatar != "" {
		acc.user.Avatar = strings.TrimSpace(in.Avatar)
	}
	return acc.user, nil
}

func (s *Store) issueLocked(user types.User) (Session, error) {
	access, err := s.mintLocked(user)
	if err != nil {
		return Session{}, err
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = user.ID
	return Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *Store) mintLocked(user types.User) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.secret, s.accessTTL, s.clock(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}
