package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront/api/backend"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

const refreshCookieTTL = 7 * 24 * time.Hour

func AuthRegister(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload backend.RegisterInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := store.Register(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		setRefreshCookie(w, sess.RefreshToken, refreshCookieTTL)
		responses.WriteSuccessStatus(w, http.StatusCreated, types.AuthResponse{AccessToken: sess.AccessToken, User: sess.User})
	}
}

func AuthLogin(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload backend.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := store.Login(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		setRefreshCookie(w, sess.RefreshToken, refreshCookieTTL)
		responses.WriteSuccess(w, types.AuthResponse{AccessToken: sess.AccessToken, User: sess.User})
	}
}

// AuthRefresh answers bare, and in the older error shape, as the real
// refresh endpoint does.
func AuthRefresh(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			responses.WriteLegacyError(w, http.StatusUnauthorized, "refresh token missing")
			return
		}
		token, err := store.Refresh(cookie.Value)
		if err != nil {
			if logg != nil {
				logg.Warn(r.Context(), "auth.refresh_rejected")
			}
			responses.WriteLegacyError(w, http.StatusUnauthorized, "refresh token invalid")
			return
		}
		responses.WriteBare(w, http.StatusOK, types.RefreshResponse{AccessToken: token})
	}
}

func AuthLogout(store *backend.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(RefreshCookieName); err == nil {
			store.Logout(cookie.Value)
		}
		setRefreshCookie(w, "", -1)
		responses.WriteSuccess(w, map[string]string{"message": "logged out"})
	}
}

func AuthCheckUser(store *backend.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := store.User(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func setRefreshCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}
