package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
)

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}
