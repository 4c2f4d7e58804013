package types

import "encoding/json"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// RawSuccessEnvelope defers decoding of data until the caller knows its type.
type RawSuccessEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// RefreshResponse is returned by the refresh endpoint.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}
