package restclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// tokenExpiredMarkers are the spellings the backend uses for an expired access token.
var tokenExpiredMarkers = []string{"tokenexpired", "token_expired", "jwt expired", "token expired"}

// decodeSuccess unpacks a {"data": ...} envelope, or the bare body when there is none.
func decodeSuccess(body []byte, out any) error {
	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		if data, ok := probe["data"]; ok {
			return json.Unmarshal(data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

// decodeError maps an error response onto a typed error. Bodies come as
// {"error":{code,message,details}}, {"error":"message"} or flat {code,message}.
func decodeError(status int, body []byte) *pkgerrors.Error {
	apiErr := parseAPIError(body)

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = http.StatusText(status)
	}

	code := pkgerrors.Code(strings.ToUpper(strings.TrimSpace(apiErr.Code)))
	switch {
	case status == http.StatusUnauthorized && (isTokenExpired(apiErr.Code) || isTokenExpired(apiErr.Message)):
		code = pkgerrors.CodeTokenExpired
	case !pkgerrors.IsKnown(code):
		code = pkgerrors.FromStatus(status)
	}

	typed := pkgerrors.New(code, message)
	if apiErr.Details != nil {
		typed = typed.WithDetails(apiErr.Details)
	}
	return typed
}

func parseAPIError(body []byte) types.APIError {
	var out types.APIError
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		out.Message = string(trimmed)
		return out
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return out
	}
	if raw, ok := probe["error"]; ok {
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
		var message string
		if err := json.Unmarshal(raw, &message); err == nil {
			out.Message = message
		}
	}
	// Flat bodies; "error" may also hold a bare code string next to "message".
	var flat struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	}
	if err := json.Unmarshal(trimmed, &flat); err == nil {
		if flat.Code != "" {
			out.Code = flat.Code
		} else if out.Code == "" && out.Message != "" && flat.Message != "" {
			out.Code = out.Message
		}
		if flat.Message != "" {
			out.Message = flat.Message
		}
		if flat.Details != nil {
			out.Details = flat.Details
		}
	}
	return out
}

func isTokenExpired(value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return false
	}
	for _, marker := range tokenExpiredMarkers {
		if normalized == marker {
			return true
		}
	}
	return false
}
