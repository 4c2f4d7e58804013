package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeTokenExpired Code = "TOKEN_EXPIRED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeBusinessRule Code = "BUSINESS_RULE"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeTimeout      Code = "TIMEOUT"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Kind groups codes into the categories surfaced to the user.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindBusiness   Kind = "business"
	KindServer     Kind = "server"
)

type Metadata struct {
	HTTPStatus     int
	Kind           Kind
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Kind:           KindValidation,
		PublicMessage:  "please check the highlighted fields",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		Kind:          KindAuth,
		PublicMessage: "please sign in to continue",
	},
	CodeTokenExpired: {
		HTTPStatus:    http.StatusUnauthorized,
		Kind:          KindAuth,
		PublicMessage: "your session has expired, please sign in again",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		Kind:          KindAuth,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		Kind:          KindBusiness,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		Kind:          KindBusiness,
		PublicMessage: "conflict detected",
	},
	CodeBusinessRule: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		Kind:           KindBusiness,
		PublicMessage:  "request could not be completed",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Kind:          KindNetwork,
		Retryable:     true,
		PublicMessage: "too many requests, try again shortly",
	},
	CodeNetwork: {
		HTTPStatus:    http.StatusBadGateway,
		Kind:          KindNetwork,
		Retryable:     true,
		PublicMessage: "network error, check your connection",
	},
	CodeTimeout: {
		HTTPStatus:    http.StatusGatewayTimeout,
		Kind:          KindNetwork,
		Retryable:     true,
		PublicMessage: "the request timed out",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Kind:          KindServer,
		Retryable:     true,
		PublicMessage: "something went wrong",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Kind:           KindServer,
		Retryable:      true,
		PublicMessage:  "service unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsKnown reports whether code is one of the codes above.
func IsKnown(code Code) bool {
	_, ok := metadataByCode[code]
	return ok
}

// FromStatus maps a backend HTTP status onto the closest code.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusUnprocessableEntity:
		return CodeBusinessRule
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CodeTimeout
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		return CodeDependency
	case status >= 400 && status < 500:
		return CodeBusinessRule
	default:
		return CodeInternal
	}
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Kind() Kind {
	return MetadataFor(e.Code()).Kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the first typed error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// UserMessage picks the text shown to the user for err. Messages are passed
// through for codes whose cause is meaningful to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	meta := MetadataFor(typed.Code())
	switch typed.Code() {
	case CodeValidation, CodeBusinessRule, CodeNotFound, CodeConflict, CodeForbidden:
		if m := typed.Message(); m != "" {
			return m
		}
	}
	return meta.PublicMessage
}
