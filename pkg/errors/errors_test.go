package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		kind      Kind
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, kind: KindValidation, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, kind: KindAuth},
		{code: CodeTokenExpired, status: http.StatusUnauthorized, kind: KindAuth},
		{code: CodeForbidden, status: http.StatusForbidden, kind: KindAuth},
		{code: CodeNotFound, status: http.StatusNotFound, kind: KindBusiness},
		{code: CodeBusinessRule, status: http.StatusUnprocessableEntity, kind: KindBusiness, detailsOK: true},
		{code: CodeNetwork, status: http.StatusBadGateway, kind: KindNetwork, retryable: true},
		{code: CodeTimeout, status: http.StatusGatewayTimeout, kind: KindNetwork, retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, kind: KindServer, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, kind: KindServer, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.Kind != tt.kind {
			t.Fatalf("code %s expected kind %s got %s", tt.code, tt.kind, meta.Kind)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
	if IsKnown("SOMETHING_UNKNOWN") || !IsKnown(CodeTokenExpired) {
		t.Fatalf("IsKnown disagrees with the metadata table")
	}
}

func TestFromStatus(t *testing.T) {
	cases := map[int]Code{
		http.StatusBadRequest:          CodeValidation,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusForbidden:           CodeForbidden,
		http.StatusNotFound:            CodeNotFound,
		http.StatusConflict:            CodeConflict,
		http.StatusUnprocessableEntity: CodeBusinessRule,
		http.StatusTooManyRequests:     CodeRateLimit,
		http.StatusGatewayTimeout:      CodeTimeout,
		http.StatusServiceUnavailable:  CodeDependency,
		http.StatusTeapot:              CodeBusinessRule,
		http.StatusInternalServerError: CodeInternal,
	}
	for status, want := range cases {
		if got := FromStatus(status); got != want {
			t.Fatalf("status %d: expected %s got %s", status, want, got)
		}
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]string{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
	if !IsCode(err, CodeForbidden) {
		t.Fatalf("IsCode should see wrapped code")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(CodeBusinessRule, "select color and size")); got != "select color and size" {
		t.Fatalf("business message should pass through, got %q", got)
	}
	if got := UserMessage(New(CodeInternal, "db exploded")); got != "something went wrong" {
		t.Fatalf("internal message should be masked, got %q", got)
	}
	if got := UserMessage(stdErrors.New("raw")); got != "something went wrong" {
		t.Fatalf("untyped errors should be masked, got %q", got)
	}
	if UserMessage(nil) != "" {
		t.Fatalf("nil error has no message")
	}
}

func TestDumpWalksChain(t *testing.T) {
	err := Wrap(CodeNetwork, stdErrors.New("dial tcp"), "execute request")
	dump := Dump(err)
	if dump.Code != CodeNetwork || dump.Kind != KindNetwork {
		t.Fatalf("unexpected dump %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if !dump.Retryable {
		t.Fatalf("network errors are retryable")
	}

	fields := dump.Fields()
	if fields["error_code"] != "NETWORK_ERROR" || fields["error_kind"] != "network" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["error_chain"]; !ok {
		t.Fatalf("wrapped errors log their chain")
	}
}

func TestDumpFieldsForPlainError(t *testing.T) {
	fields := Dump(stdErrors.New("boom")).Fields()
	if len(fields) != 1 || fields["error"] != "boom" {
		t.Fatalf("plain errors only log their message, got %v", fields)
	}
}
