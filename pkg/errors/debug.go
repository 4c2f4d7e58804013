package errors

import (
	"errors"
	"fmt"
)

// ErrorDump is the loggable view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Kind       Kind     `json:"kind,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Kind = typed.Kind()
		d.Retryable = MetadataFor(d.Code).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields flattens the dump into log fields. Untyped errors only carry the
// message and chain.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	if d.Code != "" {
		fields["error_code"] = string(d.Code)
		fields["error_kind"] = string(d.Kind)
		fields["retryable"] = d.Retryable
	}
	return fields
}
