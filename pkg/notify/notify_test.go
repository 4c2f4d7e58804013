package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		name    string
		message string
		err     error
		want    string
	}{
		{"business error wins", "could not add to cart", pkgerrors.New(pkgerrors.CodeBusinessRule, "select color and size"), "select color and size"},
		{"validation error wins", "", pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1"), "quantity must be at least 1"},
		{"network uses caller text", "could not add to cart", pkgerrors.New(pkgerrors.CodeNetwork, "dial tcp"), "could not add to cart"},
		{"network falls back to public text", "", pkgerrors.New(pkgerrors.CodeNetwork, "dial tcp"), "network error, check your connection"},
		{"untyped", "", errors.New("boom"), "something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.message, tc.err))
		})
	}
}

func TestLogNotifierWritesLines(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(&buf, nil)
	n.Success(context.Background(), "added to cart")
	n.Success(context.Background(), "")
	n.Error(context.Background(), "could not remove item", pkgerrors.New(pkgerrors.CodeInternal, "db down"))

	assert.Equal(t, "✓ added to cart\n✗ could not remove item\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Success(context.Background(), "ok")
	r.Error(context.Background(), "failed", pkgerrors.New(pkgerrors.CodeTimeout, "slow"))

	assert.Len(t, r.Notices(), 2)
	errs := r.Errors()
	assert.Len(t, errs, 1)
	assert.Equal(t, "failed", errs[0].Message)
}
