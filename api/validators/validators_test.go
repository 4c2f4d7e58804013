package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type addPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"productId":"p-1","quantity":2}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"productId":"p-1","quantity":1,"extra":true}`, wantErr: true},
		{name: "zero quantity", body: `{"productId":"p-1","quantity":0}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest addPayload
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "p-1", dest.ProductID)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestParseQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500&minPrice=9.50&maxPrice=-1", nil)

	page, err := ParseQueryInt(req, "page", 1, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	_, err = ParseQueryInt(req, "limit", 12, 1, 100)
	assert.Error(t, err)

	min, err := ParseQueryDecimal(req, "minPrice")
	require.NoError(t, err)
	assert.Equal(t, "9.5", min.String())

	_, err = ParseQueryDecimal(req, "maxPrice")
	assert.Error(t, err)

	none, err := ParseQueryDecimal(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, none)
}
