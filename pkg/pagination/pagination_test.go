package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{"defaults", Params{}, Params{Page: 1, Limit: DefaultLimit}},
		{"caps limit", Params{Page: 3, Limit: 1000}, Params{Page: 3, Limit: MaxLimit}},
		{"negative page", Params{Page: -2, Limit: 5}, Params{Page: 1, Limit: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestOffsetAndTotalPages(t *testing.T) {
	assert.Equal(t, 0, Params{}.Offset())
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}
