package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusProgression(t *testing.T) {
	cases := []struct {
		status    OrderStatus
		step      int
		cancel    bool
		validated bool
	}{
		{OrderStatusPending, 0, true, true},
		{OrderStatusProcessing, 1, false, true},
		{OrderStatusShipped, 2, false, true},
		{OrderStatusDelivered, 3, false, true},
		{OrderStatusCancelled, -1, false, true},
		{OrderStatus("Lost"), -1, false, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.step, tc.status.Step())
			assert.Equal(t, tc.cancel, tc.status.CanCancel())
			assert.Equal(t, tc.validated, tc.status.IsValid())
		})
	}

	steps := OrderProgression()
	steps[0] = OrderStatusCancelled
	assert.Equal(t, OrderStatusPending, OrderProgression()[0])
}

func TestParseEnums(t *testing.T) {
	status, err := ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)
	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)

	method, err := ParsePaymentMethod(" cod ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCOD, method)
	_, err = ParsePaymentMethod("barter")
	assert.Error(t, err)
}
