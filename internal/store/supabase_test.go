package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet/internal/core"
)

// The hosted backend serves amounts as JSON numerics; the cents conversion
// must not pick up binary float error on common currency values.
func TestCentsConversion(t *testing.T) {
	cases := []struct {
		amount float64
		cents  int64
	}{
		{0, 0},
		{0.01, 1},
		{0.1, 10},
		{19.99, 1999},
		{80, 8000},
		{1234.56, 123456},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.cents, toCents(tc.amount).Cents, "toCents(%v)", tc.amount)
		assert.Equal(t, tc.amount, fromCents(core.Money{Cents: tc.cents}), "fromCents(%d)", tc.cents)
	}
}
