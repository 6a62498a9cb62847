package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMajorRounds(t *testing.T) {
	tests := []struct {
		in   float64
		want Amount
	}{
		{100, 10000},
		{99.99, 9999},
		{0.005, 1},
		{12.344, 1234},
		{0, 0},
	}
	for _, tt := range tests {
		got, err := FromMajor(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "FromMajor(%v)", tt.in)
	}

	_, err := FromMajor(math.NaN())
	assert.Error(t, err)

	_, err = FromMajor(1e17)
	assert.Error(t, err)
}

func TestAmountJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{Total: 30000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":300.00}`, string(raw))
	assert.Contains(t, string(raw), "300.00")

	var in struct {
		Price Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":120.5}`), &in))
	assert.Equal(t, Amount(12050), in.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"abc"}`), &in))
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0.07", Amount(7).String())
	assert.Equal(t, "-1.50", Amount(-150).String())
}

func TestAmountTimes(t *testing.T) {
	got, err := Amount(10000).Times(3)
	require.NoError(t, err)
	assert.Equal(t, Amount(30000), got)

	got, err = Amount(10000).Times(0)
	require.NoError(t, err)
	assert.Equal(t, Amount(0), got)

	got, err = Amount(-150).Times(2)
	require.NoError(t, err)
	assert.Equal(t, Amount(-300), got)

	_, err = Amount(9e18).Times(2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Amount(math.MinInt64 / 2).Times(3)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err = Amount(math.MaxInt64).Times(1)
	require.NoError(t, err)
	assert.Equal(t, Amount(math.MaxInt64), got)

	_, err = Amount(1).Times(-1)
	assert.Error(t, err)
}
