package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"100.000,50", 10000050, true},
		{"100,000.50", 10000050, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			require.NoError(t, err, "%q", tc.in)
			assert.Equal(t, tc.out, got.Cents, "%q", tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, "%q", tc.in)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 200}
	assert.Equal(t, Money{Cents: 700}, a.Add(b))
	assert.Equal(t, Money{Cents: 300}, a.Sub(b))
	assert.Equal(t, b, a.Min(b))
	assert.Equal(t, Money{Cents: -500}, a.Neg())
	assert.True(t, Money{Cents: 1}.Settled())
	assert.True(t, Money{Cents: -40}.Settled())
	assert.False(t, Money{Cents: 2}.Settled())
	assert.Equal(t, "1234.50", Money{Cents: 123450}.String())
}

func TestMoneyJSON(t *testing.T) {
	var got struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 100000, "b": "12.34"}`), &got))
	assert.Equal(t, int64(10000000), got.A.Cents)
	assert.Equal(t, int64(1234), got.B.Cents)

	out, err := json.Marshal(Money{Cents: 21000000})
	require.NoError(t, err)
	assert.JSONEq(t, `210000.00`, string(out))
}
