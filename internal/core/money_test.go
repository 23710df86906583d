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
		{"1,23", 0, false},
		{"1,000", 0, false},
		{"0", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{" 2.50 ", 250, true},
		{"-1.5", -150, true},
		{"1e2", 10000, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.out, got.Cents, tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}{Money{500}, Money{550}, Money{1234}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":5,"b":5.5,"c":12.34}`, string(b))

	var in struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 12.5}`), &in))
	assert.Equal(t, int64(1250), in.Amount.Cents)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "7.25"}`), &in))
	assert.Equal(t, int64(725), in.Amount.Cents)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "4,50"}`), &in))
	assert.Equal(t, int64(450), in.Amount.Cents)

	for _, bad := range []string{`{"amount": "1,000.50"}`, `{"amount": "1,0,0"}`} {
		err = json.Unmarshal([]byte(bad), &in)
		assert.Equal(t, KindValidation, KindOf(err), bad)
	}

	err = json.Unmarshal([]byte(`{"amount": "seven"}`), &in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}
	assert.Equal(t, Money{Cents: 1250}, a.Add(b))
	assert.Equal(t, Money{Cents: 750}, a.Sub(b))
	assert.Equal(t, "7.50", a.Sub(b).String())
}
