package concordium

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestReader_TokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
		wantErr  bool
	}{
		{name: "zero", input: []byte{0x00}, expected: "0"},
		{name: "single byte", input: []byte{0x7f}, expected: "127"},
		{name: "two bytes", input: []byte{0xac, 0x02}, expected: "300"},
		{
			name:     "above u64",
			input:    []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02},
			expected: "18446744073709551616",
		},
		{name: "truncated", input: []byte{0x80}, wantErr: true},
		{name: "empty", input: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)
			amount := r.TokenAmount()
			if tt.wantErr {
				require.ErrorIs(t, r.Finish(), ErrMalformed)
				return
			}
			require.NoError(t, r.Finish())
			require.Equal(t, tt.expected, amount.String())
		})
	}
}

func TestReader_TokenAmountTooLong(t *testing.T) {
	input := make([]byte, maxTokenAmountBytes+1)
	for i := range input {
		input[i] = 0xff
	}

	r := NewReader(input)
	r.TokenAmount()
	require.ErrorIs(t, r.Err(), ErrMalformed)
}

func TestWriterReader_Event(t *testing.T) {
	var owner AccountAddress
	owner[0], owner[31] = 7, 9
	contract := ContractAddress{Index: 4431, Subindex: 0}
	hash := Hash{1, 2, 3}
	amount := decimal.RequireFromString("340282366920938463463374607431768211455")

	payload := NewWriter().
		U8(254).
		TokenID(TokenID{0x01, 0x00}).
		TokenAmount(amount).
		Address(AccountAddr(owner)).
		Address(ContractAddr(contract)).
		Text("ipfs://metadata").
		OptionalHash(&hash).
		OptionalHash(nil).
		Rate(Rate{Numerator: 1, Denominator: 1000}).
		Bytes16([]byte("reward-1")).
		Bool(true).
		Bytes()

	r := NewReader(payload)
	require.Equal(t, uint8(254), r.U8())
	require.Equal(t, "0100", r.TokenID().String())
	require.True(t, amount.Equal(r.TokenAmount()))
	require.Equal(t, AccountAddr(owner), r.Address())
	require.Equal(t, ContractAddr(contract), r.Address())
	require.Equal(t, "ipfs://metadata", r.Text())
	require.Equal(t, &hash, r.OptionalHash())
	require.Nil(t, r.OptionalHash())
	require.Equal(t, Rate{Numerator: 1, Denominator: 1000}, r.Rate())
	require.Equal(t, []byte("reward-1"), r.Bytes())
	require.True(t, r.Bool())
	require.NoError(t, r.Finish())
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader)
		data []byte
	}{
		{name: "invalid address tag", data: []byte{2}, read: func(r *Reader) { r.Address() }},
		{name: "truncated account", data: []byte{0, 1, 2}, read: func(r *Reader) { r.Address() }},
		{name: "invalid option tag", data: []byte{5}, read: func(r *Reader) { r.OptionalHash() }},
		{name: "invalid bool", data: []byte{3}, read: func(r *Reader) { r.Bool() }},
		{name: "zero denominator", data: make([]byte, 16), read: func(r *Reader) { r.Rate() }},
		{name: "invalid utf8", data: []byte{1, 0, 0xff}, read: func(r *Reader) { r.Text() }},
		{name: "trailing bytes", data: []byte{1, 2}, read: func(r *Reader) { r.U8() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			tt.read(r)
			require.ErrorIs(t, r.Finish(), ErrMalformed)
		})
	}
}
