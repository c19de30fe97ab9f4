package concordium

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountAddress_RoundTrip(t *testing.T) {
	var a AccountAddress
	for i := range a {
		a[i] = byte(i * 7)
	}

	encoded := a.String()
	parsed, err := ParseAccountAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, a, parsed)

	// a single changed character breaks the checksum
	mangled := []byte(encoded)
	if mangled[5] == 'a' {
		mangled[5] = 'b'
	} else {
		mangled[5] = 'a'
	}
	_, err = ParseAccountAddress(string(mangled))
	require.ErrorIs(t, err, ErrInvalidAccountAddress)
}

func TestParseContractAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected ContractAddress
		wantErr  bool
	}{
		{input: "<7,0>", expected: ContractAddress{Index: 7}},
		{input: " <8120, 1> ", expected: ContractAddress{Index: 8120, Subindex: 1}},
		{input: "7,0", wantErr: true},
		{input: "<7>", wantErr: true},
		{input: "<a,0>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContractAddress(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidContractAddress)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
			require.Equal(t, got, mustParseContract(t, got.String()))
		})
	}
}

func mustParseContract(t *testing.T, s string) ContractAddress {
	t.Helper()
	c, err := ParseContractAddress(s)
	require.NoError(t, err)
	return c
}

func TestParseAddress(t *testing.T) {
	var acc AccountAddress
	acc[3] = 42

	a, err := ParseAddress(acc.String())
	require.NoError(t, err)
	require.True(t, a.IsAccount())
	require.Equal(t, acc, a.Account)

	c, err := ParseAddress("<12,0>")
	require.NoError(t, err)
	require.False(t, c.IsAccount())
	require.Equal(t, "<12,0>", c.String())
}

func TestHash_JSON(t *testing.T) {
	h, err := ParseHash("0x" + "ab" + "00000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	data, err := json.Marshal(struct{ Ref Hash }{Ref: h})
	require.NoError(t, err)

	var decoded struct{ Ref Hash }
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, h, decoded.Ref)

	_, err = ParseHash("abcd")
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestAddress_JSON(t *testing.T) {
	var acc AccountAddress
	acc[0] = 9

	var decoded Address
	raw := `{"type":"AddressAccount","address":"` + acc.String() + `"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Equal(t, AccountAddr(acc), decoded)

	raw = `{"type":"AddressContract","address":{"index":81,"subindex":0}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Equal(t, ContractAddr(ContractAddress{Index: 81}), decoded)

	data, err := json.Marshal(decoded)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(data))

	require.Error(t, json.Unmarshal([]byte(`{"type":"AddressUnknown","address":1}`), &decoded))
}

func TestCCDAmount_JSON(t *testing.T) {
	var v struct {
		Amount CCDAmount `json:"amount"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"1500000"}`), &v))
	require.Equal(t, CCDAmount(1500000), v.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":42}`), &v))
	require.Equal(t, CCDAmount(42), v.Amount)

	require.Error(t, json.Unmarshal([]byte(`{"amount":"-1"}`), &v))
}

func TestTokenID_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]TokenID{"token_id": {0x01, 0xab}})
	require.NoError(t, err)
	require.JSONEq(t, `{"token_id":"01ab"}`, string(data))

	var decoded map[string]TokenID
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, TokenID{0x01, 0xab}, decoded["token_id"])

	require.Error(t, json.Unmarshal([]byte(`{"token_id":"0g"}`), &decoded))
}
