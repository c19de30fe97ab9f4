// Package concordium holds the chain primitives the listener works with and the
// little endian codec used by contract events.
package concordium

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	HashLength           = 32
	AccountAddressLength = 32

	// accountAddressVersion is the base58check version byte of account addresses.
	accountAddressVersion = 1
)

var (
	ErrInvalidHash            = errors.New("invalid hash")
	ErrInvalidAccountAddress  = errors.New("invalid account address")
	ErrInvalidContractAddress = errors.New("invalid contract address")
)

// Hash is a 32 byte hash: block hashes, transaction hashes and module references.
type Hash [HashLength]byte

// ModuleRef identifies deployed contract code by its content hash.
type ModuleRef = Hash

// ParseHash parses a hex encoded hash.
func ParseHash(s string) (Hash, error) {
	var h Hash

	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	if len(b) != HashLength {
		return h, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, HashLength, len(b))
	}

	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is unset.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	parsed, err := ParseHash(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// AccountAddress is the 32 byte account address, rendered as base58check.
type AccountAddress [AccountAddressLength]byte

// ParseAccountAddress decodes a base58check account address.
func ParseAccountAddress(s string) (AccountAddress, error) {
	var a AccountAddress

	b, version, err := base58.CheckDecode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAccountAddress, err)
	}
	if version != accountAddressVersion {
		return a, fmt.Errorf("%w: unexpected version byte %d", ErrInvalidAccountAddress, version)
	}
	if len(b) != AccountAddressLength {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccountAddress, AccountAddressLength, len(b))
	}

	copy(a[:], b)
	return a, nil
}

func (a AccountAddress) String() string {
	return base58.CheckEncode(a[:], accountAddressVersion)
}

func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountAddress) UnmarshalText(data []byte) error {
	parsed, err := ParseAccountAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ContractAddress identifies a contract instance.
type ContractAddress struct {
	Index    uint64 `json:"index"`
	Subindex uint64 `json:"subindex"`
}

// ParseContractAddress parses the <index,subindex> form.
func ParseContractAddress(s string) (ContractAddress, error) {
	var c ContractAddress

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return c, fmt.Errorf("%w: %q", ErrInvalidContractAddress, s)
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 { //nolint:mnd
		return c, fmt.Errorf("%w: %q", ErrInvalidContractAddress, s)
	}

	index, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidContractAddress, err)
	}
	subindex, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidContractAddress, err)
	}

	return ContractAddress{Index: index, Subindex: subindex}, nil
}

func (c ContractAddress) String() string {
	return fmt.Sprintf("<%d,%d>", c.Index, c.Subindex)
}

// AddressKind tells which variant an Address holds.
type AddressKind uint8

const (
	AddressKindAccount AddressKind = iota
	AddressKindContract
)

// Address is either an account or a contract.
type Address struct {
	Kind     AddressKind
	Account  AccountAddress
	Contract ContractAddress
}

// AccountAddr wraps an account address.
func AccountAddr(a AccountAddress) Address {
	return Address{Kind: AddressKindAccount, Account: a}
}

// ContractAddr wraps a contract address.
func ContractAddr(c ContractAddress) Address {
	return Address{Kind: AddressKindContract, Contract: c}
}

// ParseAddress accepts both the account and the <index,subindex> notation.
func ParseAddress(s string) (Address, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		c, err := ParseContractAddress(s)
		if err != nil {
			return Address{}, err
		}
		return ContractAddr(c), nil
	}

	a, err := ParseAccountAddress(strings.TrimSpace(s))
	if err != nil {
		return Address{}, err
	}
	return AccountAddr(a), nil
}

// IsAccount reports whether the address is an account.
func (a Address) IsAccount() bool {
	return a.Kind == AddressKindAccount
}

func (a Address) String() string {
	if a.Kind == AddressKindContract {
		return a.Contract.String()
	}
	return a.Account.String()
}

// TokenID is a CIS2 token identifier; up to 255 bytes.
type TokenID []byte

// ParseTokenID parses the hex form of a token id. The empty string is the empty id.
func ParseTokenID(s string) (TokenID, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid token id: %w", err)
	}
	return TokenID(b), nil
}

func (t TokenID) String() string {
	return hex.EncodeToString(t)
}

func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TokenID) UnmarshalText(data []byte) error {
	parsed, err := ParseTokenID(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Rate is an exact numerator/denominator multiplier.
type Rate struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// CCDAmount is an amount of the native currency in micro CCD.
type CCDAmount uint64
