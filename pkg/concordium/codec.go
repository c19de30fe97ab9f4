package concordium

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// maxTokenAmountBytes bounds the LEB128 encoding of a CIS2 token amount (2^256 - 1).
const maxTokenAmountBytes = 37

const (
	optionNone = 0
	optionSome = 1
)

// ErrMalformed is returned for any event payload that cannot be decoded.
var ErrMalformed = errors.New("malformed event data")

// Reader decodes the little endian serialization contracts use for their events.
// The first decoding error sticks: subsequent reads return zero values and Err reports it.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader returns a reader over the given payload.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Err returns the first decoding error.
func (r *Reader) Err() error {
	return r.err
}

// Finish returns the decoding error, or an error if unread bytes remain.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.buf) {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(r.buf)-r.pos)
	}
	return nil
}

func (r *Reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s at offset %d", ErrMalformed, fmt.Sprintf(format, args...), r.pos)
	}
}

// Fail records a decoding error for a value only the caller can validate, such as an enum tag.
func (r *Reader) Fail(format string, args ...any) {
	r.fail(format, args...)
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.pos < n {
		r.fail("need %d bytes, %d left", n, len(r.buf)-r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8) //nolint:mnd
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Bool reads a single byte that must be 0 or 1.
func (r *Reader) Bool() bool {
	switch v := r.U8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail("invalid bool %d", v)
		return false
	}
}

// TokenID reads a u8 length prefixed token id.
func (r *Reader) TokenID() TokenID {
	n := r.U8()
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	id := make(TokenID, len(b))
	copy(id, b)
	return id
}

// TokenAmount reads an unsigned LEB128 CIS2 token amount.
func (r *Reader) TokenAmount() decimal.Decimal {
	value := new(big.Int)
	for i := 0; i < maxTokenAmountBytes; i++ {
		b := r.take(1)
		if b == nil {
			return decimal.Zero
		}
		chunk := new(big.Int).SetUint64(uint64(b[0] & 0x7f))
		value.Or(value, chunk.Lsh(chunk, uint(7*i)))
		if b[0]&0x80 == 0 {
			return decimal.NewFromBigInt(value, 0)
		}
	}
	r.fail("token amount exceeds %d bytes", maxTokenAmountBytes)
	return decimal.Zero
}

func (r *Reader) AccountAddress() AccountAddress {
	var a AccountAddress
	copy(a[:], r.take(AccountAddressLength))
	return a
}

func (r *Reader) ContractAddress() ContractAddress {
	index := r.U64()
	subindex := r.U64()
	return ContractAddress{Index: index, Subindex: subindex}
}

// Address reads a tagged account or contract address.
func (r *Reader) Address() Address {
	switch tag := r.U8(); tag {
	case 0:
		return AccountAddr(r.AccountAddress())
	case 1:
		return ContractAddr(r.ContractAddress())
	default:
		r.fail("invalid address tag %d", tag)
		return Address{}
	}
}

// Text reads a u16 length prefixed UTF-8 string.
func (r *Reader) Text() string {
	n := r.U16()
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.fail("invalid utf-8 string")
		return ""
	}
	return string(b)
}

// Bytes reads u16 length prefixed raw bytes.
func (r *Reader) Bytes() []byte {
	n := r.U16()
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// OptionalHash reads an optional 32 byte hash.
func (r *Reader) OptionalHash() *Hash {
	switch tag := r.U8(); tag {
	case optionNone:
		return nil
	case optionSome:
		var h Hash
		copy(h[:], r.take(HashLength))
		return &h
	default:
		r.fail("invalid option tag %d", tag)
		return nil
	}
}

// Rate reads a numerator and a non-zero denominator.
func (r *Reader) Rate() Rate {
	rate := Rate{Numerator: r.U64(), Denominator: r.U64()}
	if r.err == nil && rate.Denominator == 0 {
		r.fail("rate with zero denominator")
	}
	return rate
}

// Len reads a u16 collection length.
func (r *Reader) Len() int {
	return int(r.U16())
}

// Writer produces the encoding Reader understands.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *Writer) U64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *Writer) TokenID(id TokenID) *Writer {
	w.U8(uint8(len(id)))
	w.buf = append(w.buf, id...)
	return w
}

// TokenAmount writes a non-negative integer amount as unsigned LEB128.
func (w *Writer) TokenAmount(amount decimal.Decimal) *Writer {
	value := new(big.Int).Set(amount.BigInt())
	if value.Sign() < 0 {
		panic("negative token amount")
	}
	mask := big.NewInt(0x7f) //nolint:mnd
	for {
		b := byte(new(big.Int).And(value, mask).Uint64())
		value.Rsh(value, 7) //nolint:mnd
		if value.Sign() == 0 {
			w.buf = append(w.buf, b)
			return w
		}
		w.buf = append(w.buf, b|0x80) //nolint:mnd
	}
}

func (w *Writer) AccountAddress(a AccountAddress) *Writer {
	w.buf = append(w.buf, a[:]...)
	return w
}

func (w *Writer) ContractAddress(c ContractAddress) *Writer {
	return w.U64(c.Index).U64(c.Subindex)
}

func (w *Writer) Address(a Address) *Writer {
	if a.Kind == AddressKindContract {
		return w.U8(1).ContractAddress(a.Contract)
	}
	return w.U8(0).AccountAddress(a.Account)
}

func (w *Writer) Text(s string) *Writer {
	w.U16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) Bytes16(b []byte) *Writer {
	w.U16(uint16(len(b)))
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) OptionalHash(h *Hash) *Writer {
	if h == nil {
		return w.U8(optionNone)
	}
	w.U8(optionSome)
	w.buf = append(w.buf, h[:]...)
	return w
}

func (w *Writer) Rate(r Rate) *Writer {
	return w.U64(r.Numerator).U64(r.Denominator)
}
