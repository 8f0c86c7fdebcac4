package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const (
	// ProtocolIDLength is the byte length of a protocol identity
	ProtocolIDLength = 32
	// LedgerAddressLength is the byte length of a destination ledger address
	LedgerAddressLength = 32
)

// ProtocolID is the opaque 32 byte identity binding an operation to a governed protocol.
type ProtocolID [ProtocolIDLength]byte

// LedgerAddress is a 32 byte account address on the destination ledger. The zero
// value means unset.
type LedgerAddress [LedgerAddressLength]byte

// NewProtocolIDFromString builds a protocol identity from a human readable name. The
// name is copied verbatim and right padded with zero bytes; names longer than 32 bytes
// are rejected.
func NewProtocolIDFromString(name string) (ProtocolID, error) {
	var id ProtocolID
	if len(name) == 0 || len(name) > ProtocolIDLength {
		return id, sdkerrors.Wrapf(ErrInvalidProtocolIdentity, "protocol name must be 1-%d bytes, got %d", ProtocolIDLength, len(name))
	}
	copy(id[:], name)
	return id, nil
}

// MustProtocolIDFromString is NewProtocolIDFromString that panics on error.
func MustProtocolIDFromString(name string) ProtocolID {
	id, err := NewProtocolIDFromString(name)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseProtocolID parses a 0x prefixed hex identity, falling back to the padded
// name form used by NewProtocolIDFromString.
func ParseProtocolID(s string) (ProtocolID, error) {
	if bz, err := hexutil.Decode(s); err == nil {
		return ProtocolIDFromBytes(bz)
	}
	return NewProtocolIDFromString(s)
}

// ProtocolIDFromBytes converts an exactly 32 byte slice.
func ProtocolIDFromBytes(bz []byte) (ProtocolID, error) {
	var id ProtocolID
	if len(bz) != ProtocolIDLength {
		return id, sdkerrors.Wrapf(ErrInvalidProtocolIdentity, "expected %d bytes, got %d", ProtocolIDLength, len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

// Bytes returns a copy of the identity bytes.
func (p ProtocolID) Bytes() []byte {
	return append([]byte(nil), p[:]...)
}

// Hex returns the 0x prefixed hex form.
func (p ProtocolID) Hex() string {
	return hexutil.Encode(p[:])
}

// String returns the printable name when the identity was built from one, and the
// hex form otherwise.
func (p ProtocolID) String() string {
	name := bytes.TrimRight(p[:], "\x00")
	for _, c := range name {
		if c < 0x20 || c > 0x7e {
			return p.Hex()
		}
	}
	if len(name) == 0 {
		return p.Hex()
	}
	return string(name)
}

// IsZero reports whether the identity is all zero bytes.
func (p ProtocolID) IsZero() bool {
	return p == ProtocolID{}
}

// MarshalText implements encoding.TextMarshaler.
func (p ProtocolID) MarshalText() ([]byte, error) {
	return []byte(p.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ProtocolID) UnmarshalText(text []byte) error {
	id, err := ParseProtocolID(string(text))
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// LedgerAddressFromBytes converts an exactly 32 byte slice. Any other length fails
// with ErrInvalidGovMsg.
func LedgerAddressFromBytes(bz []byte) (LedgerAddress, error) {
	var addr LedgerAddress
	if len(bz) != LedgerAddressLength {
		return addr, sdkerrors.Wrapf(ErrInvalidGovMsg, "ledger address must be %d bytes, got %d", LedgerAddressLength, len(bz))
	}
	copy(addr[:], bz)
	return addr, nil
}

// ParseLedgerAddress parses a 0x prefixed hex address.
func ParseLedgerAddress(s string) (LedgerAddress, error) {
	bz, err := hexutil.Decode(s)
	if err != nil {
		return LedgerAddress{}, sdkerrors.Wrapf(ErrInvalidGovMsg, "invalid ledger address %q: %v", s, err)
	}
	return LedgerAddressFromBytes(bz)
}

// Bytes returns a copy of the address bytes.
func (a LedgerAddress) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// IsZero reports whether the address is unset.
func (a LedgerAddress) IsZero() bool {
	return a == LedgerAddress{}
}

func (a LedgerAddress) String() string {
	return hexutil.Encode(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a LedgerAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *LedgerAddress) UnmarshalText(text []byte) error {
	addr, err := ParseLedgerAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
