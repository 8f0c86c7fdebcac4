package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// SelectorLength is the byte length of a function selector
const SelectorLength = 4

// Selector is the 4 byte function selector heading every operation record.
type Selector [SelectorLength]byte

// Governance operation selectors, fixed by the source chain governance contract.
var (
	SelectorAddAllowedProtocol           = NewSelector(0x45a004b9)
	SelectorAddAllowedProtocolAddress    = NewSelector(0xd296a0ff)
	SelectorRemoveAllowedProtocolAddress = NewSelector(0xb0a4ca98)
	SelectorAddAllowedProposerAddress    = NewSelector(0xce0940a5)
	SelectorRemoveAllowedProposerAddress = NewSelector(0xb8e5f3f4)
	SelectorAddExecutor                  = NewSelector(0xe0aafb68)
	SelectorRemoveExecutor               = NewSelector(0x04fa384a)
	SelectorAddKeeper                    = NewSelector(0xa8da4c51)
	SelectorRemoveKeeper                 = NewSelector(0x80936851)
	SelectorSetConsensusTargetRate       = NewSelector(0x970b6109)
	SelectorSetProtocolFee               = NewSelector(0xafe50cc2)
)

// NewSelector builds a selector from its big endian integer form.
func NewSelector(v uint32) Selector {
	var s Selector
	binary.BigEndian.PutUint32(s[:], v)
	return s
}

// SelectorFromBytes converts an exactly 4 byte slice.
func SelectorFromBytes(bz []byte) (Selector, error) {
	var s Selector
	if len(bz) != SelectorLength {
		return s, sdkerrors.Wrapf(ErrInvalidOperationData, "function selector must be %d bytes, got %d", SelectorLength, len(bz))
	}
	copy(s[:], bz)
	return s, nil
}

// Uint32 returns the big endian integer form.
func (s Selector) Uint32() uint32 {
	return binary.BigEndian.Uint32(s[:])
}

// String returns the governance function name for known selectors and the hex form
// otherwise.
func (s Selector) String() string {
	if h, ok := operationRegistry[s]; ok {
		return h.name
	}
	return hexutil.Encode(s[:])
}

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(s[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(text []byte) error {
	bz, err := hexutil.Decode(string(text))
	if err != nil {
		return sdkerrors.Wrapf(ErrInvalidOperationData, "invalid function selector %q: %v", text, err)
	}
	sel, err := SelectorFromBytes(bz)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}
