package types

import (
	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// ProtocolInfo is the registry state of a single governed protocol.
type ProtocolInfo struct {
	IsInit              bool                       `json:"is_init"`
	ConsensusTargetRate uint64                     `json:"consensus_target_rate"`
	ProtocolFee         uint64                     `json:"protocol_fee"`
	ProtocolAddress     LedgerAddress              `json:"protocol_address"`
	Keepers             BoundedSet[common.Address] `json:"keepers"`
	Executors           BoundedSet[LedgerAddress]  `json:"executors"`
}

// NewProtocolInfo returns a zero-initialized, uninitialized registry entry sized by
// the given params.
func NewProtocolInfo(params Params) ProtocolInfo {
	keepers, _ := NewBoundedSet[common.Address](int(params.KeeperCapacity))
	executors, _ := NewBoundedSet[LedgerAddress](int(params.ExecutorCapacity))
	return ProtocolInfo{
		Keepers:   keepers,
		Executors: executors,
	}
}

// IsKeeper reports whether addr is a registered keeper.
func (pi ProtocolInfo) IsKeeper(addr common.Address) bool {
	return pi.Keepers.Contains(addr)
}

// IsExecutor reports whether addr is a registered executor.
func (pi ProtocolInfo) IsExecutor(addr LedgerAddress) bool {
	return pi.Executors.Contains(addr)
}

// HasProtocolAddress reports whether the protocol address is set.
func (pi ProtocolInfo) HasProtocolAddress() bool {
	return !pi.ProtocolAddress.IsZero()
}

// Validate checks the set invariants of a registry entry.
func (pi ProtocolInfo) Validate() error {
	if pi.Keepers.Len() > pi.Keepers.Cap() {
		return sdkerrors.Wrapf(ErrCapacityExceeded, "keepers: %d members exceed capacity %d", pi.Keepers.Len(), pi.Keepers.Cap())
	}
	if pi.Executors.Len() > pi.Executors.Cap() {
		return sdkerrors.Wrapf(ErrCapacityExceeded, "executors: %d members exceed capacity %d", pi.Executors.Len(), pi.Executors.Cap())
	}
	for _, k := range pi.Keepers.Elements() {
		if k == (common.Address{}) {
			return sdkerrors.Wrap(ErrInvalidProtocolInfo, "keeper address cannot be empty")
		}
	}
	for _, e := range pi.Executors.Elements() {
		if e.IsZero() {
			return sdkerrors.Wrap(ErrInvalidProtocolInfo, "executor address cannot be empty")
		}
	}
	return nil
}
