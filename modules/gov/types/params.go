package types

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const (
	// DefaultKeeperCapacity is the default fixed size of every keeper set
	DefaultKeeperCapacity = 20
	// DefaultExecutorCapacity is the default fixed size of every executor set
	DefaultExecutorCapacity = 20
	// DefaultGovProtocolName is the identity of the governance protocol itself
	DefaultGovProtocolName = "aggregation-gov_________________"
)

// Params defines the governance relay module parameters.
type Params struct {
	GovProtocolID    ProtocolID `json:"gov_protocol_id" yaml:"gov_protocol_id"`
	KeeperCapacity   uint32     `json:"keeper_capacity" yaml:"keeper_capacity"`
	ExecutorCapacity uint32     `json:"executor_capacity" yaml:"executor_capacity"`
}

// NewParams creates a new parameter configuration.
func NewParams(govProtocolID ProtocolID, keeperCapacity, executorCapacity uint32) Params {
	return Params{
		GovProtocolID:    govProtocolID,
		KeeperCapacity:   keeperCapacity,
		ExecutorCapacity: executorCapacity,
	}
}

// DefaultParams is the default parameter configuration.
func DefaultParams() Params {
	return NewParams(MustProtocolIDFromString(DefaultGovProtocolName), DefaultKeeperCapacity, DefaultExecutorCapacity)
}

// Validate all parameters.
func (p Params) Validate() error {
	if p.GovProtocolID.IsZero() {
		return sdkerrors.Wrap(ErrInvalidGenesis, "governance protocol id cannot be empty")
	}
	if p.KeeperCapacity == 0 {
		return sdkerrors.Wrap(ErrInvalidGenesis, "keeper capacity must be positive")
	}
	if p.ExecutorCapacity == 0 {
		return sdkerrors.Wrap(ErrInvalidGenesis, "executor capacity must be positive")
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("gov_protocol_id: %s\nkeeper_capacity: %d\nexecutor_capacity: %d\n", p.GovProtocolID, p.KeeperCapacity, p.ExecutorCapacity)
}
