package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// GenesisProtocol is a registry entry exported with its identity.
type GenesisProtocol struct {
	ProtocolID ProtocolID   `json:"protocol_id"`
	Info       ProtocolInfo `json:"info"`
}

// GenesisState defines the governance relay genesis state.
type GenesisState struct {
	Params    Params            `json:"params"`
	Protocols []GenesisProtocol `json:"protocols"`
}

// NewGenesisState creates a GenesisState instance.
func NewGenesisState(params Params, protocols []GenesisProtocol) *GenesisState {
	return &GenesisState{
		Params:    params,
		Protocols: protocols,
	}
}

// DefaultGenesisState returns a genesis state with default params and no protocols.
func DefaultGenesisState() *GenesisState {
	return NewGenesisState(DefaultParams(), []GenesisProtocol{})
}

// Validate performs basic genesis state validation returning an error upon any
// failure. The governance protocol must be present, initialized and hold at least
// one keeper and one executor, otherwise no operation could ever be applied.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	seen := make(map[ProtocolID]bool)
	govFound := false
	for _, p := range gs.Protocols {
		if p.ProtocolID.IsZero() {
			return sdkerrors.Wrap(ErrInvalidGenesis, "protocol id cannot be empty")
		}
		if seen[p.ProtocolID] {
			return sdkerrors.Wrapf(ErrInvalidGenesis, "duplicate protocol %s", p.ProtocolID)
		}
		seen[p.ProtocolID] = true

		if err := p.Info.Validate(); err != nil {
			return sdkerrors.Wrapf(ErrInvalidGenesis, "protocol %s: %v", p.ProtocolID, err)
		}
		if p.Info.Keepers.Cap() != int(gs.Params.KeeperCapacity) || p.Info.Executors.Cap() != int(gs.Params.ExecutorCapacity) {
			return sdkerrors.Wrapf(ErrInvalidGenesis, "protocol %s: set capacities do not match params", p.ProtocolID)
		}

		if p.ProtocolID == gs.Params.GovProtocolID {
			govFound = true
			if !p.Info.IsInit {
				return sdkerrors.Wrap(ErrInvalidGenesis, "governance protocol must be initialized")
			}
			if p.Info.Keepers.Len() == 0 {
				return sdkerrors.Wrap(ErrInvalidGenesis, "governance protocol requires at least one keeper")
			}
			if p.Info.Executors.Len() == 0 {
				return sdkerrors.Wrap(ErrInvalidGenesis, "governance protocol requires at least one executor")
			}
		}
	}

	if len(gs.Protocols) > 0 && !govFound {
		return sdkerrors.Wrapf(ErrInvalidGenesis, "governance protocol %s missing from genesis", gs.Params.GovProtocolID)
	}

	return nil
}
