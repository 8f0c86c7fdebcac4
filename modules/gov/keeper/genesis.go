package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// InitGenesis initializes the governance relay state from a provided genesis state.
func (k Keeper) InitGenesis(ctx sdk.Context, state types.GenesisState) {
	if err := state.Validate(); err != nil {
		panic(fmt.Sprintf("failed to validate %s genesis state: %s", types.ModuleName, err))
	}

	k.SetParams(ctx, state.Params)
	for _, p := range state.Protocols {
		k.SetProtocolInfo(ctx, p.ProtocolID, p.Info)
	}
}

// ExportGenesis exports the governance relay state to a genesis file.
func (k Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	return types.NewGenesisState(k.GetParams(ctx), k.GetAllProtocols(ctx))
}
