package keeper

import (
	"encoding/json"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/cosmos-sdk/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// Keeper owns the protocol registry store and applies governance operations to it.
// It holds no mutable state of its own; all mutations go through the sdk.Context
// handed in by the host, which serializes calls per registry.
type Keeper struct {
	storeKey sdk.StoreKey
}

// NewKeeper creates a new governance relay Keeper instance
func NewKeeper(key sdk.StoreKey) Keeper {
	return Keeper{
		storeKey: key,
	}
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+types.ModuleName)
}

// GetParams returns the module params. Defaults are returned when none are stored.
func (k Keeper) GetParams(ctx sdk.Context) types.Params {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(types.KeyParams())
	if bz == nil {
		return types.DefaultParams()
	}

	var params types.Params
	mustUnmarshal(bz, &params)
	return params
}

// SetParams stores the module params.
func (k Keeper) SetParams(ctx sdk.Context, params types.Params) {
	store := ctx.KVStore(k.storeKey)
	store.Set(types.KeyParams(), mustMarshal(params))
}

// GetProtocolInfo returns the registry entry of the given protocol.
func (k Keeper) GetProtocolInfo(ctx sdk.Context, protocolID types.ProtocolID) (types.ProtocolInfo, bool) {
	store := ctx.KVStore(k.storeKey)
	bz := store.Get(types.ProtocolInfoKey(protocolID))
	if bz == nil {
		return types.ProtocolInfo{}, false
	}

	var info types.ProtocolInfo
	mustUnmarshal(bz, &info)
	return info, true
}

// GetOrNewProtocolInfo returns the stored registry entry, or a zero-initialized one
// sized by the current params when the protocol has never been written.
func (k Keeper) GetOrNewProtocolInfo(ctx sdk.Context, protocolID types.ProtocolID) types.ProtocolInfo {
	if info, found := k.GetProtocolInfo(ctx, protocolID); found {
		return info
	}
	return types.NewProtocolInfo(k.GetParams(ctx))
}

// SetProtocolInfo stores the registry entry of the given protocol.
func (k Keeper) SetProtocolInfo(ctx sdk.Context, protocolID types.ProtocolID, info types.ProtocolInfo) {
	store := ctx.KVStore(k.storeKey)
	store.Set(types.ProtocolInfoKey(protocolID), mustMarshal(info))
}

// HasProtocolInfo reports whether a registry entry exists for the protocol.
func (k Keeper) HasProtocolInfo(ctx sdk.Context, protocolID types.ProtocolID) bool {
	store := ctx.KVStore(k.storeKey)
	return store.Has(types.ProtocolInfoKey(protocolID))
}

// IterateProtocolInfos iterates over every registry entry in key order and invokes cb.
// Iteration stops when cb returns true.
func (k Keeper) IterateProtocolInfos(ctx sdk.Context, cb func(protocolID types.ProtocolID, info types.ProtocolInfo) (stop bool)) {
	store := prefix.NewStore(ctx.KVStore(k.storeKey), types.ProtocolInfoPrefix())
	iterator := store.Iterator(nil, nil)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		protocolID, err := types.ParseProtocolID(string(iterator.Key()))
		if err != nil {
			panic(fmt.Errorf("invalid protocol info key %q: %w", iterator.Key(), err))
		}

		var info types.ProtocolInfo
		mustUnmarshal(iterator.Value(), &info)
		if cb(protocolID, info) {
			break
		}
	}
}

// GetAllProtocols returns every registry entry with its identity.
func (k Keeper) GetAllProtocols(ctx sdk.Context) []types.GenesisProtocol {
	var protocols []types.GenesisProtocol
	k.IterateProtocolInfos(ctx, func(protocolID types.ProtocolID, info types.ProtocolInfo) bool {
		protocols = append(protocols, types.GenesisProtocol{ProtocolID: protocolID, Info: info})
		return false
	})
	return protocols
}

// GetGovProtocolInfo returns the registry entry of the governance protocol, whose
// keepers attest every governance operation.
func (k Keeper) GetGovProtocolInfo(ctx sdk.Context) (types.ProtocolInfo, bool) {
	return k.GetProtocolInfo(ctx, k.GetParams(ctx).GovProtocolID)
}

// mustMarshal encodes registry values. The registry types are plain data, so a
// failure is a programming error.
func mustMarshal(v interface{}) []byte {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("failed to marshal %T: %w", v, err))
	}
	return bz
}

// mustUnmarshal decodes stored registry values and panics on corrupted state.
func mustUnmarshal(bz []byte, v interface{}) {
	if err := json.Unmarshal(bz, v); err != nil {
		panic(sdkerrors.Wrapf(types.ErrProtocolInfoCorrupted, "%T: %v", v, err))
	}
}
