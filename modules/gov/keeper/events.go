package keeper

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// EmitGovOperationEvent emits an event for a governance operation applied to the
// target protocol.
func EmitGovOperationEvent(ctx sdk.Context, op types.GovOperation, opData types.OperationData, fingerprint common.Hash, signers int) {
	eventType := types.EventTypeGovOperation
	if _, ok := op.(types.NoopOperation); ok {
		eventType = types.EventTypeGovOperationNoop
	}

	ctx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeyOperation, op.Selector().String()),
			sdk.NewAttribute(types.AttributeKeyTarget, op.GetProtocolID().Hex()),
			sdk.NewAttribute(types.AttributeKeyFingerprint, fingerprint.Hex()),
			sdk.NewAttribute(types.AttributeKeyNonce, fmt.Sprint(opData.Nonce)),
			sdk.NewAttribute(types.AttributeKeySignerCount, fmt.Sprint(signers)),
		),
		sdk.NewEvent(
			sdk.EventTypeMessage,
			sdk.NewAttribute(sdk.AttributeKeyModule, types.AttributeValueCategory),
		),
	})
}

// EmitProtocolInitializedEvent emits an event when a protocol registry entry becomes
// initialized.
func EmitProtocolInitializedEvent(ctx sdk.Context, protocolID types.ProtocolID, info types.ProtocolInfo) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeProtocolInitialized,
			sdk.NewAttribute(types.AttributeKeyProtocolID, protocolID.Hex()),
			sdk.NewAttribute(types.AttributeKeyKeeperCount, fmt.Sprint(info.Keepers.Len())),
		),
	)
}
