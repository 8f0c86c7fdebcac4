package keeper

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/telemetry"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// ExecuteGovOperation applies a signed governance operation submitted by executor.
// The executor must belong to the executor set of the governance protocol.
func (k Keeper) ExecuteGovOperation(ctx sdk.Context, executor types.LedgerAddress, signedOp types.SignedOperation, target types.ProtocolID) error {
	govInfo, found := k.GetGovProtocolInfo(ctx)
	if !found || !govInfo.IsInit {
		return sdkerrors.Wrap(types.ErrProtocolNotInitialized, "governance protocol")
	}

	if !govInfo.IsExecutor(executor) {
		telemetry.ReportRejected(types.StageReceived.String(), "unauthorized_executor")
		return sdkerrors.Wrapf(types.ErrUnauthorizedExecutor, "executor %s", executor)
	}

	if err := k.Apply(ctx, signedOp, target); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			sdk.EventTypeMessage,
			sdk.NewAttribute(types.AttributeKeyExecutor, executor.String()),
		),
	)
	return nil
}

// Apply runs a signed operation through the governance state machine:
// Received -> SignatureVerified -> Decoded -> ProtocolValidated -> Applied.
// Every failure is terminal for the operation and leaves the registry unchanged.
func (k Keeper) Apply(ctx sdk.Context, signedOp types.SignedOperation, target types.ProtocolID) (err error) {
	start := time.Now()
	stage := types.StageReceived
	defer func() {
		telemetry.MeasureApply(start)
		if err != nil {
			telemetry.ReportRejected(stage.String(), reasonOf(err))
			k.Logger(ctx).Info("governance operation rejected", "stage", stage.String(), "target", target.String(), "error", err.Error())
		}
	}()

	params := k.GetParams(ctx)
	opData := signedOp.OperationData

	if err := opData.ValidateBasic(); err != nil {
		return err
	}
	if opData.ProtocolID != params.GovProtocolID {
		return sdkerrors.Wrapf(types.ErrTargetProtocolMismatch, "operation addressed to %s, governance protocol is %s", opData.ProtocolID, params.GovProtocolID)
	}

	govInfo, found := k.GetProtocolInfo(ctx, params.GovProtocolID)
	if !found || !govInfo.IsInit {
		return sdkerrors.Wrap(types.ErrProtocolNotInitialized, "governance protocol")
	}

	fingerprint, err := opData.Fingerprint()
	if err != nil {
		return err
	}

	signers, err := verifySignatures(govInfo, fingerprint, signedOp.Signatures)
	if err != nil {
		return err
	}
	stage = types.StageSignatureVerified

	op, err := types.DecodeOperation(opData.FunctionSelector, opData.Params)
	if err != nil {
		return err
	}
	stage = types.StageDecoded

	if op.GetProtocolID() != target {
		return sdkerrors.Wrapf(types.ErrTargetProtocolMismatch, "operation targets %s, expected %s", op.GetProtocolID(), target)
	}
	stage = types.StageProtocolValidated

	info := k.GetOrNewProtocolInfo(ctx, target)
	if !info.IsInit && !types.InitializesProtocol(op.Selector()) {
		return sdkerrors.Wrapf(types.ErrProtocolNotInitialized, "target protocol %s", target)
	}

	// branch the store so the registry write lands only once the whole mutation succeeded
	cacheCtx, writeCache := ctx.CacheContext()
	updated, err := k.applyOperation(cacheCtx, op, target, info)
	if err != nil {
		return err
	}
	writeCache()
	stage = types.StageApplied

	if !info.IsInit && updated.IsInit {
		EmitProtocolInitializedEvent(ctx, target, updated)
	}
	EmitGovOperationEvent(ctx, op, opData, fingerprint, signers)
	telemetry.ReportApplied(op.Selector().String(), target.String(), signers)

	k.Logger(ctx).Info("governance operation applied", "operation", op.Selector().String(), "target", target.String(), "signers", signers, "fingerprint", fingerprint.Hex())
	return nil
}

func (k Keeper) applyOperation(ctx sdk.Context, op types.GovOperation, target types.ProtocolID, info types.ProtocolInfo) (types.ProtocolInfo, error) {
	updated, err := op.Apply(info)
	if err != nil {
		return info, err
	}

	if _, ok := op.(types.NoopOperation); ok {
		return updated, nil
	}

	if err := updated.Validate(); err != nil {
		return info, err
	}

	k.SetProtocolInfo(ctx, target, updated)
	return updated, nil
}

// reasonOf returns a short metric label for a rejection error.
func reasonOf(err error) string {
	for _, sentinel := range []*sdkerrors.Error{
		types.ErrInvalidProtoMsg,
		types.ErrInvalidGovMsg,
		types.ErrTargetProtocolMismatch,
		types.ErrUnsupportedOperation,
		types.ErrInsufficientQuorum,
		types.ErrInvalidSignature,
		types.ErrCapacityExceeded,
		types.ErrProtocolNotInitialized,
		types.ErrInvalidOperationData,
	} {
		if sentinel.Is(err) {
			return sentinel.Error()
		}
	}
	return "unknown"
}
