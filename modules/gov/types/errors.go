package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// photon governance sentinel errors
var (
	ErrInvalidProtoMsg         = sdkerrors.Register(ModuleName, 2, "calldata does not match the operation schema")
	ErrInvalidGovMsg           = sdkerrors.Register(ModuleName, 3, "decoded field failed domain coercion")
	ErrTargetProtocolMismatch  = sdkerrors.Register(ModuleName, 4, "target protocol mismatch")
	ErrUnsupportedOperation    = sdkerrors.Register(ModuleName, 5, "unsupported operation selector")
	ErrInsufficientQuorum      = sdkerrors.Register(ModuleName, 6, "insufficient keeper quorum")
	ErrInvalidSignature        = sdkerrors.Register(ModuleName, 7, "invalid keeper signature")
	ErrCapacityExceeded        = sdkerrors.Register(ModuleName, 8, "membership set capacity exceeded")
	ErrProtocolNotInitialized  = sdkerrors.Register(ModuleName, 9, "protocol is not initialized")
	ErrUnauthorizedExecutor    = sdkerrors.Register(ModuleName, 10, "executor is not allowed to submit governance operations")
	ErrInvalidGenesis          = sdkerrors.Register(ModuleName, 11, "invalid genesis state")
	ErrInvalidOperationData    = sdkerrors.Register(ModuleName, 12, "invalid operation data")
	ErrInvalidProtocolInfo     = sdkerrors.Register(ModuleName, 13, "invalid protocol info")
	ErrProtocolInfoCorrupted   = sdkerrors.Register(ModuleName, 14, "stored protocol info cannot be decoded")
	ErrInvalidProtocolIdentity = sdkerrors.Register(ModuleName, 15, "invalid protocol identity")
)
