package errors

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const codespace = "photon"

var (
	// ErrInvalidConfig is used when a component configuration is invalid.
	ErrInvalidConfig = sdkerrors.Register(codespace, 2, "invalid config")

	// ErrInvalidEnvelope is used when a transport message cannot be decoded
	// into a keeper message.
	ErrInvalidEnvelope = sdkerrors.Register(codespace, 3, "invalid envelope")

	// ErrUnsupportedVersion is used when a keeper message carries no known
	// payload version.
	ErrUnsupportedVersion = sdkerrors.Register(codespace, 4, "unsupported envelope version")

	// ErrTransportClosed is used when publishing to or consuming from a closed
	// transport.
	ErrTransportClosed = sdkerrors.Register(codespace, 5, "transport closed")

	// ErrReconnectExhausted is used when a connection could not be reestablished
	// within the configured number of attempts.
	ErrReconnectExhausted = sdkerrors.Register(codespace, 6, "reconnect attempts exhausted")

	// ErrLedgerClosed is used when submitting to a closed ledger.
	ErrLedgerClosed = sdkerrors.Register(codespace, 7, "ledger closed")

	// ErrInvalidKey is used when a keeper signing key cannot be loaded.
	ErrInvalidKey = sdkerrors.Register(codespace, 8, "invalid keeper key")
)
