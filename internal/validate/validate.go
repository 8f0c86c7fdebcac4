package validate

import (
	"strings"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// ProtocolRequest validates the protocol identity of a registry query, given as a
// name or as 0x prefixed hex.
func ProtocolRequest(protocolID string) (types.ProtocolID, error) {
	protocolID = strings.TrimSpace(protocolID)
	if protocolID == "" {
		return types.ProtocolID{}, sdkerrors.Wrap(types.ErrInvalidProtocolIdentity, "protocol id cannot be blank")
	}

	id, err := types.ParseProtocolID(protocolID)
	if err != nil {
		return types.ProtocolID{}, err
	}
	if id.IsZero() {
		return types.ProtocolID{}, sdkerrors.Wrap(types.ErrInvalidProtocolIdentity, "protocol id cannot be zero")
	}
	return id, nil
}
