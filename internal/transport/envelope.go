package transport

import (
	"encoding/json"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// KeeperMsg is the versioned envelope keepers publish. Exactly one version field is
// set.
type KeeperMsg struct {
	V1 *KeeperMsgV1 `json:"V1,omitempty"`
}

// KeeperMsgV1 carries an operation with the signatures known to the sender.
type KeeperMsgV1 struct {
	SignedOperationData *types.SignedOperation `json:"SignedOperationData,omitempty"`
}

// NewKeeperMsg wraps a signed operation into the current envelope version.
func NewKeeperMsg(signedOp types.SignedOperation) KeeperMsg {
	return KeeperMsg{V1: &KeeperMsgV1{SignedOperationData: &signedOp}}
}

// SignedOperation returns the signed operation carried by the envelope.
func (m KeeperMsg) SignedOperation() (types.SignedOperation, error) {
	if m.V1 == nil {
		return types.SignedOperation{}, sdkerrors.Wrap(photonerrors.ErrUnsupportedVersion, "missing V1 payload")
	}
	if m.V1.SignedOperationData == nil {
		return types.SignedOperation{}, sdkerrors.Wrap(photonerrors.ErrInvalidEnvelope, "missing signed operation data")
	}
	return *m.V1.SignedOperationData, nil
}

// ValidateBasic performs stateless checks on the envelope payload.
func (m KeeperMsg) ValidateBasic() error {
	signedOp, err := m.SignedOperation()
	if err != nil {
		return err
	}
	if err := signedOp.OperationData.ValidateBasic(); err != nil {
		return err
	}
	for i, sig := range signedOp.Signatures {
		if len(sig.Signature) != types.SignatureLength {
			return sdkerrors.Wrapf(photonerrors.ErrInvalidEnvelope, "signature %d: expected %d bytes, got %d", i, types.SignatureLength, len(sig.Signature))
		}
	}
	return nil
}

// EncodeKeeperMsg returns the wire form of msg.
func EncodeKeeperMsg(msg KeeperMsg) ([]byte, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return nil, sdkerrors.Wrapf(photonerrors.ErrInvalidEnvelope, "failed to encode keeper message: %v", err)
	}
	return bz, nil
}

// DecodeKeeperMsg parses and validates the wire form of a keeper message.
func DecodeKeeperMsg(bz []byte) (KeeperMsg, error) {
	var msg KeeperMsg
	if err := json.Unmarshal(bz, &msg); err != nil {
		return KeeperMsg{}, sdkerrors.Wrapf(photonerrors.ErrInvalidEnvelope, "failed to decode keeper message: %v", err)
	}
	if err := msg.ValidateBasic(); err != nil {
		return KeeperMsg{}, err
	}
	return msg, nil
}
