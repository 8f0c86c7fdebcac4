package transport_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
	photontesting "github.com/Chiplis/Photon-solana-contracts/testing"
)

func newSignedOperation(t *testing.T) types.SignedOperation {
	gov := types.MustProtocolIDFromString(types.DefaultGovProtocolName)
	op := &types.SetProtocolFeeOperation{ProtocolID: photontesting.ProtocolID(t, "bridge"), ProtocolFee: 10}
	opData, err := types.NewOperationData(gov, op, 1)
	require.NoError(t, err)
	opData.ProtocolAddr = []byte{0x01, 0x02}

	keys, _ := photontesting.GenerateKeys(t, 2)
	return photontesting.SignOperation(t, opData, keys...)
}

func TestKeeperMsgRoundTrip(t *testing.T) {
	signedOp := newSignedOperation(t)

	bz, err := transport.EncodeKeeperMsg(transport.NewKeeperMsg(signedOp))
	require.NoError(t, err)

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bz, &raw))
	require.Contains(t, raw, "V1")
	require.Contains(t, raw["V1"], "SignedOperationData")

	msg, err := transport.DecodeKeeperMsg(bz)
	require.NoError(t, err)

	decoded, err := msg.SignedOperation()
	require.NoError(t, err)
	require.Equal(t, signedOp, decoded)
}

func TestDecodeKeeperMsgErrors(t *testing.T) {
	signedOp := newSignedOperation(t)
	signedOp.Signatures[0].Signature = signedOp.Signatures[0].Signature[:32]
	shortSig, err := transport.EncodeKeeperMsg(transport.NewKeeperMsg(signedOp))
	require.NoError(t, err)

	testCases := []struct {
		name   string
		bz     []byte
		expErr error
	}{
		{"not json", []byte("{"), photonerrors.ErrInvalidEnvelope},
		{"unknown version", []byte(`{"V2":{}}`), photonerrors.ErrUnsupportedVersion},
		{"missing payload", []byte(`{"V1":{}}`), photonerrors.ErrInvalidEnvelope},
		{"bad hex", []byte(`{"V1":{"SignedOperationData":{"operation_data":{"params":"zz"}}}}`), photonerrors.ErrInvalidEnvelope},
		{"empty params", []byte(`{"V1":{"SignedOperationData":{"operation_data":{"protocol_id":"bridge"}}}}`), types.ErrInvalidOperationData},
		{"short signature", shortSig, photonerrors.ErrInvalidEnvelope},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := transport.DecodeKeeperMsg(tc.bz)
			require.ErrorIs(t, err, tc.expErr)
		})
	}
}
