package types

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// OperationData is an operation record originated on a source chain. The selector
// determines the decode schema of Params. It is treated as immutable once built.
type OperationData struct {
	ProtocolID       ProtocolID    `json:"protocol_id"`
	SrcChainID       uint64        `json:"src_chain_id"`
	SrcBlockNumber   uint64        `json:"src_block_number"`
	SrcOpTxID        common.Hash   `json:"src_op_tx_id"`
	Nonce            uint64        `json:"nonce"`
	DestChainID      uint64        `json:"dest_chain_id"`
	ProtocolAddr     hexutil.Bytes `json:"protocol_addr"`
	FunctionSelector Selector      `json:"function_selector"`
	Params           hexutil.Bytes `json:"params"`
}

// KeeperSignature binds a keeper identity to its signature over the operation
// fingerprint.
type KeeperSignature struct {
	Signer    common.Address `json:"signer"`
	Signature hexutil.Bytes  `json:"signature"`
}

// SignedOperation is an operation together with the keeper signatures collected for
// it, in arrival order.
type SignedOperation struct {
	OperationData OperationData     `json:"operation_data"`
	Signatures    []KeeperSignature `json:"signatures"`
}

// ValidateBasic performs stateless checks on the operation record.
func (op OperationData) ValidateBasic() error {
	if op.ProtocolID.IsZero() {
		return sdkerrors.Wrap(ErrInvalidOperationData, "protocol id cannot be empty")
	}
	if len(op.Params) == 0 {
		return sdkerrors.Wrap(ErrInvalidOperationData, "params cannot be empty")
	}
	return nil
}

// ABIEncode returns the canonical encoding of the operation record.
func (op OperationData) ABIEncode() ([]byte, error) {
	protocolAddr := op.ProtocolAddr
	if protocolAddr == nil {
		protocolAddr = []byte{}
	}
	return operationDataArgs.Pack(
		[ProtocolIDLength]byte(op.ProtocolID),
		op.SrcChainID,
		op.SrcBlockNumber,
		[32]byte(op.SrcOpTxID),
		op.Nonce,
		op.DestChainID,
		[]byte(protocolAddr),
		[SelectorLength]byte(op.FunctionSelector),
		[]byte(op.Params),
	)
}

// Fingerprint returns keccak256 of the canonical encoding. Operations with equal
// fingerprints are the same logical operation.
func (op OperationData) Fingerprint() (common.Hash, error) {
	bz, err := op.ABIEncode()
	if err != nil {
		return common.Hash{}, sdkerrors.Wrapf(ErrInvalidOperationData, "failed to encode operation: %v", err)
	}
	return crypto.Keccak256Hash(bz), nil
}

// SigningDigest returns the EIP-191 personal message hash keepers sign for the given
// fingerprint.
func SigningDigest(fingerprint common.Hash) []byte {
	return accounts.TextHash(fingerprint.Bytes())
}

// DecodeABIOperationData decodes the canonical encoding produced by ABIEncode.
func DecodeABIOperationData(bz []byte) (*OperationData, error) {
	values, err := operationDataArgs.Unpack(bz)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidOperationData, "failed to ABI decode operation: %v", err)
	}
	if len(values) != len(operationDataArgs) {
		return nil, sdkerrors.Wrapf(ErrInvalidOperationData, "expected %d fields, got %d", len(operationDataArgs), len(values))
	}

	protocolID, ok0 := values[0].([ProtocolIDLength]byte)
	srcChainID, ok1 := values[1].(uint64)
	srcBlockNumber, ok2 := values[2].(uint64)
	srcOpTxID, ok3 := values[3].([32]byte)
	nonce, ok4 := values[4].(uint64)
	destChainID, ok5 := values[5].(uint64)
	protocolAddr, ok6 := values[6].([]byte)
	selector, ok7 := values[7].([SelectorLength]byte)
	params, ok8 := values[8].([]byte)
	if !(ok0 && ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8) {
		return nil, sdkerrors.Wrap(ErrInvalidOperationData, "unexpected field types in operation encoding")
	}

	return &OperationData{
		ProtocolID:       protocolID,
		SrcChainID:       srcChainID,
		SrcBlockNumber:   srcBlockNumber,
		SrcOpTxID:        srcOpTxID,
		Nonce:            nonce,
		DestChainID:      destChainID,
		ProtocolAddr:     protocolAddr,
		FunctionSelector: selector,
		Params:           params,
	}, nil
}

// Fingerprint returns the fingerprint of the wrapped operation.
func (so SignedOperation) Fingerprint() (common.Hash, error) {
	return so.OperationData.Fingerprint()
}

// Signers returns the claimed signer of every signature, in order.
func (so SignedOperation) Signers() []common.Address {
	signers := make([]common.Address, len(so.Signatures))
	for i, sig := range so.Signatures {
		signers[i] = sig.Signer
	}
	return signers
}
