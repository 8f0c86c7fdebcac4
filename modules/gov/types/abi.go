package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

var (
	bytes32Type, _      = abi.NewType("bytes32", "", nil)
	bytes4Type, _       = abi.NewType("bytes4", "", nil)
	bytesType, _        = abi.NewType("bytes", "", nil)
	uint64Type, _       = abi.NewType("uint64", "", nil)
	uint256Type, _      = abi.NewType("uint256", "", nil)
	addressArrayType, _ = abi.NewType("address[]", "", nil)

	// operationDataArgs is the canonical encoding of OperationData that keepers sign.
	operationDataArgs = abi.Arguments{
		{Name: "protocolId", Type: bytes32Type},
		{Name: "srcChainId", Type: uint64Type},
		{Name: "srcBlockNumber", Type: uint64Type},
		{Name: "srcOpTxId", Type: bytes32Type},
		{Name: "nonce", Type: uint64Type},
		{Name: "destChainId", Type: uint64Type},
		{Name: "protocolAddr", Type: bytesType},
		{Name: "functionSelector", Type: bytes4Type},
		{Name: "params", Type: bytesType},
	}

	// governance operation parameter schemas, keyed by shape
	protocolInitArgs = abi.Arguments{
		{Name: "protocolId", Type: bytes32Type},
		{Name: "consensusTargetRate", Type: uint256Type},
		{Name: "protocolFee", Type: uint256Type},
		{Name: "keepers", Type: addressArrayType},
	}
	protocolBytesArgs = abi.Arguments{
		{Name: "protocolId", Type: bytes32Type},
		{Name: "addr", Type: bytesType},
	}
	protocolAddressesArgs = abi.Arguments{
		{Name: "protocolId", Type: bytes32Type},
		{Name: "keepers", Type: addressArrayType},
	}
	protocolUintArgs = abi.Arguments{
		{Name: "protocolId", Type: bytes32Type},
		{Name: "value", Type: uint256Type},
	}
)

// maxUint64 bounds every 256-bit quantity the registry stores.
var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// unpackParams decodes calldata against a schema. Any layout mismatch is reported
// as ErrInvalidProtoMsg.
func unpackParams(args abi.Arguments, calldata []byte) ([]interface{}, error) {
	values, err := args.Unpack(calldata)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidProtoMsg, "failed to ABI decode params: %v", err)
	}
	if len(values) != len(args) {
		return nil, sdkerrors.Wrapf(ErrInvalidProtoMsg, "expected %d fields, got %d", len(args), len(values))
	}
	return values, nil
}

func protocolIDValue(v interface{}) (ProtocolID, error) {
	id, ok := v.([ProtocolIDLength]byte)
	if !ok {
		return ProtocolID{}, sdkerrors.Wrapf(ErrInvalidGovMsg, "invalid protocol id type %T", v)
	}
	return ProtocolID(id), nil
}

// uint64Value narrows an ABI uint256 to 64 bits. Values that do not fit are
// rejected rather than truncated.
func uint64Value(v interface{}, field string) (uint64, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return 0, sdkerrors.Wrapf(ErrInvalidGovMsg, "invalid %s type %T", field, v)
	}
	if n.Sign() < 0 || n.Cmp(maxUint64) > 0 {
		return 0, sdkerrors.Wrapf(ErrInvalidGovMsg, "%s %s does not fit in 64 bits", field, n)
	}
	return n.Uint64(), nil
}

func bytesValue(v interface{}, field string) ([]byte, error) {
	bz, ok := v.([]byte)
	if !ok {
		return nil, sdkerrors.Wrapf(ErrInvalidGovMsg, "invalid %s type %T", field, v)
	}
	return bz, nil
}

func ledgerAddressValue(v interface{}, field string) (LedgerAddress, error) {
	bz, err := bytesValue(v, field)
	if err != nil {
		return LedgerAddress{}, err
	}
	addr, err := LedgerAddressFromBytes(bz)
	if err != nil {
		return LedgerAddress{}, sdkerrors.Wrap(err, field)
	}
	return addr, nil
}

func addressesValue(v interface{}, field string) ([]common.Address, error) {
	addrs, ok := v.([]common.Address)
	if !ok {
		return nil, sdkerrors.Wrapf(ErrInvalidGovMsg, "invalid %s type %T", field, v)
	}
	return addrs, nil
}

func packParams(args abi.Arguments, values ...interface{}) ([]byte, error) {
	bz, err := args.Pack(values...)
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrInvalidProtoMsg, "failed to ABI encode params: %v", err)
	}
	return bz, nil
}
