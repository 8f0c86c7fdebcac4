package types

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// GovOperation is a decoded governance operation. Apply is pure: it returns the
// mutated registry entry and never modifies its argument.
type GovOperation interface {
	Selector() Selector
	GetProtocolID() ProtocolID
	ABIEncode() ([]byte, error)
	Apply(info ProtocolInfo) (ProtocolInfo, error)
}

// NoopOperation marks operations that are decoded and validated but carry no
// registry mutation.
type NoopOperation interface {
	GovOperation
	Noop()
}

// operationHandler is the decode strategy registered for a selector.
type operationHandler struct {
	name   string
	decode func(calldata []byte) (GovOperation, error)
	// initializes marks operations that may target an uninitialized protocol
	initializes bool
}

var operationRegistry = map[Selector]operationHandler{
	SelectorAddAllowedProtocol:           {name: "addAllowedProtocol", decode: decodeAddAllowedProtocol, initializes: true},
	SelectorAddAllowedProtocolAddress:    {name: "addAllowedProtocolAddress", decode: decodeAddAllowedProtocolAddress},
	SelectorRemoveAllowedProtocolAddress: {name: "removeAllowedProtocolAddress", decode: decodeRemoveAllowedProtocolAddress},
	SelectorAddAllowedProposerAddress:    {name: "addAllowedProposerAddress", decode: decodeAddAllowedProposerAddress},
	SelectorRemoveAllowedProposerAddress: {name: "removeAllowedProposerAddress", decode: decodeRemoveAllowedProposerAddress},
	SelectorAddExecutor:                  {name: "addExecutor", decode: decodeAddExecutor},
	SelectorRemoveExecutor:               {name: "removeExecutor", decode: decodeRemoveExecutor},
	SelectorAddKeeper:                    {name: "addKeeper", decode: decodeAddKeeper},
	SelectorRemoveKeeper:                 {name: "removeKeeper", decode: decodeRemoveKeeper},
	SelectorSetConsensusTargetRate:       {name: "setConsensusTargetRate", decode: decodeSetConsensusTargetRate},
	SelectorSetProtocolFee:               {name: "setProtocolFee", decode: decodeSetProtocolFee},
}

// DecodeOperation decodes calldata according to the schema registered for selector.
// Calldata must be the canonical encoding of the decoded operation, so every operation
// has exactly one fingerprint.
func DecodeOperation(selector Selector, calldata []byte) (GovOperation, error) {
	h, ok := operationRegistry[selector]
	if !ok {
		return nil, sdkerrors.Wrapf(ErrUnsupportedOperation, "selector %s", selector)
	}
	op, err := h.decode(calldata)
	if err != nil {
		return nil, err
	}

	canonical, err := op.ABIEncode()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(canonical, calldata) {
		return nil, sdkerrors.Wrapf(ErrInvalidProtoMsg, "calldata is not canonically encoded for %s", h.name)
	}
	return op, nil
}

// IsSupportedSelector reports whether selector belongs to the closed operation set.
func IsSupportedSelector(selector Selector) bool {
	_, ok := operationRegistry[selector]
	return ok
}

// InitializesProtocol reports whether the operation may target a protocol that is not
// initialized yet.
func InitializesProtocol(selector Selector) bool {
	return operationRegistry[selector].initializes
}

// SupportedSelectors returns every selector of the operation set.
func SupportedSelectors() []Selector {
	selectors := make([]Selector, 0, len(operationRegistry))
	for s := range operationRegistry {
		selectors = append(selectors, s)
	}
	return selectors
}

// AddAllowedProtocolOperation initializes a protocol registry entry.
type AddAllowedProtocolOperation struct {
	ProtocolID          ProtocolID
	ConsensusTargetRate uint64
	ProtocolFee         uint64
	Keepers             []common.Address
}

func decodeAddAllowedProtocol(calldata []byte) (GovOperation, error) {
	values, err := unpackParams(protocolInitArgs, calldata)
	if err != nil {
		return nil, err
	}
	protocolID, err := protocolIDValue(values[0])
	if err != nil {
		return nil, err
	}
	rate, err := uint64Value(values[1], "consensus target rate")
	if err != nil {
		return nil, err
	}
	fee, err := uint64Value(values[2], "protocol fee")
	if err != nil {
		return nil, err
	}
	keepers, err := addressesValue(values[3], "keepers")
	if err != nil {
		return nil, err
	}
	return &AddAllowedProtocolOperation{ProtocolID: protocolID, ConsensusTargetRate: rate, ProtocolFee: fee, Keepers: keepers}, nil
}

func (AddAllowedProtocolOperation) Selector() Selector           { return SelectorAddAllowedProtocol }
func (op AddAllowedProtocolOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op AddAllowedProtocolOperation) ABIEncode() ([]byte, error) {
	keepers := op.Keepers
	if keepers == nil {
		keepers = []common.Address{}
	}
	return packParams(protocolInitArgs, [ProtocolIDLength]byte(op.ProtocolID),
		new(big.Int).SetUint64(op.ConsensusTargetRate), new(big.Int).SetUint64(op.ProtocolFee), keepers)
}

func (op AddAllowedProtocolOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	keepers, err := info.Keepers.Replace(op.Keepers...)
	if err != nil {
		return info, sdkerrors.Wrap(err, "keepers")
	}
	info.IsInit = true
	info.ConsensusTargetRate = op.ConsensusTargetRate
	info.ProtocolFee = op.ProtocolFee
	info.Keepers = keepers
	return info, nil
}

// AddAllowedProtocolAddressOperation sets the protocol address.
type AddAllowedProtocolAddressOperation struct {
	ProtocolID      ProtocolID
	ProtocolAddress LedgerAddress
}

func decodeAddAllowedProtocolAddress(calldata []byte) (GovOperation, error) {
	protocolID, addr, err := decodeProtocolLedgerAddress(calldata, "protocol address")
	if err != nil {
		return nil, err
	}
	return &AddAllowedProtocolAddressOperation{ProtocolID: protocolID, ProtocolAddress: addr}, nil
}

func (AddAllowedProtocolAddressOperation) Selector() Selector {
	return SelectorAddAllowedProtocolAddress
}
func (op AddAllowedProtocolAddressOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op AddAllowedProtocolAddressOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), op.ProtocolAddress.Bytes())
}

func (op AddAllowedProtocolAddressOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.ProtocolAddress = op.ProtocolAddress
	return info, nil
}

// RemoveAllowedProtocolAddressOperation clears the protocol address.
type RemoveAllowedProtocolAddressOperation struct {
	ProtocolID      ProtocolID
	ProtocolAddress LedgerAddress
}

func decodeRemoveAllowedProtocolAddress(calldata []byte) (GovOperation, error) {
	protocolID, addr, err := decodeProtocolLedgerAddress(calldata, "protocol address")
	if err != nil {
		return nil, err
	}
	return &RemoveAllowedProtocolAddressOperation{ProtocolID: protocolID, ProtocolAddress: addr}, nil
}

func (RemoveAllowedProtocolAddressOperation) Selector() Selector {
	return SelectorRemoveAllowedProtocolAddress
}
func (op RemoveAllowedProtocolAddressOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op RemoveAllowedProtocolAddressOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), op.ProtocolAddress.Bytes())
}

// Apply clears the address regardless of which address the operation names.
func (op RemoveAllowedProtocolAddressOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.ProtocolAddress = LedgerAddress{}
	return info, nil
}

// AddAllowedProposerAddressOperation is accepted but has no registry effect yet.
type AddAllowedProposerAddressOperation struct {
	ProtocolID ProtocolID
	Proposer   []byte
}

func decodeAddAllowedProposerAddress(calldata []byte) (GovOperation, error) {
	protocolID, proposer, err := decodeProtocolBytes(calldata, "proposer address")
	if err != nil {
		return nil, err
	}
	return &AddAllowedProposerAddressOperation{ProtocolID: protocolID, Proposer: proposer}, nil
}

func (AddAllowedProposerAddressOperation) Selector() Selector {
	return SelectorAddAllowedProposerAddress
}
func (op AddAllowedProposerAddressOperation) GetProtocolID() ProtocolID { return op.ProtocolID }
func (AddAllowedProposerAddressOperation) Noop()                        {}

func (op AddAllowedProposerAddressOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), nonNilBytes(op.Proposer))
}

func (op AddAllowedProposerAddressOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	return info, nil
}

// RemoveAllowedProposerAddressOperation is accepted but has no registry effect yet.
type RemoveAllowedProposerAddressOperation struct {
	ProtocolID ProtocolID
	Proposer   []byte
}

func decodeRemoveAllowedProposerAddress(calldata []byte) (GovOperation, error) {
	protocolID, proposer, err := decodeProtocolBytes(calldata, "proposer address")
	if err != nil {
		return nil, err
	}
	return &RemoveAllowedProposerAddressOperation{ProtocolID: protocolID, Proposer: proposer}, nil
}

func (RemoveAllowedProposerAddressOperation) Selector() Selector {
	return SelectorRemoveAllowedProposerAddress
}
func (op RemoveAllowedProposerAddressOperation) GetProtocolID() ProtocolID { return op.ProtocolID }
func (RemoveAllowedProposerAddressOperation) Noop()                        {}

func (op RemoveAllowedProposerAddressOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), nonNilBytes(op.Proposer))
}

func (op RemoveAllowedProposerAddressOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	return info, nil
}

// AddExecutorOperation appends an executor, moving it to the end when already present.
type AddExecutorOperation struct {
	ProtocolID ProtocolID
	Executor   LedgerAddress
}

func decodeAddExecutor(calldata []byte) (GovOperation, error) {
	protocolID, executor, err := decodeProtocolLedgerAddress(calldata, "executor")
	if err != nil {
		return nil, err
	}
	return &AddExecutorOperation{ProtocolID: protocolID, Executor: executor}, nil
}

func (AddExecutorOperation) Selector() Selector           { return SelectorAddExecutor }
func (op AddExecutorOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op AddExecutorOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), op.Executor.Bytes())
}

func (op AddExecutorOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	executors, err := info.Executors.MoveToEnd(op.Executor)
	if err != nil {
		return info, sdkerrors.Wrap(err, "executors")
	}
	info.Executors = executors
	return info, nil
}

// RemoveExecutorOperation removes every occurrence of an executor.
type RemoveExecutorOperation struct {
	ProtocolID ProtocolID
	Executor   LedgerAddress
}

func decodeRemoveExecutor(calldata []byte) (GovOperation, error) {
	protocolID, executor, err := decodeProtocolLedgerAddress(calldata, "executor")
	if err != nil {
		return nil, err
	}
	return &RemoveExecutorOperation{ProtocolID: protocolID, Executor: executor}, nil
}

func (RemoveExecutorOperation) Selector() Selector           { return SelectorRemoveExecutor }
func (op RemoveExecutorOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op RemoveExecutorOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolBytesArgs, [ProtocolIDLength]byte(op.ProtocolID), op.Executor.Bytes())
}

func (op RemoveExecutorOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.Executors = info.Executors.RemoveAll(op.Executor)
	return info, nil
}

// AddKeeperOperation unions new keepers into the keeper set.
type AddKeeperOperation struct {
	ProtocolID ProtocolID
	Keepers    []common.Address
}

func decodeAddKeeper(calldata []byte) (GovOperation, error) {
	protocolID, keepers, err := decodeProtocolAddresses(calldata)
	if err != nil {
		return nil, err
	}
	return &AddKeeperOperation{ProtocolID: protocolID, Keepers: keepers}, nil
}

func (AddKeeperOperation) Selector() Selector           { return SelectorAddKeeper }
func (op AddKeeperOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op AddKeeperOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolAddressesArgs, [ProtocolIDLength]byte(op.ProtocolID), nonNilAddresses(op.Keepers))
}

func (op AddKeeperOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	keepers, err := info.Keepers.Union(op.Keepers...)
	if err != nil {
		return info, sdkerrors.Wrap(err, "keepers")
	}
	info.Keepers = keepers
	return info, nil
}

// RemoveKeeperOperation removes keepers from the keeper set.
type RemoveKeeperOperation struct {
	ProtocolID ProtocolID
	Keepers    []common.Address
}

func decodeRemoveKeeper(calldata []byte) (GovOperation, error) {
	protocolID, keepers, err := decodeProtocolAddresses(calldata)
	if err != nil {
		return nil, err
	}
	return &RemoveKeeperOperation{ProtocolID: protocolID, Keepers: keepers}, nil
}

func (RemoveKeeperOperation) Selector() Selector           { return SelectorRemoveKeeper }
func (op RemoveKeeperOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op RemoveKeeperOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolAddressesArgs, [ProtocolIDLength]byte(op.ProtocolID), nonNilAddresses(op.Keepers))
}

func (op RemoveKeeperOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.Keepers = info.Keepers.Difference(op.Keepers...)
	return info, nil
}

// SetConsensusTargetRateOperation overwrites the consensus target rate.
type SetConsensusTargetRateOperation struct {
	ProtocolID          ProtocolID
	ConsensusTargetRate uint64
}

func decodeSetConsensusTargetRate(calldata []byte) (GovOperation, error) {
	protocolID, rate, err := decodeProtocolUint(calldata, "consensus target rate")
	if err != nil {
		return nil, err
	}
	return &SetConsensusTargetRateOperation{ProtocolID: protocolID, ConsensusTargetRate: rate}, nil
}

func (SetConsensusTargetRateOperation) Selector() Selector           { return SelectorSetConsensusTargetRate }
func (op SetConsensusTargetRateOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op SetConsensusTargetRateOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolUintArgs, [ProtocolIDLength]byte(op.ProtocolID), new(big.Int).SetUint64(op.ConsensusTargetRate))
}

func (op SetConsensusTargetRateOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.ConsensusTargetRate = op.ConsensusTargetRate
	return info, nil
}

// SetProtocolFeeOperation overwrites the protocol fee.
type SetProtocolFeeOperation struct {
	ProtocolID  ProtocolID
	ProtocolFee uint64
}

func decodeSetProtocolFee(calldata []byte) (GovOperation, error) {
	protocolID, fee, err := decodeProtocolUint(calldata, "protocol fee")
	if err != nil {
		return nil, err
	}
	return &SetProtocolFeeOperation{ProtocolID: protocolID, ProtocolFee: fee}, nil
}

func (SetProtocolFeeOperation) Selector() Selector           { return SelectorSetProtocolFee }
func (op SetProtocolFeeOperation) GetProtocolID() ProtocolID { return op.ProtocolID }

func (op SetProtocolFeeOperation) ABIEncode() ([]byte, error) {
	return packParams(protocolUintArgs, [ProtocolIDLength]byte(op.ProtocolID), new(big.Int).SetUint64(op.ProtocolFee))
}

func (op SetProtocolFeeOperation) Apply(info ProtocolInfo) (ProtocolInfo, error) {
	info.ProtocolFee = op.ProtocolFee
	return info, nil
}

func decodeProtocolBytes(calldata []byte, field string) (ProtocolID, []byte, error) {
	values, err := unpackParams(protocolBytesArgs, calldata)
	if err != nil {
		return ProtocolID{}, nil, err
	}
	protocolID, err := protocolIDValue(values[0])
	if err != nil {
		return ProtocolID{}, nil, err
	}
	bz, err := bytesValue(values[1], field)
	if err != nil {
		return ProtocolID{}, nil, err
	}
	return protocolID, bz, nil
}

func decodeProtocolLedgerAddress(calldata []byte, field string) (ProtocolID, LedgerAddress, error) {
	values, err := unpackParams(protocolBytesArgs, calldata)
	if err != nil {
		return ProtocolID{}, LedgerAddress{}, err
	}
	protocolID, err := protocolIDValue(values[0])
	if err != nil {
		return ProtocolID{}, LedgerAddress{}, err
	}
	addr, err := ledgerAddressValue(values[1], field)
	if err != nil {
		return ProtocolID{}, LedgerAddress{}, err
	}
	return protocolID, addr, nil
}

func decodeProtocolAddresses(calldata []byte) (ProtocolID, []common.Address, error) {
	values, err := unpackParams(protocolAddressesArgs, calldata)
	if err != nil {
		return ProtocolID{}, nil, err
	}
	protocolID, err := protocolIDValue(values[0])
	if err != nil {
		return ProtocolID{}, nil, err
	}
	keepers, err := addressesValue(values[1], "keepers")
	if err != nil {
		return ProtocolID{}, nil, err
	}
	return protocolID, keepers, nil
}

func decodeProtocolUint(calldata []byte, field string) (ProtocolID, uint64, error) {
	values, err := unpackParams(protocolUintArgs, calldata)
	if err != nil {
		return ProtocolID{}, 0, err
	}
	protocolID, err := protocolIDValue(values[0])
	if err != nil {
		return ProtocolID{}, 0, err
	}
	v, err := uint64Value(values[1], field)
	if err != nil {
		return ProtocolID{}, 0, err
	}
	return protocolID, v, nil
}

func nonNilBytes(bz []byte) []byte {
	if bz == nil {
		return []byte{}
	}
	return bz
}

func nonNilAddresses(addrs []common.Address) []common.Address {
	if addrs == nil {
		return []common.Address{}
	}
	return addrs
}

// NewOperationData wraps a governance operation into an operation record addressed
// to the governance protocol.
func NewOperationData(govProtocolID ProtocolID, op GovOperation, nonce uint64) (OperationData, error) {
	params, err := op.ABIEncode()
	if err != nil {
		return OperationData{}, err
	}
	return OperationData{
		ProtocolID:       govProtocolID,
		Nonce:            nonce,
		FunctionSelector: op.Selector(),
		Params:           params,
	}, nil
}
