package cli

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/version"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const (
	FlagGovProtocol    = "gov-protocol"
	FlagNonce          = "nonce"
	FlagSrcChainID     = "src-chain-id"
	FlagSrcBlockNumber = "src-block-number"
	FlagSrcOpTxID      = "src-op-tx-id"
	FlagDestChainID    = "dest-chain-id"
	FlagProtocolAddr   = "protocol-addr"
	FlagProtocolFee    = "protocol-fee"
)

// EncodedOperation is the output of every encode command.
type EncodedOperation struct {
	OperationData types.OperationData `json:"operation_data"`
	Fingerprint   common.Hash         `json:"fingerprint"`
}

// NewAddAllowedProtocolCmd returns the command encoding an addAllowedProtocol operation
func NewAddAllowedProtocolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add-allowed-protocol [protocol-id] [consensus-target-rate] [keepers]",
		Short:   "Encode the initialization of a protocol with a comma separated keeper list",
		Long:    "Encode the initialization of a protocol. The consensus target rate is in basis points (10000 = 100%).",
		Example: fmt.Sprintf("%s encode add-allowed-protocol my-protocol 6000 0x01..,0x02.. --nonce 1", version.AppName),
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := types.ParseProtocolID(args[0])
			if err != nil {
				return err
			}
			rate, err := cast.ToUint64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid consensus target rate: %w", err)
			}
			keepers, err := parseKeepers(args[2])
			if err != nil {
				return err
			}
			fee, err := cmd.Flags().GetUint64(FlagProtocolFee)
			if err != nil {
				return err
			}

			return encodeOperation(cmd, &types.AddAllowedProtocolOperation{
				ProtocolID:          protocolID,
				ConsensusTargetRate: rate,
				ProtocolFee:         fee,
				Keepers:             keepers,
			})
		},
	}

	cmd.Flags().Uint64(FlagProtocolFee, 0, "Initial protocol fee")
	addEncodeFlags(cmd)

	return cmd
}

// NewAddAllowedProtocolAddressCmd returns the command encoding an addAllowedProtocolAddress operation
func NewAddAllowedProtocolAddressCmd() *cobra.Command {
	return newLedgerAddressCmd("add-allowed-protocol-address", "Encode setting the ledger address of a protocol",
		func(protocolID types.ProtocolID, addr types.LedgerAddress) types.GovOperation {
			return &types.AddAllowedProtocolAddressOperation{ProtocolID: protocolID, ProtocolAddress: addr}
		})
}

// NewRemoveAllowedProtocolAddressCmd returns the command encoding a removeAllowedProtocolAddress operation
func NewRemoveAllowedProtocolAddressCmd() *cobra.Command {
	return newLedgerAddressCmd("remove-allowed-protocol-address", "Encode clearing the ledger address of a protocol",
		func(protocolID types.ProtocolID, addr types.LedgerAddress) types.GovOperation {
			return &types.RemoveAllowedProtocolAddressOperation{ProtocolID: protocolID, ProtocolAddress: addr}
		})
}

// NewAddAllowedProposerAddressCmd returns the command encoding an addAllowedProposerAddress operation
func NewAddAllowedProposerAddressCmd() *cobra.Command {
	return newProposerCmd("add-allowed-proposer-address", "Encode allowing a proposer for a protocol",
		func(protocolID types.ProtocolID, proposer []byte) types.GovOperation {
			return &types.AddAllowedProposerAddressOperation{ProtocolID: protocolID, Proposer: proposer}
		})
}

// NewRemoveAllowedProposerAddressCmd returns the command encoding a removeAllowedProposerAddress operation
func NewRemoveAllowedProposerAddressCmd() *cobra.Command {
	return newProposerCmd("remove-allowed-proposer-address", "Encode disallowing a proposer for a protocol",
		func(protocolID types.ProtocolID, proposer []byte) types.GovOperation {
			return &types.RemoveAllowedProposerAddressOperation{ProtocolID: protocolID, Proposer: proposer}
		})
}

// NewAddExecutorCmd returns the command encoding an addExecutor operation
func NewAddExecutorCmd() *cobra.Command {
	return newLedgerAddressCmd("add-executor", "Encode adding an executor to a protocol",
		func(protocolID types.ProtocolID, addr types.LedgerAddress) types.GovOperation {
			return &types.AddExecutorOperation{ProtocolID: protocolID, Executor: addr}
		})
}

// NewRemoveExecutorCmd returns the command encoding a removeExecutor operation
func NewRemoveExecutorCmd() *cobra.Command {
	return newLedgerAddressCmd("remove-executor", "Encode removing an executor from a protocol",
		func(protocolID types.ProtocolID, addr types.LedgerAddress) types.GovOperation {
			return &types.RemoveExecutorOperation{ProtocolID: protocolID, Executor: addr}
		})
}

// NewAddKeeperCmd returns the command encoding an addKeeper operation
func NewAddKeeperCmd() *cobra.Command {
	return newKeepersCmd("add-keeper", "Encode adding keepers to a protocol",
		func(protocolID types.ProtocolID, keepers []common.Address) types.GovOperation {
			return &types.AddKeeperOperation{ProtocolID: protocolID, Keepers: keepers}
		})
}

// NewRemoveKeeperCmd returns the command encoding a removeKeeper operation
func NewRemoveKeeperCmd() *cobra.Command {
	return newKeepersCmd("remove-keeper", "Encode removing keepers from a protocol",
		func(protocolID types.ProtocolID, keepers []common.Address) types.GovOperation {
			return &types.RemoveKeeperOperation{ProtocolID: protocolID, Keepers: keepers}
		})
}

// NewSetConsensusTargetRateCmd returns the command encoding a setConsensusTargetRate operation
func NewSetConsensusTargetRateCmd() *cobra.Command {
	return newUintCmd("set-consensus-target-rate", "rate", "Encode setting the consensus target rate (basis points) of a protocol",
		func(protocolID types.ProtocolID, rate uint64) types.GovOperation {
			return &types.SetConsensusTargetRateOperation{ProtocolID: protocolID, ConsensusTargetRate: rate}
		})
}

// NewSetProtocolFeeCmd returns the command encoding a setProtocolFee operation
func NewSetProtocolFeeCmd() *cobra.Command {
	return newUintCmd("set-protocol-fee", "fee", "Encode setting the fee of a protocol",
		func(protocolID types.ProtocolID, fee uint64) types.GovOperation {
			return &types.SetProtocolFeeOperation{ProtocolID: protocolID, ProtocolFee: fee}
		})
}

func newLedgerAddressCmd(use, short string, build func(types.ProtocolID, types.LedgerAddress) types.GovOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [protocol-id] [ledger-address]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := types.ParseProtocolID(args[0])
			if err != nil {
				return err
			}
			addr, err := types.ParseLedgerAddress(args[1])
			if err != nil {
				return err
			}
			return encodeOperation(cmd, build(protocolID, addr))
		},
	}

	addEncodeFlags(cmd)
	return cmd
}

func newProposerCmd(use, short string, build func(types.ProtocolID, []byte) types.GovOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [protocol-id] [proposer-hex]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := types.ParseProtocolID(args[0])
			if err != nil {
				return err
			}
			proposer, err := hexutil.Decode(args[1])
			if err != nil {
				return fmt.Errorf("invalid proposer: %w", err)
			}
			return encodeOperation(cmd, build(protocolID, proposer))
		},
	}

	addEncodeFlags(cmd)
	return cmd
}

func newKeepersCmd(use, short string, build func(types.ProtocolID, []common.Address) types.GovOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [protocol-id] [keepers]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := types.ParseProtocolID(args[0])
			if err != nil {
				return err
			}
			keepers, err := parseKeepers(args[1])
			if err != nil {
				return err
			}
			return encodeOperation(cmd, build(protocolID, keepers))
		},
	}

	addEncodeFlags(cmd)
	return cmd
}

func newUintCmd(use, arg, short string, build func(types.ProtocolID, uint64) types.GovOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [protocol-id] [%s]", use, arg),
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := types.ParseProtocolID(args[0])
			if err != nil {
				return err
			}
			v, err := cast.ToUint64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid %s: %w", arg, err)
			}
			return encodeOperation(cmd, build(protocolID, v))
		},
	}

	addEncodeFlags(cmd)
	return cmd
}

// parseKeepers parses a comma separated list of hex keeper addresses.
func parseKeepers(s string) ([]common.Address, error) {
	var keepers []common.Address
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !common.IsHexAddress(k) {
			return nil, fmt.Errorf("invalid keeper address %q", k)
		}
		keepers = append(keepers, common.HexToAddress(k))
	}
	return keepers, nil
}

func encodeOperation(cmd *cobra.Command, op types.GovOperation) error {
	opData, err := operationDataFromFlags(cmd, op)
	if err != nil {
		return err
	}
	fingerprint, err := opData.Fingerprint()
	if err != nil {
		return err
	}
	return printOutput(cmd, EncodedOperation{OperationData: opData, Fingerprint: fingerprint})
}

func operationDataFromFlags(cmd *cobra.Command, op types.GovOperation) (types.OperationData, error) {
	govName, err := cmd.Flags().GetString(FlagGovProtocol)
	if err != nil {
		return types.OperationData{}, err
	}
	govID, err := types.ParseProtocolID(govName)
	if err != nil {
		return types.OperationData{}, err
	}

	nonce, err := cmd.Flags().GetUint64(FlagNonce)
	if err != nil {
		return types.OperationData{}, err
	}
	opData, err := types.NewOperationData(govID, op, nonce)
	if err != nil {
		return types.OperationData{}, err
	}

	if opData.SrcChainID, err = cmd.Flags().GetUint64(FlagSrcChainID); err != nil {
		return types.OperationData{}, err
	}
	if opData.SrcBlockNumber, err = cmd.Flags().GetUint64(FlagSrcBlockNumber); err != nil {
		return types.OperationData{}, err
	}
	if opData.DestChainID, err = cmd.Flags().GetUint64(FlagDestChainID); err != nil {
		return types.OperationData{}, err
	}

	txID, err := cmd.Flags().GetString(FlagSrcOpTxID)
	if err != nil {
		return types.OperationData{}, err
	}
	if txID != "" {
		bz, err := hexutil.Decode(txID)
		if err != nil || len(bz) != common.HashLength {
			return types.OperationData{}, fmt.Errorf("source transaction id must be a 0x prefixed %d byte hash", common.HashLength)
		}
		opData.SrcOpTxID = common.BytesToHash(bz)
	}

	protocolAddr, err := cmd.Flags().GetString(FlagProtocolAddr)
	if err != nil {
		return types.OperationData{}, err
	}
	if protocolAddr != "" {
		if opData.ProtocolAddr, err = hexutil.Decode(protocolAddr); err != nil {
			return types.OperationData{}, fmt.Errorf("invalid protocol address: %w", err)
		}
	}

	return opData, opData.ValidateBasic()
}

func addEncodeFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagGovProtocol, types.DefaultGovProtocolName, "Governance protocol identity, as name or 0x prefixed hex")
	cmd.Flags().Uint64(FlagNonce, 0, "Operation nonce assigned by the source chain")
	cmd.Flags().Uint64(FlagSrcChainID, 0, "Source chain id")
	cmd.Flags().Uint64(FlagSrcBlockNumber, 0, "Source block number")
	cmd.Flags().String(FlagSrcOpTxID, "", "Source transaction hash (0x prefixed)")
	cmd.Flags().Uint64(FlagDestChainID, 0, "Destination chain id")
	cmd.Flags().String(FlagProtocolAddr, "", "Protocol address on the source chain (0x prefixed)")
	addOutputFlag(cmd)
}
