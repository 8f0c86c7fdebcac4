package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/version"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// FingerprintOutput is the output of the fingerprint command.
type FingerprintOutput struct {
	Fingerprint   common.Hash   `json:"fingerprint"`
	SigningDigest hexutil.Bytes `json:"signing_digest"`
	Operation     string        `json:"operation"`
}

// QuorumOutput is the output of the quorum command.
type QuorumOutput struct {
	KeeperCount         int    `json:"keeper_count"`
	ConsensusTargetRate uint64 `json:"consensus_target_rate"`
	RequiredSignatures  string `json:"required_signatures"`
}

// GetFingerprintCmd returns the command computing the fingerprint of an operation record
func GetFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fingerprint [operation-data-file]",
		Short:   "Compute the fingerprint keepers sign for a JSON operation record",
		Long:    "Compute the fingerprint keepers sign for a JSON operation record. Use - to read the record from stdin.",
		Example: fmt.Sprintf("%s fingerprint operation.json", version.AppName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opData, err := ReadOperationData(cmd, args[0])
			if err != nil {
				return err
			}
			if err := opData.ValidateBasic(); err != nil {
				return err
			}

			fingerprint, err := opData.Fingerprint()
			if err != nil {
				return err
			}

			return printOutput(cmd, FingerprintOutput{
				Fingerprint:   fingerprint,
				SigningDigest: types.SigningDigest(fingerprint),
				Operation:     opData.FunctionSelector.String(),
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

// GetQuorumCmd returns the command computing the signatures required for quorum
func GetQuorumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quorum [keeper-count] [consensus-target-rate]",
		Short:   "Compute the number of distinct keeper signatures required for quorum",
		Example: fmt.Sprintf("%s quorum 5 6000", version.AppName),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keeperCount, err := cast.ToIntE(args[0])
			if err != nil || keeperCount < 0 {
				return fmt.Errorf("invalid keeper count %q", args[0])
			}
			rate, err := cast.ToUint64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid consensus target rate: %w", err)
			}

			return printOutput(cmd, QuorumOutput{
				KeeperCount:         keeperCount,
				ConsensusTargetRate: rate,
				RequiredSignatures:  types.RequiredSignatures(keeperCount, rate).String(),
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

// ReadOperationData decodes an operation record from a file, or stdin when path is -.
// A full encode output or a signed operation is accepted as well.
func ReadOperationData(cmd *cobra.Command, path string) (types.OperationData, error) {
	var (
		bz  []byte
		err error
	)
	if path == "-" {
		bz, err = io.ReadAll(cmd.InOrStdin())
	} else {
		bz, err = os.ReadFile(path)
	}
	if err != nil {
		return types.OperationData{}, err
	}

	var wrapped struct {
		OperationData *types.OperationData `json:"operation_data"`
	}
	if err := json.Unmarshal(bz, &wrapped); err == nil && wrapped.OperationData != nil {
		return *wrapped.OperationData, nil
	}

	var opData types.OperationData
	if err := json.Unmarshal(bz, &opData); err != nil {
		return types.OperationData{}, fmt.Errorf("failed to decode operation data: %w", err)
	}
	return opData, nil
}
