package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/version"

	"github.com/Chiplis/Photon-solana-contracts/internal/ledger"
	"github.com/Chiplis/Photon-solana-contracts/internal/validate"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const FlagLedgerBackend = "ledger-backend"

// ProtocolOutput is a registry entry together with its identity.
type ProtocolOutput struct {
	ProtocolID types.ProtocolID   `json:"protocol_id"`
	Info       types.ProtocolInfo `json:"info"`
}

// GetCmdQueryProtocol returns the command querying a single registry entry
func GetCmdQueryProtocol(defaultHome string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "protocol [protocol-id]",
		Short:   "Query the registry entry of a protocol",
		Long:    "Query the registry entry of a protocol by its name or 0x prefixed hex identity.",
		Example: fmt.Sprintf("%s query protocol %s", version.AppName, types.DefaultGovProtocolName),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocolID, err := validate.ProtocolRequest(args[0])
			if err != nil {
				return err
			}

			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			info, found, err := l.ProtocolInfo(protocolID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("protocol %s not found", protocolID)
			}

			return printOutput(cmd, ProtocolOutput{ProtocolID: protocolID, Info: info})
		},
	}

	addQueryFlags(cmd, defaultHome)
	return cmd
}

// GetCmdQueryProtocols returns the command querying every registry entry
func GetCmdQueryProtocols(defaultHome string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "protocols",
		Short:   "Query every registry entry",
		Example: fmt.Sprintf("%s query protocols", version.AppName),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			protocols, err := l.Protocols()
			if err != nil {
				return err
			}

			return printOutput(cmd, protocols)
		},
	}

	addQueryFlags(cmd, defaultHome)
	return cmd
}

// GetCmdQueryParams returns the command querying the registry parameters
func GetCmdQueryParams(defaultHome string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "params",
		Short:   "Query the registry parameters",
		Example: fmt.Sprintf("%s query params", version.AppName),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			params, err := l.Params()
			if err != nil {
				return err
			}

			return printOutput(cmd, params)
		},
	}

	addQueryFlags(cmd, defaultHome)
	return cmd
}

// openLedger opens the ledger under the home directory. The ledger must already be
// initialized.
func openLedger(cmd *cobra.Command) (*ledger.Ledger, error) {
	home, err := cmd.Flags().GetString(flags.FlagHome)
	if err != nil {
		return nil, err
	}
	backend, err := cmd.Flags().GetString(FlagLedgerBackend)
	if err != nil {
		return nil, err
	}
	return ledger.Open(home, dbm.BackendType(backend), nil, log.NewNopLogger())
}

func addQueryFlags(cmd *cobra.Command, defaultHome string) {
	cmd.Flags().String(flags.FlagHome, defaultHome, "Directory holding the ledger database")
	cmd.Flags().String(FlagLedgerBackend, string(dbm.GoLevelDBBackend), "Ledger database backend")
	addOutputFlag(cmd)
}
