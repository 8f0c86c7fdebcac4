package cli

import (
	"github.com/spf13/cobra"
)

// GetEncodeCmd returns the commands building governance operation records
func GetEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:                        "encode",
		Short:                      "Encode governance operations into operation records",
		SuggestionsMinimumDistance: 2,
	}

	encodeCmd.AddCommand(
		NewAddAllowedProtocolCmd(),
		NewAddAllowedProtocolAddressCmd(),
		NewRemoveAllowedProtocolAddressCmd(),
		NewAddAllowedProposerAddressCmd(),
		NewRemoveAllowedProposerAddressCmd(),
		NewAddExecutorCmd(),
		NewRemoveExecutorCmd(),
		NewAddKeeperCmd(),
		NewRemoveKeeperCmd(),
		NewSetConsensusTargetRateCmd(),
		NewSetProtocolFeeCmd(),
	)

	return encodeCmd
}

// GetQueryCmd returns the query commands for the protocol registry
func GetQueryCmd(defaultHome string) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Query the protocol registry",
		SuggestionsMinimumDistance: 2,
	}

	queryCmd.AddCommand(
		GetCmdQueryProtocol(defaultHome),
		GetCmdQueryProtocols(defaultHome),
		GetCmdQueryParams(defaultHome),
	)

	return queryCmd
}
