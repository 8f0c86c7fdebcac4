package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chiplis/Photon-solana-contracts/internal/collector"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport/rabbitmq"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/client/cli"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const flagDryRun = "dry-run"

// AttestCmd returns the command signing operation records with the keeper key
func AttestCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attest [operation-data-file]...",
		Short: "Sign operation records with the collector key and publish them",
		Long: `Sign every JSON operation record with collector.private_key or collector.key_file and
publish the keeper message to RabbitMQ. Use - to read a record from stdin. With --dry-run the
signed operations are printed instead of published.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.cfg.Collector.LoadKey()
			if err != nil {
				return err
			}

			ops := make([]types.OperationData, 0, len(args))
			for _, path := range args {
				opData, err := cli.ReadOperationData(cmd, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				ops = append(ops, opData)
			}

			dryRun, err := cmd.Flags().GetBool(flagDryRun)
			if err != nil {
				return err
			}
			if dryRun {
				c := collector.NewCollector(key, nil, app.logger)
				return printAttestations(cmd, c, ops)
			}

			publisher, err := rabbitmq.NewPublisher(app.cfg.RabbitMQ, app.logger)
			if err != nil {
				return err
			}
			defer publisher.Close()

			c := collector.NewCollector(key, publisher, app.logger)

			// validate everything before publishing anything
			for _, opData := range ops {
				if _, err := c.Attest(opData); err != nil {
					return err
				}
			}

			queue := make(chan types.OperationData, len(ops))
			for _, opData := range ops {
				queue <- opData
			}
			close(queue)

			return c.Run(cmd.Context(), queue)
		},
	}

	cmd.Flags().Bool(flagDryRun, false, "Print the signed operations instead of publishing them")
	return cmd
}

func printAttestations(cmd *cobra.Command, c *collector.Collector, ops []types.OperationData) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, opData := range ops {
		sig, err := c.Attest(opData)
		if err != nil {
			return err
		}
		if err := enc.Encode(types.SignedOperation{OperationData: opData, Signatures: []types.KeeperSignature{sig}}); err != nil {
			return err
		}
	}
	return nil
}
