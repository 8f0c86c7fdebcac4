package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/aggregator"
	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/ledger"
	"github.com/Chiplis/Photon-solana-contracts/internal/relayer"
	"github.com/Chiplis/Photon-solana-contracts/internal/server"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport/rabbitmq"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// StartCmd returns the command running the relay until interrupted
func StartCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the governance relay",
		Long: `Consume keeper messages from RabbitMQ, aggregate their signatures and apply every
operation that reaches quorum to the ledger. The ledger is seeded from ledger.genesis_file
on first start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.start(ctx)
		},
	}
}

func (app *appContext) start(ctx context.Context) error {
	cfg, logger := app.cfg, app.logger
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Ledger.Executor == "" {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "ledger.executor is required to submit operations")
	}
	executor, err := types.ParseLedgerAddress(cfg.Ledger.Executor)
	if err != nil {
		return err
	}
	govID, err := cfg.GovProtocolID()
	if err != nil {
		return err
	}
	target, err := cfg.TargetProtocolID()
	if err != nil {
		return err
	}

	var genesis *types.GenesisState
	if cfg.Ledger.GenesisFile != "" {
		if genesis, err = ledger.LoadGenesis(cfg.Ledger.GenesisFile); err != nil {
			return err
		}
	}

	l, err := ledger.Open(app.home, dbm.BackendType(cfg.Ledger.Backend), genesis, logger)
	if err != nil {
		return err
	}
	defer l.Close()

	params, err := l.Params()
	if err != nil {
		return err
	}
	if params.GovProtocolID != govID {
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "configured gov protocol %s does not match ledger gov protocol %s", govID, params.GovProtocolID)
	}

	agg, err := aggregator.NewAggregator(cfg.Aggregator, l, logger)
	if err != nil {
		return err
	}
	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ, logger)
	if err != nil {
		return err
	}

	r := relayer.NewRelayer(consumer, agg, l, executor, target, logger)
	services := []service{{name: "relayer", run: r.Run}}

	if cfg.Telemetry.ListenAddress != "" {
		var metrics *telemetry.Metrics
		if cfg.Telemetry.Enabled {
			metrics, err = telemetry.New(telemetry.Config{
				ServiceName:             cfg.Telemetry.ServiceName,
				Enabled:                 true,
				EnableServiceLabel:      true,
				PrometheusRetentionTime: cfg.Telemetry.PrometheusRetentionTime,
			})
			if err != nil {
				return err
			}
		}
		srv := server.New(cfg.Telemetry.ListenAddress, server.NewRouter(l, metrics), logger)
		services = append(services, service{name: "server", run: srv.Start})
	}

	logger.Info("started photond", "home", app.home, "height", l.Height(), "gov_protocol", govID.String(), "target_protocol", target.String())
	if err := runServices(ctx, services...); err != nil {
		return err
	}
	logger.Info("stopped photond")
	return nil
}

type service struct {
	name string
	run  func(context.Context) error
}

// runServices runs every service until ctx is done or one of them returns. It
// returns once all services have returned, with the first failure.
func runServices(ctx context.Context, services ...service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		errCh = make(chan error, len(services))
	)
	for _, svc := range services {
		svc := svc
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.run(ctx); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("%s: %w", svc.name, err)
			}
			cancel()
		}()
	}
	wg.Wait()
	close(errCh)

	return <-errCh
}
