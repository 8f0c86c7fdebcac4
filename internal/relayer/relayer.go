package relayer

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tendermint/tendermint/libs/log"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/aggregator"
	"github.com/Chiplis/Photon-solana-contracts/internal/ledger"
	"github.com/Chiplis/Photon-solana-contracts/internal/telemetry"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// Submitter applies a signed governance operation to the registry.
type Submitter interface {
	Submit(executor types.LedgerAddress, signedOp types.SignedOperation, target types.ProtocolID) (*ledger.Result, error)
}

// Relayer moves keeper attestations from the transport through the aggregator and
// submits every bundle that reaches quorum to the ledger.
type Relayer struct {
	consumer   transport.Consumer
	aggregator *aggregator.Aggregator
	submitter  Submitter
	executor   types.LedgerAddress
	target     types.ProtocolID
	logger     log.Logger
}

// NewRelayer creates a Relayer submitting as executor against target.
func NewRelayer(
	consumer transport.Consumer,
	agg *aggregator.Aggregator,
	submitter Submitter,
	executor types.LedgerAddress,
	target types.ProtocolID,
	logger log.Logger,
) *Relayer {
	return &Relayer{
		consumer:   consumer,
		aggregator: agg,
		submitter:  submitter,
		executor:   executor,
		target:     target,
		logger:     logger.With("module", "relayer"),
	}
}

// Run consumes keeper messages and prunes the aggregator until ctx is done or the
// consumer fails.
func (r *Relayer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.aggregator.Run(ctx)
	}()

	r.logger.Info("relaying keeper messages", "target", r.target.String(), "executor", r.executor.String())
	err := r.consumer.Consume(ctx, r.HandleMessage)

	cancel()
	wg.Wait()
	return err
}

// HandleMessage feeds the signatures of msg to the aggregator and submits the bundle
// when quorum is reached. Rejected signatures reject the message; a failed
// submission is logged and not retried.
func (r *Relayer) HandleMessage(_ context.Context, msg transport.KeeperMsg) error {
	signedOp, err := msg.SignedOperation()
	if err != nil {
		return err
	}

	state, err := r.aggregator.AddSignedOperation(signedOp)
	if err != nil {
		return sdkerrors.Wrapf(err, "operation %s", state.Fingerprint.Hex())
	}
	if state.Bundle == nil {
		return nil
	}

	r.submit(state.Fingerprint, *state.Bundle)
	return nil
}

func (r *Relayer) submit(fingerprint common.Hash, bundle types.SignedOperation) {
	operation := bundle.OperationData.FunctionSelector.String()

	res, err := r.submitter.Submit(r.executor, bundle, r.target)
	if err != nil {
		telemetry.ReportSubmission(operation, "failed")
		r.logger.Error(
			"failed to apply governance operation",
			"operation", operation,
			"fingerprint", fingerprint.Hex(),
			"signers", len(bundle.Signatures),
			"error", err,
		)
		return
	}

	telemetry.ReportSubmission(operation, "applied")
	r.logger.Info(
		"applied governance operation",
		"operation", operation,
		"fingerprint", fingerprint.Hex(),
		"height", res.Height,
	)
}
