package relayer_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	testifysuite "github.com/stretchr/testify/suite"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/Chiplis/Photon-solana-contracts/internal/aggregator"
	"github.com/Chiplis/Photon-solana-contracts/internal/collector"
	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/ledger"
	"github.com/Chiplis/Photon-solana-contracts/internal/relayer"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
	photontesting "github.com/Chiplis/Photon-solana-contracts/testing"
)

type failingSubmitter struct {
	mtx   sync.Mutex
	calls int
}

func (f *failingSubmitter) Submit(types.LedgerAddress, types.SignedOperation, types.ProtocolID) (*ledger.Result, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.calls++
	return nil, errors.New("ledger unavailable")
}

type RelayerTestSuite struct {
	testifysuite.Suite

	chain      *photontesting.TestChain
	ledger     *ledger.Ledger
	broker     *transport.MemoryBroker
	aggregator *aggregator.Aggregator
	collectors []*collector.Collector

	cancel context.CancelFunc
	done   chan error
}

func TestRelayerTestSuite(t *testing.T) {
	testifysuite.Run(t, new(RelayerTestSuite))
}

func (s *RelayerTestSuite) SetupTest() {
	s.chain = photontesting.NewTestChain(s.T())

	l, err := ledger.NewInMemory(s.chain.Genesis(photontesting.DefaultConsensusTargetRate), log.NewNopLogger())
	s.Require().NoError(err)
	s.ledger = l

	s.aggregator, err = aggregator.NewAggregator(aggregator.DefaultConfig(), s.ledger, log.NewNopLogger())
	s.Require().NoError(err)

	s.broker = transport.NewMemoryBroker(log.NewNopLogger(), 64)
	s.collectors = nil
	for _, key := range s.chain.KeeperKeys {
		s.collectors = append(s.collectors, collector.NewCollector(key, s.broker, log.NewNopLogger()))
	}
}

func (s *RelayerTestSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
		s.Require().ErrorIs(<-s.done, context.Canceled)
		s.cancel = nil
	}
	s.broker.Close()
	s.Require().NoError(s.ledger.Close())
}

func (s *RelayerTestSuite) startRelayer(submitter relayer.Submitter) {
	r := relayer.NewRelayer(s.broker, s.aggregator, submitter, s.chain.Executors[0], s.chain.Params.GovProtocolID, log.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() { s.done <- r.Run(ctx) }()

	s.Require().Eventually(func() bool { return s.broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
}

func (s *RelayerTestSuite) attest(opData types.OperationData, collectorIdxs ...int) {
	for _, idx := range collectorIdxs {
		s.Require().NoError(s.collectors[idx].Publish(context.Background(), opData))
	}
}

func (s *RelayerTestSuite) isKeeper(addr common.Address) bool {
	info, err := s.ledger.GovProtocolInfo()
	s.Require().NoError(err)
	return info.IsKeeper(addr)
}

func (s *RelayerTestSuite) TestRelayAppliesOnQuorum() {
	s.startRelayer(s.ledger)
	height := s.ledger.Height()

	_, added := photontesting.GenerateKeys(s.T(), 1)
	govID := s.chain.Params.GovProtocolID
	opData := s.chain.NewOperation(&types.AddKeeperOperation{ProtocolID: govID, Keepers: added}, 1)

	s.attest(opData, 0)
	s.Require().Never(func() bool { return s.ledger.Height() > height }, 50*time.Millisecond, 5*time.Millisecond)

	s.attest(opData, 1)
	s.Require().Eventually(func() bool { return s.isKeeper(added[0]) }, time.Second, 5*time.Millisecond)
	s.Require().Equal(height+1, s.ledger.Height())

	// a late attestation does not apply the operation again
	s.attest(opData, 2)
	s.Require().Never(func() bool { return s.ledger.Height() > height+1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func (s *RelayerTestSuite) TestRelayFollowsKeeperRotation() {
	s.startRelayer(s.ledger)
	govID := s.chain.Params.GovProtocolID

	newKeys, newKeepers := photontesting.GenerateKeys(s.T(), 1)
	s.attest(s.chain.NewOperation(&types.AddKeeperOperation{ProtocolID: govID, Keepers: newKeepers}, 1), 0, 1)
	s.Require().Eventually(func() bool { return s.isKeeper(newKeepers[0]) }, time.Second, 5*time.Millisecond)

	// four keepers at 60% require three signatures
	rateOp := s.chain.NewOperation(&types.SetConsensusTargetRateOperation{ProtocolID: govID, ConsensusTargetRate: 5000}, 2)
	s.attest(rateOp, 0, 1)
	s.Require().Never(func() bool {
		info, err := s.ledger.GovProtocolInfo()
		return err == nil && info.ConsensusTargetRate == 5000
	}, 50*time.Millisecond, 5*time.Millisecond)

	newCollector := collector.NewCollector(newKeys[0], s.broker, log.NewNopLogger())
	s.Require().NoError(newCollector.Publish(context.Background(), rateOp))
	s.Require().Eventually(func() bool {
		info, err := s.ledger.GovProtocolInfo()
		return err == nil && info.ConsensusTargetRate == 5000
	}, time.Second, 5*time.Millisecond)
}

func (s *RelayerTestSuite) TestHandleMessage() {
	submitter := &failingSubmitter{}
	logs := new(bytes.Buffer)
	logger := log.NewTMJSONLogger(log.NewSyncWriter(logs))
	r := relayer.NewRelayer(s.broker, s.aggregator, submitter, s.chain.Executors[0], s.chain.Params.GovProtocolID, logger)

	err := r.HandleMessage(context.Background(), transport.KeeperMsg{})
	s.Require().ErrorIs(err, photonerrors.ErrUnsupportedVersion)

	outsiders, _ := photontesting.GenerateKeys(s.T(), 1)
	govID := s.chain.Params.GovProtocolID
	opData := s.chain.NewOperation(&types.SetProtocolFeeOperation{ProtocolID: govID, ProtocolFee: 10}, 1)

	err = r.HandleMessage(context.Background(), transport.NewKeeperMsg(photontesting.SignOperation(s.T(), opData, outsiders...)))
	s.Require().ErrorIs(err, types.ErrInvalidSignature)

	// submission failures are logged, not returned and not retried
	signedOp := s.chain.SignOperation(opData, 0, 1, 2)
	s.Require().NoError(r.HandleMessage(context.Background(), transport.NewKeeperMsg(signedOp)))
	s.Require().NoError(r.HandleMessage(context.Background(), transport.NewKeeperMsg(signedOp)))
	s.Require().Equal(1, submitter.calls)

	fingerprint, err := opData.Fingerprint()
	s.Require().NoError(err)
	s.Require().Contains(logs.String(), "failed to apply governance operation")
	s.Require().Contains(logs.String(), fingerprint.Hex())
}
