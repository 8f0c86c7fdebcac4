package aggregator_test

import (
	"crypto/ecdsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	testifysuite "github.com/stretchr/testify/suite"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/Chiplis/Photon-solana-contracts/internal/aggregator"
	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
	photontesting "github.com/Chiplis/Photon-solana-contracts/testing"
)

type quorumSource struct {
	mtx     sync.Mutex
	keepers []common.Address
	rate    uint64
	err     error
}

func (q *quorumSource) QuorumParams() ([]common.Address, uint64, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return q.keepers, q.rate, q.err
}

func (q *quorumSource) setKeepers(keepers []common.Address) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.keepers = keepers
}

type clock struct {
	mtx sync.Mutex
	t   time.Time
}

func (c *clock) now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.t = c.t.Add(d)
}

type AggregatorTestSuite struct {
	testifysuite.Suite

	keys   []*ecdsa.PrivateKey
	source *quorumSource
	clock  *clock
	agg    *aggregator.Aggregator
}

func TestAggregatorTestSuite(t *testing.T) {
	testifysuite.Run(t, new(AggregatorTestSuite))
}

func (s *AggregatorTestSuite) SetupTest() {
	keys, addrs := photontesting.GenerateKeys(s.T(), 3)
	s.keys = keys
	s.source = &quorumSource{keepers: addrs, rate: photontesting.DefaultConsensusTargetRate}
	s.clock = &clock{t: time.Unix(1_700_000_000, 0)}
	s.agg = s.newAggregator(aggregator.DefaultConfig())
}

func (s *AggregatorTestSuite) newAggregator(cfg aggregator.Config) *aggregator.Aggregator {
	agg, err := aggregator.NewAggregator(cfg, s.source, log.NewNopLogger())
	s.Require().NoError(err)
	agg.SetClock(s.clock.now)
	return agg
}

func (s *AggregatorTestSuite) newOperation(nonce uint64) types.OperationData {
	govID := types.MustProtocolIDFromString(types.DefaultGovProtocolName)
	_, extra := photontesting.GenerateKeys(s.T(), 1)
	opData, err := types.NewOperationData(govID, &types.AddKeeperOperation{ProtocolID: govID, Keepers: extra}, nonce)
	s.Require().NoError(err)
	return opData
}

func (s *AggregatorTestSuite) sign(opData types.OperationData, key *ecdsa.PrivateKey) types.KeeperSignature {
	sig, err := types.SignOperation(opData, key)
	s.Require().NoError(err)
	return sig
}

func (s *AggregatorTestSuite) TestQuorumEmitsOnce() {
	opData := s.newOperation(1)
	fingerprint, err := opData.Fingerprint()
	s.Require().NoError(err)

	state, err := s.agg.Add(opData, s.sign(opData, s.keys[0]))
	s.Require().NoError(err)
	s.Require().Equal(fingerprint, state.Fingerprint)
	s.Require().Equal(1, state.Signers)
	s.Require().False(state.Complete)
	s.Require().Nil(state.Bundle)

	state, err = s.agg.Add(opData, s.sign(opData, s.keys[1]))
	s.Require().NoError(err)
	s.Require().True(state.Complete)
	s.Require().NotNil(state.Bundle)
	s.Require().Equal(opData, state.Bundle.OperationData)
	s.Require().Equal(
		[]common.Address{s.source.keepers[0], s.source.keepers[1]},
		state.Bundle.Signers(),
	)

	// late signature after emission
	state, err = s.agg.Add(opData, s.sign(opData, s.keys[2]))
	s.Require().NoError(err)
	s.Require().True(state.Complete)
	s.Require().Nil(state.Bundle)
}

func (s *AggregatorTestSuite) TestDuplicateSignature() {
	opData := s.newOperation(1)
	sig := s.sign(opData, s.keys[0])

	for i := 0; i < 3; i++ {
		state, err := s.agg.Add(opData, sig)
		s.Require().NoError(err)
		s.Require().Equal(1, state.Signers)
		s.Require().Nil(state.Bundle)
	}
}

func (s *AggregatorTestSuite) TestRejectedSignatures() {
	opData := s.newOperation(1)
	outsiders, _ := photontesting.GenerateKeys(s.T(), 1)

	forged := s.sign(opData, s.keys[0])
	forged.Signer = s.source.keepers[1]

	truncated := s.sign(opData, s.keys[0])
	truncated.Signature = truncated.Signature[:32]

	other := s.newOperation(2)

	testCases := []struct {
		name string
		sig  types.KeeperSignature
	}{
		{"signer is not a keeper", s.sign(opData, outsiders[0])},
		{"claimed signer does not match", forged},
		{"malformed signature", truncated},
		{"signature over a different operation", s.sign(other, s.keys[0])},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			_, err := s.agg.Add(opData, tc.sig)
			s.Require().ErrorIs(err, types.ErrInvalidSignature)
		})
	}

	fingerprint, err := opData.Fingerprint()
	s.Require().NoError(err)
	_, found := s.agg.Get(fingerprint)
	s.Require().False(found)
}

func (s *AggregatorTestSuite) TestQuorumSourceError() {
	s.source.err = errors.New("ledger unavailable")
	opData := s.newOperation(1)

	_, err := s.agg.Add(opData, s.sign(opData, s.keys[0]))
	s.Require().EqualError(err, "ledger unavailable")
}

func (s *AggregatorTestSuite) TestAddSignatureBuffersUntilOperationKnown() {
	opData := s.newOperation(1)
	fingerprint, err := opData.Fingerprint()
	s.Require().NoError(err)

	for _, key := range s.keys[:2] {
		state, err := s.agg.AddSignature(fingerprint, s.sign(opData, key))
		s.Require().NoError(err)
		s.Require().False(state.Complete)
		s.Require().Nil(state.Bundle)
	}

	state, err := s.agg.AddSignedOperation(types.SignedOperation{OperationData: opData})
	s.Require().NoError(err)
	s.Require().True(state.Complete)
	s.Require().NotNil(state.Bundle)
	s.Require().Len(state.Bundle.Signatures, 2)
}

func (s *AggregatorTestSuite) TestAddSignedOperation() {
	opData := s.newOperation(1)
	signedOp := photontesting.SignOperation(s.T(), opData, s.keys...)

	state, err := s.agg.AddSignedOperation(signedOp)
	s.Require().NoError(err)
	s.Require().True(state.Complete)
	s.Require().NotNil(state.Bundle)
	s.Require().Len(state.Bundle.Signatures, 2)

	// every signature invalid
	outsiders, _ := photontesting.GenerateKeys(s.T(), 2)
	other := s.newOperation(2)
	_, err = s.agg.AddSignedOperation(photontesting.SignOperation(s.T(), other, outsiders...))
	s.Require().ErrorIs(err, types.ErrInvalidSignature)
}

func (s *AggregatorTestSuite) TestRetentionWindow() {
	opData := s.newOperation(1)
	fingerprint, err := opData.Fingerprint()
	s.Require().NoError(err)

	_, err = s.agg.Add(opData, s.sign(opData, s.keys[0]))
	s.Require().NoError(err)

	s.clock.advance(aggregator.DefaultRetentionWindow - time.Second)
	s.Require().Equal(0, s.agg.Prune())
	state, found := s.agg.Get(fingerprint)
	s.Require().True(found)
	s.Require().Equal(1, state.Signers)

	s.clock.advance(time.Second)
	_, found = s.agg.Get(fingerprint)
	s.Require().False(found)
	s.Require().Equal(1, s.agg.Prune())
	s.Require().Equal(0, s.agg.Pending())

	// an expired buffer starts over
	state, err = s.agg.Add(opData, s.sign(opData, s.keys[1]))
	s.Require().NoError(err)
	s.Require().Equal(1, state.Signers)
	s.Require().Nil(state.Bundle)
}

func (s *AggregatorTestSuite) TestExpiredBufferIsReplaced() {
	opData := s.newOperation(1)

	_, err := s.agg.Add(opData, s.sign(opData, s.keys[0]))
	s.Require().NoError(err)

	s.clock.advance(aggregator.DefaultRetentionWindow)

	state, err := s.agg.Add(opData, s.sign(opData, s.keys[1]))
	s.Require().NoError(err)
	s.Require().Equal(1, state.Signers)
	s.Require().False(state.Complete)
}

func (s *AggregatorTestSuite) TestTombstoneRetained() {
	opData := s.newOperation(1)
	signedOp := photontesting.SignOperation(s.T(), opData, s.keys[:2]...)

	state, err := s.agg.AddSignedOperation(signedOp)
	s.Require().NoError(err)
	s.Require().NotNil(state.Bundle)

	s.clock.advance(aggregator.DefaultRetentionWindow / 2)
	s.Require().Equal(0, s.agg.Prune())

	state, err = s.agg.AddSignedOperation(signedOp)
	s.Require().NoError(err)
	s.Require().True(state.Complete)
	s.Require().Nil(state.Bundle)

	s.clock.advance(aggregator.DefaultRetentionWindow)
	s.Require().Equal(1, s.agg.Prune())
}

func (s *AggregatorTestSuite) TestMaxPending() {
	cfg := aggregator.DefaultConfig()
	cfg.MaxPending = 2
	agg := s.newAggregator(cfg)

	var fingerprints []common.Hash
	for nonce := uint64(1); nonce <= 3; nonce++ {
		opData := s.newOperation(nonce)
		fingerprint, err := opData.Fingerprint()
		s.Require().NoError(err)
		fingerprints = append(fingerprints, fingerprint)

		_, err = agg.Add(opData, s.sign(opData, s.keys[0]))
		s.Require().NoError(err)
	}

	s.Require().Equal(2, agg.Pending())
	_, found := agg.Get(fingerprints[0])
	s.Require().False(found)
	_, found = agg.Get(fingerprints[2])
	s.Require().True(found)
}

func (s *AggregatorTestSuite) TestTombstoneSurvivesPendingEviction() {
	cfg := aggregator.DefaultConfig()
	cfg.MaxPending = 1
	agg := s.newAggregator(cfg)

	emitted := 0
	feed := func(opData types.OperationData) {
		for _, key := range s.keys {
			state, err := agg.Add(opData, s.sign(opData, key))
			s.Require().NoError(err)
			if state.Bundle != nil {
				emitted++
			}
		}
	}

	first := s.newOperation(1)
	feed(first)
	s.Require().Equal(1, emitted)

	// a new incomplete buffer fills pending
	second := s.newOperation(2)
	_, err := agg.Add(second, s.sign(second, s.keys[0]))
	s.Require().NoError(err)

	// redelivery within the retention window
	feed(first)
	s.Require().Equal(1, emitted)

	fingerprint, err := first.Fingerprint()
	s.Require().NoError(err)
	state, found := agg.Get(fingerprint)
	s.Require().True(found)
	s.Require().True(state.Complete)
	s.Require().Equal(2, agg.Pending())
}

func (s *AggregatorTestSuite) TestMaxCompleted() {
	cfg := aggregator.DefaultConfig()
	cfg.MaxCompleted = 1
	agg := s.newAggregator(cfg)

	var fingerprints []common.Hash
	for nonce := uint64(1); nonce <= 2; nonce++ {
		opData := s.newOperation(nonce)
		fingerprint, err := opData.Fingerprint()
		s.Require().NoError(err)
		fingerprints = append(fingerprints, fingerprint)

		state, err := agg.AddSignedOperation(photontesting.SignOperation(s.T(), opData, s.keys...))
		s.Require().NoError(err)
		s.Require().NotNil(state.Bundle)
	}

	_, found := agg.Get(fingerprints[0])
	s.Require().False(found)
	state, found := agg.Get(fingerprints[1])
	s.Require().True(found)
	s.Require().True(state.Complete)
}

func (s *AggregatorTestSuite) TestKeeperRotation() {
	opData := s.newOperation(1)

	_, err := s.agg.Add(opData, s.sign(opData, s.keys[0]))
	s.Require().NoError(err)

	// keys[0] leaves the keeper set before quorum
	removed := s.source.keepers[0]
	newKeys, newAddrs := photontesting.GenerateKeys(s.T(), 1)
	s.source.setKeepers([]common.Address{s.source.keepers[1], s.source.keepers[2], newAddrs[0]})

	state, err := s.agg.Add(opData, s.sign(opData, s.keys[1]))
	s.Require().NoError(err)
	s.Require().Equal(1, state.Signers)
	s.Require().Nil(state.Bundle)

	state, err = s.agg.Add(opData, s.sign(opData, newKeys[0]))
	s.Require().NoError(err)
	s.Require().NotNil(state.Bundle)
	s.Require().Len(state.Bundle.Signatures, 2)
	s.Require().NotContains(state.Bundle.Signers(), removed)
}

func (s *AggregatorTestSuite) TestConcurrentAdd() {
	keys, addrs := photontesting.GenerateKeys(s.T(), 16)
	s.source.setKeepers(addrs)
	s.source.rate = types.BasisPoints

	opData := s.newOperation(1)
	sigs := make([]types.KeeperSignature, len(keys))
	for i, key := range keys {
		sigs[i] = s.sign(opData, key)
	}

	var (
		wg      sync.WaitGroup
		mtx     sync.Mutex
		bundles []*types.SignedOperation
	)
	for _, sig := range sigs {
		sig := sig
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state, err := s.agg.Add(opData, sig)
				if err != nil || state.Bundle == nil {
					return
				}
				mtx.Lock()
				bundles = append(bundles, state.Bundle)
				mtx.Unlock()
			}()
		}
	}
	wg.Wait()

	s.Require().Len(bundles, 1)
	s.Require().ElementsMatch(addrs, bundles[0].Signers())
}

func (s *AggregatorTestSuite) TestConfigValidate() {
	testCases := []struct {
		name     string
		malleate func(*aggregator.Config)
		expPass  bool
	}{
		{"default", func(*aggregator.Config) {}, true},
		{"zero retention window", func(c *aggregator.Config) { c.RetentionWindow = 0 }, false},
		{"zero prune interval", func(c *aggregator.Config) { c.PruneInterval = 0 }, false},
		{"zero max pending", func(c *aggregator.Config) { c.MaxPending = 0 }, false},
		{"zero max completed", func(c *aggregator.Config) { c.MaxCompleted = 0 }, false},
		{"negative signature cache", func(c *aggregator.Config) { c.SignatureCache = -1 }, false},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			cfg := aggregator.DefaultConfig()
			tc.malleate(&cfg)

			err := cfg.Validate()
			if tc.expPass {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, photonerrors.ErrInvalidConfig)
			}
		})
	}
}
