package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"

	"github.com/tendermint/tendermint/libs/log"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/collections"
	"github.com/Chiplis/Photon-solana-contracts/internal/telemetry"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// QuorumSource provides the keeper set and consensus target rate signatures are
// aggregated against.
type QuorumSource interface {
	QuorumParams() (keepers []common.Address, rate uint64, err error)
}

// State is the aggregation progress of one fingerprint after a call to Add or
// AddSignature.
type State struct {
	Fingerprint common.Hash
	// Signers is the number of distinct accepted signers
	Signers int
	// Complete is set once a bundle was emitted for the fingerprint
	Complete bool
	// Bundle is set only on the call that reached quorum
	Bundle *types.SignedOperation
}

// Aggregator collects keeper signatures per operation fingerprint and emits a
// SignedOperation once the distinct signers reach quorum. Every fingerprint emits at
// most once while its tombstone is retained. It is safe for concurrent use.
type Aggregator struct {
	cfg    Config
	source QuorumSource
	logger log.Logger
	now    func() time.Time

	mtx     sync.Mutex
	pending *lru.Cache
	// completed holds the tombstones of emitted fingerprints, apart from
	// pending so new buffers never evict them
	completed *lru.Cache

	// signer recovery is expensive, so recovered addresses are cached by signature
	sigcache *lru.ARCCache
}

type entry struct {
	opData     *types.OperationData
	signatures []types.KeeperSignature
	firstSeen  time.Time
	expiresAt  time.Time
	// removed is set before the entry leaves pending on purpose
	removed bool
}

type tombstone struct {
	signers   int
	expiresAt time.Time
}

func (e *entry) signers() []common.Address {
	signers := make([]common.Address, len(e.signatures))
	for i, sig := range e.signatures {
		signers[i] = sig.Signer
	}
	return signers
}

// NewAggregator creates an Aggregator that reads quorum parameters from source.
func NewAggregator(cfg Config, source QuorumSource, logger log.Logger) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Aggregator{
		cfg:    cfg,
		source: source,
		logger: logger.With("module", "aggregator"),
		now:    time.Now,
	}

	pending, err := lru.NewWithEvict(cfg.MaxPending, a.onEvicted)
	if err != nil {
		return nil, err
	}
	completed, err := lru.NewWithEvict(cfg.MaxCompleted, a.onTombstoneEvicted)
	if err != nil {
		return nil, err
	}
	sigcache, err := lru.NewARC(cfg.SignatureCache)
	if err != nil {
		return nil, err
	}
	a.pending, a.completed, a.sigcache = pending, completed, sigcache
	return a, nil
}

// Add tracks opData and adds sig to its buffer.
func (a *Aggregator) Add(opData types.OperationData, sig types.KeeperSignature) (State, error) {
	fingerprint, err := opData.Fingerprint()
	if err != nil {
		return State{}, err
	}
	return a.add(fingerprint, &opData, sig)
}

// AddSignature adds sig to the buffer of fingerprint. The operation data may arrive
// later through Add; until then the buffer cannot emit.
func (a *Aggregator) AddSignature(fingerprint common.Hash, sig types.KeeperSignature) (State, error) {
	return a.add(fingerprint, nil, sig)
}

// AddSignedOperation feeds every signature of signedOp and returns the final state.
// Invalid signatures are skipped; the first error is returned when none was accepted.
func (a *Aggregator) AddSignedOperation(signedOp types.SignedOperation) (State, error) {
	fingerprint, err := signedOp.Fingerprint()
	if err != nil {
		return State{}, err
	}
	if len(signedOp.Signatures) == 0 {
		return a.attach(fingerprint, signedOp.OperationData), nil
	}

	var (
		state    = State{Fingerprint: fingerprint}
		bundle   *types.SignedOperation
		firstErr error
		accepted bool
	)
	for _, sig := range signedOp.Signatures {
		s, err := a.add(fingerprint, &signedOp.OperationData, sig)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		accepted = true
		state = s
		if s.Bundle != nil {
			bundle = s.Bundle
		}
	}
	if !accepted {
		return state, firstErr
	}
	state.Bundle = bundle
	return state, nil
}

func (a *Aggregator) add(fingerprint common.Hash, opData *types.OperationData, sig types.KeeperSignature) (State, error) {
	state := State{Fingerprint: fingerprint}

	if err := a.verify(fingerprint, sig); err != nil {
		telemetry.ReportSignatureDropped("invalid_signature")
		return state, err
	}

	keepers, rate, err := a.source.QuorumParams()
	if err != nil {
		return state, err
	}
	if !collections.Contains(sig.Signer, keepers) {
		telemetry.ReportSignatureDropped("not_keeper")
		return state, sdkerrors.Wrapf(types.ErrInvalidSignature, "signer %s is not a registered keeper", sig.Signer.Hex())
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	now := a.now()
	if t, ok := a.tombstone(fingerprint, now); ok {
		state.Complete = true
		state.Signers = t.signers
		return state, nil
	}

	e := a.entry(fingerprint, now)
	if opData != nil && e.opData == nil {
		data := *opData
		e.opData = &data
	}

	if !collections.Contains(sig.Signer, e.signers()) {
		e.signatures = append(e.signatures, sig)
	}

	return a.tryEmit(fingerprint, e, keepers, rate, now), nil
}

// attach records operation data for a fingerprint without adding a signature, so
// signatures buffered through AddSignature may emit.
func (a *Aggregator) attach(fingerprint common.Hash, opData types.OperationData) State {
	keepers, rate, err := a.source.QuorumParams()

	a.mtx.Lock()
	defer a.mtx.Unlock()

	now := a.now()
	if t, ok := a.tombstone(fingerprint, now); ok {
		return State{Fingerprint: fingerprint, Signers: t.signers, Complete: true}
	}

	e := a.entry(fingerprint, now)
	if e.opData == nil {
		e.opData = &opData
	}
	if err != nil {
		return State{Fingerprint: fingerprint, Signers: len(e.signatures)}
	}
	return a.tryEmit(fingerprint, e, keepers, rate, now)
}

// tryEmit builds the bundle once the buffered signers that are still keepers reach
// quorum. Must be called with the lock held.
func (a *Aggregator) tryEmit(fingerprint common.Hash, e *entry, keepers []common.Address, rate uint64, now time.Time) State {
	var current []types.KeeperSignature
	for _, sig := range e.signatures {
		if collections.Contains(sig.Signer, keepers) {
			current = append(current, sig)
		}
	}

	state := State{Fingerprint: fingerprint, Signers: len(current)}
	if e.opData == nil || len(current) == 0 || !types.QuorumReached(len(current), len(keepers), rate) {
		return state
	}

	bundle := &types.SignedOperation{
		OperationData: *e.opData,
		Signatures:    current,
	}

	// the tombstone keeps late signatures from emitting the operation again
	e.removed = true
	a.pending.Remove(fingerprint)
	a.completed.Add(fingerprint, &tombstone{signers: len(current), expiresAt: now.Add(a.cfg.RetentionWindow)})

	waited := now.Sub(e.firstSeen)
	telemetry.ReportBundleEmitted(len(current), waited)
	a.logger.Info("signature bundle complete", "fingerprint", fingerprint.Hex(), "signers", len(current), "keepers", len(keepers), "waited", waited.String())

	state.Complete = true
	state.Bundle = bundle
	return state
}

// entry returns the live buffer of fingerprint, replacing an expired one. Must be
// called with the lock held.
func (a *Aggregator) entry(fingerprint common.Hash, now time.Time) *entry {
	if v, ok := a.pending.Get(fingerprint); ok {
		e := v.(*entry)
		if now.Before(e.expiresAt) {
			return e
		}
		e.removed = true
		a.pending.Remove(fingerprint)
		telemetry.ReportExpired(1)
	}

	e := &entry{firstSeen: now, expiresAt: now.Add(a.cfg.RetentionWindow)}
	a.pending.Add(fingerprint, e)
	return e
}

// tombstone returns the live tombstone of fingerprint, dropping an expired one.
// Must be called with the lock held.
func (a *Aggregator) tombstone(fingerprint common.Hash, now time.Time) (*tombstone, bool) {
	v, ok := a.completed.Get(fingerprint)
	if !ok {
		return nil, false
	}
	t := v.(*tombstone)
	if !now.Before(t.expiresAt) {
		a.completed.Remove(fingerprint)
		telemetry.ReportExpired(1)
		return nil, false
	}
	return t, true
}

// verify checks that sig recovers to its claimed signer over fingerprint.
func (a *Aggregator) verify(fingerprint common.Hash, sig types.KeeperSignature) error {
	key := string(append(fingerprint.Bytes(), sig.Signature...))
	if v, ok := a.sigcache.Get(key); ok {
		if v.(common.Address) != sig.Signer {
			return sdkerrors.Wrapf(types.ErrInvalidSignature, "signature recovers to %s, claimed signer %s", v.(common.Address).Hex(), sig.Signer.Hex())
		}
		return nil
	}

	recovered, err := types.RecoverSigner(fingerprint, sig.Signature)
	if err != nil {
		return err
	}
	a.sigcache.Add(key, recovered)

	if recovered != sig.Signer {
		return sdkerrors.Wrapf(types.ErrInvalidSignature, "signature recovers to %s, claimed signer %s", recovered.Hex(), sig.Signer.Hex())
	}
	return nil
}

// Get returns the current state of fingerprint without modifying it.
func (a *Aggregator) Get(fingerprint common.Hash) (State, bool) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	now := a.now()
	if v, ok := a.completed.Peek(fingerprint); ok {
		t := v.(*tombstone)
		if now.Before(t.expiresAt) {
			return State{Fingerprint: fingerprint, Signers: t.signers, Complete: true}, true
		}
	}

	v, ok := a.pending.Peek(fingerprint)
	if !ok {
		return State{}, false
	}
	e := v.(*entry)
	if !now.Before(e.expiresAt) {
		return State{}, false
	}
	return State{Fingerprint: fingerprint, Signers: len(e.signatures)}, true
}

// Pending returns the number of tracked fingerprints, tombstones included.
func (a *Aggregator) Pending() int {
	return a.pending.Len() + a.completed.Len()
}

// Prune drops every buffer whose retention window has passed and returns how many
// were dropped.
func (a *Aggregator) Prune() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	now := a.now()
	pruned := 0
	for _, key := range a.pending.Keys() {
		v, ok := a.pending.Peek(key)
		if !ok {
			continue
		}
		e := v.(*entry)
		if now.Before(e.expiresAt) {
			continue
		}
		a.logger.Debug("dropping incomplete signature buffer", "fingerprint", key.(common.Hash).Hex(), "signers", len(e.signatures))
		e.removed = true
		a.pending.Remove(key)
		pruned++
	}
	for _, key := range a.completed.Keys() {
		v, ok := a.completed.Peek(key)
		if !ok || now.Before(v.(*tombstone).expiresAt) {
			continue
		}
		a.completed.Remove(key)
		pruned++
	}

	telemetry.ReportExpired(pruned)
	telemetry.ReportPending(a.pending.Len())
	return pruned
}

// Run prunes expired buffers every prune interval until ctx is done.
func (a *Aggregator) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := a.Prune(); n > 0 {
				a.logger.Debug("pruned signature buffers", "count", n)
			}
		}
	}
}

func (a *Aggregator) onEvicted(key, value interface{}) {
	e := value.(*entry)
	if e.removed {
		return
	}
	telemetry.ReportSignatureDropped("evicted")
	a.logger.Info("evicted incomplete signature buffer", "fingerprint", key.(common.Hash).Hex(), "signers", len(e.signatures))
}

// onTombstoneEvicted runs for explicit removals too; only live tombstones are
// reported, since their operation may be emitted again.
func (a *Aggregator) onTombstoneEvicted(key, value interface{}) {
	t := value.(*tombstone)
	if !a.now().Before(t.expiresAt) {
		return
	}
	a.logger.Error("evicted live tombstone, raise max_completed", "fingerprint", key.(common.Hash).Hex(), "expires", t.expiresAt.String())
}
