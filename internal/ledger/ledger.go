package ledger

import (
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/cosmos-sdk/store"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/keeper"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const dbName = "ledger"

// Ledger hosts the protocol registry on a committed multistore. Operations are
// applied one at a time and every successful operation is committed as a new
// version.
type Ledger struct {
	logger    log.Logger
	ctxLogger log.Logger

	mtx    sync.Mutex
	db     dbm.DB
	cms    storetypes.CommitMultiStore
	keeper keeper.Keeper
	closed bool
}

// Result describes a committed governance operation.
type Result struct {
	Height int64
	Hash   []byte
	Events sdk.Events
}

// Open opens the ledger database under home/data. An empty ledger is seeded with
// genesis, which is ignored once the ledger holds committed state.
func Open(home string, backend dbm.BackendType, genesis *types.GenesisState, logger log.Logger) (*Ledger, error) {
	db, err := dbm.NewDB(dbName, backend, filepath.Join(home, "data"))
	if err != nil {
		return nil, sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "failed to open %s database: %v", backend, err)
	}

	l, err := newLedger(db, genesis, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewInMemory creates a memdb backed ledger seeded with genesis.
func NewInMemory(genesis types.GenesisState, logger log.Logger) (*Ledger, error) {
	return newLedger(dbm.NewMemDB(), &genesis, logger)
}

func newLedger(db dbm.DB, genesis *types.GenesisState, logger log.Logger) (*Ledger, error) {
	key := sdk.NewKVStoreKey(types.StoreKey)
	cms := store.NewCommitMultiStore(db)
	cms.MountStoreWithDB(key, sdk.StoreTypeIAVL, nil)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	l := &Ledger{
		logger:    logger.With("module", "ledger"),
		ctxLogger: logger,
		db:        db,
		cms:       cms,
		keeper:    keeper.NewKeeper(key),
	}

	if !cms.LastCommitID().IsZero() {
		l.logger.Info("loaded ledger", "height", cms.LastCommitID().Version)
		return l, nil
	}

	if genesis == nil {
		return nil, sdkerrors.Wrap(types.ErrInvalidGenesis, "empty ledger requires a genesis state")
	}
	if err := genesis.Validate(); err != nil {
		return nil, err
	}
	if !hasProtocol(genesis, genesis.Params.GovProtocolID) {
		return nil, sdkerrors.Wrapf(types.ErrInvalidGenesis, "governance protocol %s missing from genesis", genesis.Params.GovProtocolID)
	}

	l.keeper.InitGenesis(l.context(), *genesis)
	commitID := cms.Commit()
	l.logger.Info("initialized ledger from genesis", "protocols", len(genesis.Protocols), "height", commitID.Version)
	return l, nil
}

func hasProtocol(genesis *types.GenesisState, protocolID types.ProtocolID) bool {
	for _, p := range genesis.Protocols {
		if p.ProtocolID == protocolID {
			return true
		}
	}
	return false
}

// context returns a context at the next height. Must be called with the lock held.
func (l *Ledger) context() sdk.Context {
	header := tmproto.Header{Height: l.cms.LastCommitID().Version + 1}
	return sdk.NewContext(l.cms, header, false, l.ctxLogger)
}

// Submit executes signedOp against target on behalf of executor and commits the
// result. A failed operation leaves the registry unchanged and commits nothing.
func (l *Ledger) Submit(executor types.LedgerAddress, signedOp types.SignedOperation, target types.ProtocolID) (*Result, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return nil, photonerrors.ErrLedgerClosed
	}

	ctx := l.context()
	if err := l.keeper.ExecuteGovOperation(ctx, executor, signedOp, target); err != nil {
		return nil, err
	}

	commitID := l.cms.Commit()
	return &Result{
		Height: commitID.Version,
		Hash:   commitID.Hash,
		Events: ctx.EventManager().Events(),
	}, nil
}

// QuorumParams returns the keepers and consensus target rate of the governance
// protocol.
func (l *Ledger) QuorumParams() ([]common.Address, uint64, error) {
	info, err := l.GovProtocolInfo()
	if err != nil {
		return nil, 0, err
	}
	return info.Keepers.Elements(), info.ConsensusTargetRate, nil
}

// GovProtocolInfo returns the registry entry of the governance protocol.
func (l *Ledger) GovProtocolInfo() (types.ProtocolInfo, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return types.ProtocolInfo{}, photonerrors.ErrLedgerClosed
	}

	info, found := l.keeper.GetGovProtocolInfo(l.context())
	if !found || !info.IsInit {
		return types.ProtocolInfo{}, sdkerrors.Wrap(types.ErrProtocolNotInitialized, "governance protocol")
	}
	return info, nil
}

// ProtocolInfo returns the registry entry of protocolID.
func (l *Ledger) ProtocolInfo(protocolID types.ProtocolID) (types.ProtocolInfo, bool, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return types.ProtocolInfo{}, false, photonerrors.ErrLedgerClosed
	}

	info, found := l.keeper.GetProtocolInfo(l.context(), protocolID)
	return info, found, nil
}

// Protocols returns every registry entry.
func (l *Ledger) Protocols() ([]types.GenesisProtocol, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return nil, photonerrors.ErrLedgerClosed
	}
	return l.keeper.GetAllProtocols(l.context()), nil
}

// Params returns the registry parameters.
func (l *Ledger) Params() (types.Params, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return types.Params{}, photonerrors.ErrLedgerClosed
	}
	return l.keeper.GetParams(l.context()), nil
}

// Export returns the current registry state as a genesis state.
func (l *Ledger) Export() (*types.GenesisState, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return nil, photonerrors.ErrLedgerClosed
	}
	return l.keeper.ExportGenesis(l.context()), nil
}

// Height returns the last committed version.
func (l *Ledger) Height() int64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.cms.LastCommitID().Version
}

// Close closes the underlying database. Subsequent calls return ErrLedgerClosed.
func (l *Ledger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return photonerrors.ErrLedgerClosed
	}
	l.closed = true
	return l.db.Close()
}
