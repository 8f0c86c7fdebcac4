package photontesting

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/tendermint/libs/log"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/cosmos-sdk/store"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/keeper"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// TestChain is an in-memory destination ledger with an initialized governance
// protocol, its keeper keys and its executors.
type TestChain struct {
	TB testing.TB

	CMS    storetypes.CommitMultiStore
	Keeper keeper.Keeper
	Params types.Params

	KeeperKeys []*ecdsa.PrivateKey
	Executors  []types.LedgerAddress

	ctx sdk.Context
}

// NewTestChain creates a TestChain using DefaultChainConfig.
func NewTestChain(tb testing.TB) *TestChain {
	tb.Helper()
	return NewTestChainWithConfig(tb, DefaultChainConfig())
}

// NewTestChainWithConfig creates a TestChain whose genesis holds an initialized
// governance protocol built from cfg.
func NewTestChainWithConfig(tb testing.TB, cfg ChainConfig) *TestChain {
	tb.Helper()

	keyStore := sdk.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db)
	cms.MountStoreWithDB(keyStore, sdk.StoreTypeIAVL, db)
	require.NoError(tb, cms.LoadLatestVersion())

	chain := &TestChain{
		TB:     tb,
		CMS:    cms,
		Keeper: keeper.NewKeeper(keyStore),
		Params: cfg.Params,
	}

	for i := 0; i < cfg.KeeperCount; i++ {
		chain.KeeperKeys = append(chain.KeeperKeys, GenerateKey(tb))
	}
	for i := 0; i < cfg.ExecutorCount; i++ {
		chain.Executors = append(chain.Executors, GenerateLedgerAddress(i+1))
	}

	chain.ctx = sdk.NewContext(cms, tmproto.Header{ChainID: "photon-test"}, false, log.NewNopLogger())
	chain.Keeper.InitGenesis(chain.ctx, chain.Genesis(cfg.ConsensusTargetRate))
	chain.NextBlock()

	return chain
}

// Genesis returns the genesis state holding the governance protocol of the chain.
func (chain *TestChain) Genesis(rate uint64) types.GenesisState {
	info := types.NewProtocolInfo(chain.Params)
	info.IsInit = true
	info.ConsensusTargetRate = rate

	var err error
	info.Keepers, err = info.Keepers.Replace(chain.KeeperAddresses()...)
	require.NoError(chain.TB, err)
	info.Executors, err = info.Executors.Replace(chain.Executors...)
	require.NoError(chain.TB, err)

	return *types.NewGenesisState(chain.Params, []types.GenesisProtocol{
		{ProtocolID: chain.Params.GovProtocolID, Info: info},
	})
}

// GetContext returns the current context of the chain. Events emitted through it
// accumulate until NextBlock.
func (chain *TestChain) GetContext() sdk.Context {
	return chain.ctx
}

// NextBlock commits the current state and starts a new context with a fresh event
// manager.
func (chain *TestChain) NextBlock() {
	commitID := chain.CMS.Commit()
	header := chain.ctx.BlockHeader()
	header.Height = commitID.Version + 1
	chain.ctx = sdk.NewContext(chain.CMS, header, false, log.NewNopLogger())
}

// KeeperAddresses returns the address of every keeper key, in creation order.
func (chain *TestChain) KeeperAddresses() []common.Address {
	addrs := make([]common.Address, len(chain.KeeperKeys))
	for i, key := range chain.KeeperKeys {
		addrs[i] = crypto.PubkeyToAddress(key.PublicKey)
	}
	return addrs
}

// GovProtocolInfo returns the stored governance protocol entry.
func (chain *TestChain) GovProtocolInfo() types.ProtocolInfo {
	info, found := chain.Keeper.GetGovProtocolInfo(chain.ctx)
	require.True(chain.TB, found)
	return info
}

// ProtocolInfo returns the stored entry of protocolID, failing the test when absent.
func (chain *TestChain) ProtocolInfo(protocolID types.ProtocolID) types.ProtocolInfo {
	info, found := chain.Keeper.GetProtocolInfo(chain.ctx, protocolID)
	require.True(chain.TB, found, "protocol %s not found", protocolID)
	return info
}

// NewOperation wraps op into an operation record addressed to the governance
// protocol of the chain.
func (chain *TestChain) NewOperation(op types.GovOperation, nonce uint64) types.OperationData {
	opData, err := types.NewOperationData(chain.Params.GovProtocolID, op, nonce)
	require.NoError(chain.TB, err)
	return opData
}

// SignOperation signs opData with the keeper keys at the given indexes.
func (chain *TestChain) SignOperation(opData types.OperationData, keeperIdxs ...int) types.SignedOperation {
	keys := make([]*ecdsa.PrivateKey, len(keeperIdxs))
	for i, idx := range keeperIdxs {
		keys[i] = chain.KeeperKeys[idx]
	}
	return SignOperation(chain.TB, opData, keys...)
}

// Execute submits a signed operation with the first executor and commits the block
// on success.
func (chain *TestChain) Execute(signedOp types.SignedOperation, target types.ProtocolID) error {
	err := chain.Keeper.ExecuteGovOperation(chain.ctx, chain.Executors[0], signedOp, target)
	if err == nil {
		chain.NextBlock()
	}
	return err
}

// InitProtocol initializes target through the governance protocol, signed by every
// governance keeper.
func (chain *TestChain) InitProtocol(target types.ProtocolID, rate uint64, keepers []common.Address, nonce uint64) {
	op := &types.AddAllowedProtocolOperation{ProtocolID: target, ConsensusTargetRate: rate, Keepers: keepers}
	idxs := make([]int, len(chain.KeeperKeys))
	for i := range idxs {
		idxs[i] = i
	}
	require.NoError(chain.TB, chain.Execute(chain.SignOperation(chain.NewOperation(op, nonce), idxs...), target))
}
