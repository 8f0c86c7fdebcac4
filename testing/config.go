package photontesting

import (
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const (
	// DefaultKeeperCount is the number of governance keepers created by NewTestChain
	DefaultKeeperCount = 3
	// DefaultConsensusTargetRate requires two of three default keepers
	DefaultConsensusTargetRate = 6000
	// DefaultCapacity is the keeper and executor capacity of test chains
	DefaultCapacity = 10
)

// ChainConfig configures the governance protocol of a TestChain.
type ChainConfig struct {
	Params              types.Params
	KeeperCount         int
	ConsensusTargetRate uint64
	ExecutorCount       int
}

// DefaultChainConfig returns the configuration used by NewTestChain.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Params:              types.NewParams(types.MustProtocolIDFromString(types.DefaultGovProtocolName), DefaultCapacity, DefaultCapacity),
		KeeperCount:         DefaultKeeperCount,
		ConsensusTargetRate: DefaultConsensusTargetRate,
		ExecutorCount:       1,
	}
}
