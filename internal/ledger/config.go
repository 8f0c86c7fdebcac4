package ledger

import (
	"encoding/json"
	"os"

	dbm "github.com/tendermint/tm-db"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// Config selects the database backend and the genesis used to seed an empty ledger.
type Config struct {
	Backend     string `mapstructure:"backend"`
	GenesisFile string `mapstructure:"genesis_file"`
	// Executor is the hex ledger address submitting governance operations
	Executor string `mapstructure:"executor"`
}

// DefaultConfig returns a goleveldb backed configuration.
func DefaultConfig() Config {
	return Config{
		Backend: string(dbm.GoLevelDBBackend),
	}
}

// Validate checks that the backend is one the ledger supports.
func (c Config) Validate() error {
	switch dbm.BackendType(c.Backend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "unsupported ledger backend %q", c.Backend)
	}
	if c.Executor != "" {
		if _, err := types.ParseLedgerAddress(c.Executor); err != nil {
			return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "executor: %v", err)
		}
	}
	return nil
}

// LoadGenesis reads and validates a JSON encoded genesis state.
func LoadGenesis(path string) (*types.GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidGenesis, "failed to read genesis file: %v", err)
	}

	var genesis types.GenesisState
	if err := json.Unmarshal(bz, &genesis); err != nil {
		return nil, sdkerrors.Wrapf(types.ErrInvalidGenesis, "failed to decode genesis file: %v", err)
	}
	if err := genesis.Validate(); err != nil {
		return nil, err
	}
	return &genesis, nil
}
