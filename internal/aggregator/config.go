package aggregator

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
)

const (
	DefaultRetentionWindow = 5 * time.Minute
	DefaultPruneInterval   = 30 * time.Second
	DefaultMaxPending      = 1024
	DefaultMaxCompleted    = 16384
	DefaultSignatureCache  = 4096
)

// Config bounds the memory and lifetime of aggregation buffers.
type Config struct {
	// RetentionWindow is how long an incomplete buffer, or the tombstone of an
	// emitted one, is kept after its first signature.
	RetentionWindow time.Duration `mapstructure:"retention_window"`
	PruneInterval   time.Duration `mapstructure:"prune_interval"`
	// MaxPending is the number of fingerprints tracked at once. The least recently
	// touched fingerprint is evicted beyond it.
	MaxPending int `mapstructure:"max_pending"`
	// MaxCompleted is the number of emitted fingerprints whose tombstones are
	// kept. It should exceed the bundles emitted per retention window.
	MaxCompleted   int `mapstructure:"max_completed"`
	SignatureCache int `mapstructure:"signature_cache"`
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		RetentionWindow: DefaultRetentionWindow,
		PruneInterval:   DefaultPruneInterval,
		MaxPending:      DefaultMaxPending,
		MaxCompleted:    DefaultMaxCompleted,
		SignatureCache:  DefaultSignatureCache,
	}
}

// Validate returns an error for non-positive bounds.
func (c Config) Validate() error {
	if c.RetentionWindow <= 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "retention window must be positive")
	}
	if c.PruneInterval <= 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "prune interval must be positive")
	}
	if c.MaxPending <= 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "max pending must be positive")
	}
	if c.MaxCompleted <= 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "max completed must be positive")
	}
	if c.SignatureCache <= 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "signature cache must be positive")
	}
	return nil
}
