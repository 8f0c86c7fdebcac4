package collector

import (
	"context"
	"crypto/ecdsa"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tendermint/tendermint/libs/log"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/telemetry"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// Config holds the keeper signing key. PrivateKey takes precedence over KeyFile.
type Config struct {
	PrivateKey string `mapstructure:"private_key"`
	KeyFile    string `mapstructure:"key_file"`
}

// LoadKey returns the configured keeper key.
func (c Config) LoadKey() (*ecdsa.PrivateKey, error) {
	switch {
	case c.PrivateKey != "":
		return ParseKey(c.PrivateKey)
	case c.KeyFile != "":
		bz, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, sdkerrors.Wrapf(photonerrors.ErrInvalidKey, "failed to read key file: %v", err)
		}
		return ParseKey(strings.TrimSpace(string(bz)))
	default:
		return nil, sdkerrors.Wrap(photonerrors.ErrInvalidKey, "no private key or key file configured")
	}
}

// ParseKey parses a hex encoded secp256k1 private key, with or without 0x prefix.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, sdkerrors.Wrap(photonerrors.ErrInvalidKey, err.Error())
	}
	return key, nil
}

// Collector attests operation records observed on a source chain with a single
// keeper key and publishes each attestation to the relay transport.
type Collector struct {
	key       *ecdsa.PrivateKey
	address   common.Address
	publisher transport.Publisher
	logger    log.Logger
}

// NewCollector creates a Collector signing with key.
func NewCollector(key *ecdsa.PrivateKey, publisher transport.Publisher, logger log.Logger) *Collector {
	address := crypto.PubkeyToAddress(key.PublicKey)
	return &Collector{
		key:       key,
		address:   address,
		publisher: publisher,
		logger:    logger.With("module", "collector", "keeper", address.Hex()),
	}
}

// Address returns the keeper address of the signing key.
func (c *Collector) Address() common.Address {
	return c.address
}

// Attest signs the fingerprint of opData once it is structurally valid: the selector
// must be supported and the params must decode under its schema.
func (c *Collector) Attest(opData types.OperationData) (types.KeeperSignature, error) {
	if err := opData.ValidateBasic(); err != nil {
		return types.KeeperSignature{}, err
	}
	if _, err := types.DecodeOperation(opData.FunctionSelector, opData.Params); err != nil {
		return types.KeeperSignature{}, err
	}
	return types.SignOperation(opData, c.key)
}

// Publish attests opData and publishes a keeper message carrying the signature.
func (c *Collector) Publish(ctx context.Context, opData types.OperationData) error {
	sig, err := c.Attest(opData)
	if err != nil {
		return err
	}

	msg := transport.NewKeeperMsg(types.SignedOperation{
		OperationData: opData,
		Signatures:    []types.KeeperSignature{sig},
	})
	if err := c.publisher.Publish(ctx, msg); err != nil {
		return err
	}

	telemetry.ReportAttestation(opData.FunctionSelector.String())
	c.logger.Debug("published attestation", "operation", opData.FunctionSelector.String(), "nonce", opData.Nonce)
	return nil
}

// Run attests every operation received from ops until ctx is done or ops is
// closed. Operations that fail validation or publishing are logged and skipped.
func (c *Collector) Run(ctx context.Context, ops <-chan types.OperationData) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case opData, ok := <-ops:
			if !ok {
				return nil
			}
			if err := c.Publish(ctx, opData); err != nil {
				c.logger.Error("failed to attest operation", "operation", opData.FunctionSelector.String(), "nonce", opData.Nonce, "error", err)
			}
		}
	}
}
