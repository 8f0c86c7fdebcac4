package keeper

import (
	"github.com/ethereum/go-ethereum/common"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// verifySignatures checks that every signature recovers to its claimed signer, that
// every signer is a registered keeper of info and that the distinct signers meet the
// consensus target rate. Repeated signatures by one keeper count once. It returns the
// distinct signer count.
func verifySignatures(info types.ProtocolInfo, fingerprint common.Hash, signatures []types.KeeperSignature) (int, error) {
	if len(signatures) == 0 {
		return 0, sdkerrors.Wrap(types.ErrInsufficientQuorum, "signatures cannot be empty")
	}

	seenSigners := make(map[common.Address]bool)
	for i, sig := range signatures {
		if err := sig.Verify(fingerprint); err != nil {
			return 0, sdkerrors.Wrapf(err, "signature %d", i)
		}

		if !info.IsKeeper(sig.Signer) {
			return 0, sdkerrors.Wrapf(types.ErrInvalidSignature, "signer %s is not a registered keeper", sig.Signer.Hex())
		}

		seenSigners[sig.Signer] = true
	}

	distinct := len(seenSigners)
	keeperCount := info.Keepers.Len()
	if !types.QuorumReached(distinct, keeperCount, info.ConsensusTargetRate) {
		return 0, sdkerrors.Wrapf(
			types.ErrInsufficientQuorum, "quorum not met: required %s of %d keepers at rate %d, got %d",
			types.RequiredSignatures(keeperCount, info.ConsensusTargetRate), keeperCount, info.ConsensusTargetRate, distinct,
		)
	}

	return distinct, nil
}
