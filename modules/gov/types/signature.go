package types

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const (
	// SignatureLength is the expected length of an ECDSA signature (r||s||v)
	SignatureLength = 65
	// recoveryIDIndex is the byte position of the recovery ID (v) in the signature
	recoveryIDIndex = 64
)

// SignOperation signs the fingerprint of op with the given keeper key.
func SignOperation(op OperationData, key *ecdsa.PrivateKey) (KeeperSignature, error) {
	fingerprint, err := op.Fingerprint()
	if err != nil {
		return KeeperSignature{}, err
	}
	return SignFingerprint(fingerprint, key)
}

// SignFingerprint signs an operation fingerprint with the given keeper key.
func SignFingerprint(fingerprint common.Hash, key *ecdsa.PrivateKey) (KeeperSignature, error) {
	sig, err := crypto.Sign(SigningDigest(fingerprint), key)
	if err != nil {
		return KeeperSignature{}, sdkerrors.Wrapf(ErrInvalidSignature, "failed to sign operation: %v", err)
	}
	return KeeperSignature{
		Signer:    crypto.PubkeyToAddress(key.PublicKey),
		Signature: sig,
	}, nil
}

// RecoverSigner recovers the address that produced sig over the given fingerprint.
func RecoverSigner(fingerprint common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, sdkerrors.Wrapf(ErrInvalidSignature, "invalid signature length: expected %d, got %d", SignatureLength, len(sig))
	}

	pubKey, err := crypto.SigToPub(SigningDigest(fingerprint), normalizeSignature(sig))
	if err != nil {
		return common.Address{}, sdkerrors.Wrapf(ErrInvalidSignature, "failed to recover public key: %v", err)
	}
	if pubKey == nil {
		return common.Address{}, sdkerrors.Wrap(ErrInvalidSignature, "recovered public key is nil")
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// Verify checks that the signature recovers to the claimed signer.
func (ks KeeperSignature) Verify(fingerprint common.Hash) error {
	recovered, err := RecoverSigner(fingerprint, ks.Signature)
	if err != nil {
		return err
	}
	if recovered != ks.Signer {
		return sdkerrors.Wrapf(ErrInvalidSignature, "signature recovers to %s, claimed signer %s", recovered.Hex(), ks.Signer.Hex())
	}
	return nil
}

// normalizeSignature converts the ECDSA recovery ID (v) from Ethereum format (27/28)
// to raw format (0/1) as expected by crypto.SigToPub.
func normalizeSignature(sig []byte) []byte {
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)

	switch normalized[recoveryIDIndex] {
	case 27:
		normalized[recoveryIDIndex] = 0
	case 28:
		normalized[recoveryIDIndex] = 1
	}

	return normalized
}
