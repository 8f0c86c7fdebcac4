package photontesting

import (
	"crypto/ecdsa"
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

// GenerateKey creates a new secp256k1 keeper key.
func GenerateKey(tb testing.TB) *ecdsa.PrivateKey {
	tb.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(tb, err)
	return key
}

// GenerateKeys creates n keeper keys and returns them with their addresses.
func GenerateKeys(tb testing.TB, n int) ([]*ecdsa.PrivateKey, []common.Address) {
	tb.Helper()
	keys := make([]*ecdsa.PrivateKey, n)
	addrs := make([]common.Address, n)
	for i := range keys {
		keys[i] = GenerateKey(tb)
		addrs[i] = crypto.PubkeyToAddress(keys[i].PublicKey)
	}
	return keys, addrs
}

// GenerateLedgerAddress returns a deterministic non-zero ledger address for seed.
func GenerateLedgerAddress(seed int) types.LedgerAddress {
	var addr types.LedgerAddress
	addr[0] = 0xed
	binary.BigEndian.PutUint64(addr[types.LedgerAddressLength-8:], uint64(seed))
	return addr
}

// SignOperation signs opData with every key, in order.
func SignOperation(tb testing.TB, opData types.OperationData, keys ...*ecdsa.PrivateKey) types.SignedOperation {
	tb.Helper()
	signedOp := types.SignedOperation{OperationData: opData}
	for _, key := range keys {
		sig, err := types.SignOperation(opData, key)
		require.NoError(tb, err)
		signedOp.Signatures = append(signedOp.Signatures, sig)
	}
	return signedOp
}

// ProtocolID builds a protocol identity from name, failing the test on error.
func ProtocolID(tb testing.TB, name string) types.ProtocolID {
	tb.Helper()
	id, err := types.NewProtocolIDFromString(name)
	require.NoError(tb, err)
	return id
}
