package types

import (
	"math/big"
	"math/bits"
)

// BasisPoints is the consensus target rate that requires every keeper to sign.
const BasisPoints = 10_000

// QuorumReached reports whether distinct keeper signatures out of keeperCount meet the
// consensus target rate expressed in basis points, i.e.
// distinct >= ceil(rate * keeperCount / BasisPoints). The products are compared as
// 128-bit integers so no rate can overflow.
func QuorumReached(distinct, keeperCount int, rate uint64) bool {
	if distinct < 0 || keeperCount < 0 {
		return false
	}
	haveHi, haveLo := bits.Mul64(uint64(distinct), BasisPoints)
	needHi, needLo := bits.Mul64(rate, uint64(keeperCount))
	if haveHi != needHi {
		return haveHi > needHi
	}
	return haveLo >= needLo
}

// RequiredSignatures returns the smallest distinct signer count that reaches quorum.
// The result can exceed keeperCount when the rate is above BasisPoints.
func RequiredSignatures(keeperCount int, rate uint64) *big.Int {
	need := new(big.Int).Mul(new(big.Int).SetUint64(rate), big.NewInt(int64(keeperCount)))
	need.Add(need, big.NewInt(BasisPoints-1))
	return need.Quo(need, big.NewInt(BasisPoints))
}
