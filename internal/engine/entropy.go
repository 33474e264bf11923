package engine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// DrawSeed is the input mixed into a jackpot roll.
type DrawSeed struct {
	Timestamp  uint64
	PrevRandao common.Hash
	User       common.Address
	Amount     *uint256.Int
}

// Entropy yields a roll in [0, 100) for a draw.
type Entropy interface {
	Roll(seed DrawSeed) uint64
}

// KeccakEntropy hashes abi.encodePacked(timestamp, prevrandao, user, amount).
// Anyone who sees or influences those inputs before the draw can predict the
// roll; it is not a secure randomness source.
type KeccakEntropy struct{}

func (KeccakEntropy) Roll(seed DrawSeed) uint64 {
	packed := make([]byte, 0, 32+32+20+32)
	ts := uint256.NewInt(seed.Timestamp).Bytes32()
	packed = append(packed, ts[:]...)
	packed = append(packed, seed.PrevRandao[:]...)
	packed = append(packed, seed.User[:]...)
	amount := seed.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}
	amt := amount.Bytes32()
	packed = append(packed, amt[:]...)

	h := new(uint256.Int).SetBytes(crypto.Keccak256(packed))
	return h.Mod(h, uint256.NewInt(percentDenominator)).Uint64()
}

// FixedEntropy always rolls the same value. Used by simulations and tests to
// force a draw result.
type FixedEntropy uint64

func (f FixedEntropy) Roll(DrawSeed) uint64 {
	return uint64(f) % percentDenominator
}
