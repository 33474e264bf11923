package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Currency is a pool asset. The zero address stands for the chain's native
// currency.
type Currency struct {
	Address common.Address
}

func (c Currency) Equal(other Currency) bool {
	return c.Address == other.Address
}

// PoolKey identifies the pool a callback originates from.
type PoolKey struct {
	Currency0   Currency
	Currency1   Currency
	Fee         uint32
	TickSpacing int32
	Hooks       common.Address
}

// BalanceDelta carries the signed per-leg changes of an operation.
// Negative = owed by the user to the pool, positive = owed to the user.
type BalanceDelta struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

func (d BalanceDelta) Leg(i int) *big.Int {
	var v *big.Int
	if i == 0 {
		v = d.Amount0
	} else {
		v = d.Amount1
	}
	if v == nil {
		return new(big.Int)
	}
	return v
}

type SwapParams struct {
	ZeroForOne      bool
	AmountSpecified *big.Int
}

// BlockContext is the execution context supplied with every callback. Number
// is the activity marker used for streaks; PrevRandao is the external
// entropy hint mixed into jackpot draws.
type BlockContext struct {
	Number     uint64
	Timestamp  uint64
	PrevRandao common.Hash
}

type EventKind string

const (
	EventLiquidityAdded EventKind = "liquidity_added"
	EventSwap           EventKind = "swap"
)

// LiquidityEvent is an afterAddLiquidity callback.
type LiquidityEvent struct {
	Block    BlockContext
	Sender   common.Address
	Key      PoolKey
	Delta    BalanceDelta
	HookData []byte
}

// SwapEvent is an afterSwap callback.
type SwapEvent struct {
	Block    BlockContext
	Sender   common.Address
	Key      PoolKey
	Params   SwapParams
	Delta    BalanceDelta
	HookData []byte
}
