package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// JackpotPool is the pool-wide singleton. Balance only ever goes back to zero
// through a won draw.
type JackpotPool struct {
	Balance       *uint256.Int
	LastWinner    *common.Address
	LastWinAmount *uint256.Int
	LastWinBlock  uint64
	TotalPaidOut  *uint256.Int
	Draws         uint64
	Wins          uint64
}

func NewJackpotPool() *JackpotPool {
	return &JackpotPool{
		Balance:       new(uint256.Int),
		LastWinAmount: new(uint256.Int),
		TotalPaidOut:  new(uint256.Int),
	}
}

func (j *JackpotPool) Clone() *JackpotPool {
	if j == nil {
		return nil
	}
	out := &JackpotPool{
		Balance:       cloneInt(j.Balance),
		LastWinAmount: cloneInt(j.LastWinAmount),
		LastWinBlock:  j.LastWinBlock,
		TotalPaidOut:  cloneInt(j.TotalPaidOut),
		Draws:         j.Draws,
		Wins:          j.Wins,
	}
	if j.LastWinner != nil {
		w := *j.LastWinner
		out.LastWinner = &w
	}
	return out
}

// JackpotStatus is the public view of the pool together with its draw gates.
type JackpotStatus struct {
	Pool              *JackpotPool
	Threshold         *uint256.Int
	MinAmount         *uint256.Int
	WinProbabilityPct uint64
	Eligible          bool
}

func cloneInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
