package engine

import (
	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Contribute adds amount to the jackpot unconditionally.
func (s *State) Contribute(amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	j := s.mutJackpot()
	j.Balance.Add(j.Balance, amount)
}

// Eligible reports whether a draw may run for an event of ethAmount.
func (p Params) Eligible(jackpot *model.JackpotPool, ethAmount *uint256.Int) bool {
	return ethAmount.Cmp(p.JackpotMinAmount) >= 0 && jackpot.Balance.Cmp(p.JackpotThreshold) >= 0
}

// TryDraw runs the gated draw for user. On a win the whole balance is read
// and zeroed in one step and returned; otherwise nil.
func (e *Engine) TryDraw(st *State, blk model.BlockContext, user common.Address, ethAmount *uint256.Int) (*uint256.Int, bool) {
	if !e.params.Eligible(st.jackpot, ethAmount) {
		return nil, false
	}
	j := st.mutJackpot()
	j.Draws++

	roll := e.entropy.Roll(DrawSeed{
		Timestamp:  blk.Timestamp,
		PrevRandao: blk.PrevRandao,
		User:       user,
		Amount:     ethAmount,
	})
	if roll >= e.params.JackpotWinPercent {
		return nil, true
	}

	won := new(uint256.Int).Set(j.Balance)
	j.Balance.Clear()
	j.Wins++
	winner := user
	j.LastWinner = &winner
	j.LastWinAmount = new(uint256.Int).Set(won)
	j.LastWinBlock = blk.Number
	j.TotalPaidOut.Add(j.TotalPaidOut, won)
	return won, true
}
