// Package engine implements the event-to-reward state transition: streaks,
// referrals, bonus points and the jackpot draw.
package engine

import (
	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type Engine struct {
	params  Params
	entropy Entropy
}

func New(params Params, entropy Entropy) *Engine {
	if entropy == nil {
		entropy = KeccakEntropy{}
	}
	return &Engine{params: params, entropy: entropy}
}

func (e *Engine) Params() Params {
	return e.params
}

// Input is a validated event ready for the transition. BasePoints is already
// scaled by the event kind's rate.
type Input struct {
	Block      model.BlockContext
	User       common.Address
	Referrer   *common.Address
	BasePoints *uint256.Int
	EthAmount  *uint256.Int
}

// BasePoints scales ethAmount by the rate of the event kind.
func (e *Engine) BasePoints(kind model.EventKind, ethAmount *uint256.Int) *uint256.Int {
	switch kind {
	case model.EventSwap:
		return percentOf(ethAmount, e.params.SwapRatePercent)
	case model.EventLiquidityAdded:
		return percentOf(ethAmount, e.params.LiquidityRatePercent)
	}
	return new(uint256.Int)
}

// Contribution is the share of ethAmount routed to the jackpot.
func (e *Engine) Contribution(ethAmount *uint256.Int) *uint256.Int {
	return percentOf(ethAmount, e.params.ContributionPercent)
}

// StreakBonusPercent is the bonus the user's stored streak currently earns.
func (e *Engine) StreakBonusPercent(st *State, user common.Address) uint64 {
	return e.params.BonusPercent(st.Streak(user))
}

// Apply runs the transition for one event. It never fails: every step either
// runs or is skipped, and earlier steps are never rolled back.
func (e *Engine) Apply(st *State, l ledger.Ledger, in Input, out *model.Outcome) {
	out.User = in.User
	out.BasePoints = new(uint256.Int).Set(in.BasePoints)
	out.EthAmount = new(uint256.Int).Set(in.EthAmount)

	acc := st.mutAccount(in.User)
	acc.EventCount++

	// first write wins; self and null referrers are never stored
	if in.Referrer != nil && !acc.HasReferrer() &&
		*in.Referrer != in.User && *in.Referrer != (common.Address{}) {
		ref := *in.Referrer
		acc.Referrer = &ref
		out.Registered = true
		out.Step(model.StepReferralRegistered)
	}

	if acc.LastActivity+e.params.StreakWindow >= in.Block.Number {
		acc.StreakCount++
	} else {
		acc.StreakCount = 1
	}
	acc.LastActivity = in.Block.Number
	out.Streak = acc.StreakCount
	out.Step(model.StepStreak)

	out.BonusPercent = e.params.BonusPercent(acc.StreakCount)
	out.Bonus = percentOf(in.BasePoints, out.BonusPercent)
	out.TotalPoints = new(uint256.Int).Add(in.BasePoints, out.Bonus)
	if !out.TotalPoints.IsZero() {
		l.Mint(in.User, out.TotalPoints, ledger.ReasonPoints)
		acc.TotalEarned.Add(acc.TotalEarned, out.TotalPoints)
		out.Step(model.StepMint)
	}

	if acc.HasReferrer() {
		ref := *acc.Referrer
		out.Referrer = &ref
		out.ReferralPoints = percentOf(in.BasePoints, e.params.ReferralRatePercent)
		if !out.ReferralPoints.IsZero() {
			l.Mint(ref, out.ReferralPoints, ledger.ReasonReferral)
			out.Step(model.StepReferralPayout)
		}
	}

	won, drew := e.TryDraw(st, in.Block, in.User, in.EthAmount)
	if drew {
		out.Step(model.StepJackpotDraw)
	}
	if won != nil {
		if !won.IsZero() {
			l.Mint(in.User, won, ledger.ReasonJackpot)
		}
		acc.TotalEarned.Add(acc.TotalEarned, won)
		acc.JackpotWins++
		out.JackpotWon = won
		out.Step(model.StepJackpotWon)
	}
	out.JackpotBalance = st.JackpotBalance()
}
