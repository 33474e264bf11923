package engine

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Ether is one unit-equivalent of the native currency in wei.
var Ether = uint256.NewInt(1_000_000_000_000_000_000)

const (
	DefaultStreakWindow                = 50
	DefaultSwapRatePercent             = 20
	DefaultLiquidityRatePercent        = 100
	DefaultReferralRatePercent         = 10
	DefaultContributionPercent         = 1
	DefaultJackpotWinPercent           = 5
	percentDenominator          uint64 = 100
)

// BonusTier grants BonusPercent of base points once a streak reaches MinStreak.
type BonusTier struct {
	MinStreak    uint64
	BonusPercent uint64
}

type Params struct {
	StreakWindow         uint64
	Tiers                []BonusTier
	SwapRatePercent      uint64
	LiquidityRatePercent uint64
	ReferralRatePercent  uint64
	ContributionPercent  uint64
	JackpotThreshold     *uint256.Int
	JackpotMinAmount     *uint256.Int
	JackpotWinPercent    uint64
}

func DefaultParams() Params {
	return Params{
		StreakWindow: DefaultStreakWindow,
		Tiers: []BonusTier{
			{MinStreak: 10, BonusPercent: 50},
			{MinStreak: 5, BonusPercent: 20},
			{MinStreak: 3, BonusPercent: 10},
		},
		SwapRatePercent:      DefaultSwapRatePercent,
		LiquidityRatePercent: DefaultLiquidityRatePercent,
		ReferralRatePercent:  DefaultReferralRatePercent,
		ContributionPercent:  DefaultContributionPercent,
		JackpotThreshold:     new(uint256.Int).Mul(uint256.NewInt(10), Ether),
		JackpotMinAmount:     new(uint256.Int).Div(Ether, uint256.NewInt(2)),
		JackpotWinPercent:    DefaultJackpotWinPercent,
	}
}

// Validate checks that tiers are strictly descending and that every
// percentage is in range.
func (p Params) Validate() error {
	if p.JackpotThreshold == nil || p.JackpotMinAmount == nil {
		return errors.New("jackpot threshold and minimum amount are required")
	}
	rates := []struct {
		name string
		pct  uint64
	}{
		{"swap rate", p.SwapRatePercent},
		{"liquidity rate", p.LiquidityRatePercent},
		{"referral rate", p.ReferralRatePercent},
		{"contribution", p.ContributionPercent},
		{"jackpot win", p.JackpotWinPercent},
	}
	for _, r := range rates {
		if r.pct > percentDenominator {
			return fmt.Errorf("%s percent %d exceeds 100", r.name, r.pct)
		}
	}
	for i, tier := range p.Tiers {
		if i > 0 && tier.MinStreak >= p.Tiers[i-1].MinStreak {
			return fmt.Errorf("bonus tier %d is not below the previous tier", i)
		}
	}
	return nil
}

// BonusPercent returns the percentage of the highest tier the streak reaches.
// Tiers never stack.
func (p Params) BonusPercent(streak uint64) uint64 {
	for _, tier := range p.Tiers {
		if streak >= tier.MinStreak {
			return tier.BonusPercent
		}
	}
	return 0
}

func percentOf(amount *uint256.Int, pct uint64) *uint256.Int {
	out := new(uint256.Int).Mul(amount, uint256.NewInt(pct))
	return out.Div(out, uint256.NewInt(percentDenominator))
}
