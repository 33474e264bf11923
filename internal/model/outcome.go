package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Skip reasons recorded on an Outcome when a transition stops early.
const (
	SkipPairNotNative    = "pair_not_native"
	SkipWrongDirection   = "wrong_direction"
	SkipNoNativeOutflow  = "no_native_outflow"
	SkipAmountOutOfRange = "amount_out_of_range"
	SkipEmptyPayload     = "empty_payload"
	SkipMalformedPayload = "malformed_payload"
	SkipZeroUser         = "zero_user"
)

// Step tags recorded for the parts of a transition that ran.
const (
	StepJackpotContribution = "jackpot_contribution"
	StepReferralRegistered  = "referral_registered"
	StepStreak              = "streak"
	StepMint                = "mint"
	StepReferralPayout      = "referral_payout"
	StepJackpotDraw         = "jackpot_draw"
	StepJackpotWon          = "jackpot_won"
)

// Outcome describes everything one callback did to the reward state.
type Outcome struct {
	Kind           EventKind
	Block          uint64
	User           common.Address
	Referrer       *common.Address
	Registered     bool
	EthAmount      *uint256.Int
	Contribution   *uint256.Int
	BasePoints     *uint256.Int
	Streak         uint64
	BonusPercent   uint64
	Bonus          *uint256.Int
	TotalPoints    *uint256.Int
	ReferralPoints *uint256.Int
	JackpotWon     *uint256.Int
	JackpotBalance *uint256.Int
	Skipped        string
	Steps          []string
}

func NewOutcome(kind EventKind, block uint64) *Outcome {
	return &Outcome{
		Kind:           kind,
		Block:          block,
		EthAmount:      new(uint256.Int),
		Contribution:   new(uint256.Int),
		BasePoints:     new(uint256.Int),
		Bonus:          new(uint256.Int),
		TotalPoints:    new(uint256.Int),
		ReferralPoints: new(uint256.Int),
		JackpotWon:     new(uint256.Int),
		JackpotBalance: new(uint256.Int),
	}
}

func (o *Outcome) Skip(reason string) *Outcome {
	o.Skipped = reason
	return o
}

func (o *Outcome) Step(tag string) {
	o.Steps = append(o.Steps, tag)
}

func (o *Outcome) WonJackpot() bool {
	return o.JackpotWon != nil && !o.JackpotWon.IsZero()
}
