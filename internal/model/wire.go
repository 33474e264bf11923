package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// EventRequest is the JSON form of a pool callback, shared by the ingestion
// API and the replay tool.
type EventRequest struct {
	EventID  uuid.UUID        `json:"event_id"`
	Kind     EventKind        `json:"kind,omitempty"`
	Block    BlockRequest     `json:"block"`
	Sender   common.Address   `json:"sender"`
	Key      PoolKeyRequest   `json:"key"`
	Params   *SwapParamsInput `json:"params,omitempty"`
	Delta    DeltaRequest     `json:"delta"`
	HookData hexutil.Bytes    `json:"hook_data"`
}

type BlockRequest struct {
	Number     uint64      `json:"number"`
	Timestamp  uint64      `json:"timestamp"`
	PrevRandao common.Hash `json:"prevrandao"`
}

type PoolKeyRequest struct {
	Currency0   common.Address `json:"currency0"`
	Currency1   common.Address `json:"currency1"`
	Fee         uint32         `json:"fee"`
	TickSpacing int32          `json:"tick_spacing"`
	Hooks       common.Address `json:"hooks"`
}

type SwapParamsInput struct {
	ZeroForOne      bool   `json:"zero_for_one"`
	AmountSpecified string `json:"amount_specified"`
}

type DeltaRequest struct {
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

func (r *EventRequest) block() BlockContext {
	return BlockContext{
		Number:     r.Block.Number,
		Timestamp:  r.Block.Timestamp,
		PrevRandao: r.Block.PrevRandao,
	}
}

func (r *EventRequest) key() PoolKey {
	return PoolKey{
		Currency0:   Currency{Address: r.Key.Currency0},
		Currency1:   Currency{Address: r.Key.Currency1},
		Fee:         r.Key.Fee,
		TickSpacing: r.Key.TickSpacing,
		Hooks:       r.Key.Hooks,
	}
}

func (r *EventRequest) delta() (BalanceDelta, error) {
	a0, err := parseSigned(r.Delta.Amount0)
	if err != nil {
		return BalanceDelta{}, fmt.Errorf("delta.amount0: %w", err)
	}
	a1, err := parseSigned(r.Delta.Amount1)
	if err != nil {
		return BalanceDelta{}, fmt.Errorf("delta.amount1: %w", err)
	}
	return BalanceDelta{Amount0: a0, Amount1: a1}, nil
}

func (r *EventRequest) LiquidityEvent() (LiquidityEvent, error) {
	delta, err := r.delta()
	if err != nil {
		return LiquidityEvent{}, err
	}
	return LiquidityEvent{
		Block:    r.block(),
		Sender:   r.Sender,
		Key:      r.key(),
		Delta:    delta,
		HookData: r.HookData,
	}, nil
}

func (r *EventRequest) SwapEvent() (SwapEvent, error) {
	if r.Params == nil {
		return SwapEvent{}, fmt.Errorf("params are required for a swap")
	}
	delta, err := r.delta()
	if err != nil {
		return SwapEvent{}, err
	}
	specified, err := parseSigned(r.Params.AmountSpecified)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("params.amount_specified: %w", err)
	}
	return SwapEvent{
		Block:  r.block(),
		Sender: r.Sender,
		Key:    r.key(),
		Params: SwapParams{
			ZeroForOne:      r.Params.ZeroForOne,
			AmountSpecified: specified,
		},
		Delta:    delta,
		HookData: r.HookData,
	}, nil
}

func parseSigned(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// OutcomeView is the JSON rendering of an Outcome. Amounts are decimal wei
// strings.
type OutcomeView struct {
	Kind           EventKind       `json:"kind"`
	Block          uint64          `json:"block"`
	User           *common.Address `json:"user,omitempty"`
	Referrer       *common.Address `json:"referrer,omitempty"`
	Registered     bool            `json:"referral_registered"`
	EthAmount      string          `json:"eth_amount"`
	Contribution   string          `json:"jackpot_contribution"`
	BasePoints     string          `json:"base_points"`
	Streak         uint64          `json:"streak"`
	BonusPercent   uint64          `json:"bonus_percent"`
	Bonus          string          `json:"bonus"`
	TotalPoints    string          `json:"total_points"`
	ReferralPoints string          `json:"referral_points"`
	JackpotWon     string          `json:"jackpot_won"`
	JackpotBalance string          `json:"jackpot_balance"`
	Skipped        string          `json:"skipped,omitempty"`
	Steps          []string        `json:"steps"`
}

func (o *Outcome) View() OutcomeView {
	v := OutcomeView{
		Kind:           o.Kind,
		Block:          o.Block,
		Referrer:       o.Referrer,
		Registered:     o.Registered,
		EthAmount:      o.EthAmount.Dec(),
		Contribution:   o.Contribution.Dec(),
		BasePoints:     o.BasePoints.Dec(),
		Streak:         o.Streak,
		BonusPercent:   o.BonusPercent,
		Bonus:          o.Bonus.Dec(),
		TotalPoints:    o.TotalPoints.Dec(),
		ReferralPoints: o.ReferralPoints.Dec(),
		JackpotWon:     o.JackpotWon.Dec(),
		JackpotBalance: o.JackpotBalance.Dec(),
		Skipped:        o.Skipped,
		Steps:          o.Steps,
	}
	if o.User != (common.Address{}) {
		user := o.User
		v.User = &user
	}
	if v.Steps == nil {
		v.Steps = []string{}
	}
	return v
}
