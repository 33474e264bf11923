// Package hook adapts pool-engine callbacks into reward engine transitions.
package hook

import (
	"math/big"

	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// maxDeltaBits bounds a leg magnitude to the pool engine's int128 range.
const maxDeltaBits = 128

type Adapter struct {
	engine *engine.Engine
	native model.Currency
}

func NewAdapter(e *engine.Engine, native common.Address) *Adapter {
	return &Adapter{
		engine: e,
		native: model.Currency{Address: native},
	}
}

func (a *Adapter) Native() common.Address {
	return a.native.Address
}

// OnLiquidityAdded handles an afterAddLiquidity callback.
func (a *Adapter) OnLiquidityAdded(st *engine.State, l ledger.Ledger, ev model.LiquidityEvent) *model.Outcome {
	out := model.NewOutcome(model.EventLiquidityAdded, ev.Block.Number)

	leg, ok := a.nativeLeg(ev.Key)
	if !ok {
		return out.Skip(model.SkipPairNotNative)
	}
	return a.process(st, l, ev.Block, ev.Delta.Leg(leg), ev.HookData, out)
}

// OnSwap handles an afterSwap callback. Only swaps paying in the native
// currency qualify.
func (a *Adapter) OnSwap(st *engine.State, l ledger.Ledger, ev model.SwapEvent) *model.Outcome {
	out := model.NewOutcome(model.EventSwap, ev.Block.Number)

	leg, ok := a.nativeLeg(ev.Key)
	if !ok {
		return out.Skip(model.SkipPairNotNative)
	}
	nativeIn := (leg == 0 && ev.Params.ZeroForOne) || (leg == 1 && !ev.Params.ZeroForOne)
	if !nativeIn {
		return out.Skip(model.SkipWrongDirection)
	}
	return a.process(st, l, ev.Block, ev.Delta.Leg(leg), ev.HookData, out)
}

func (a *Adapter) nativeLeg(key model.PoolKey) (int, bool) {
	switch {
	case key.Currency0.Equal(a.native):
		return 0, true
	case key.Currency1.Equal(a.native):
		return 1, true
	}
	return 0, false
}

func (a *Adapter) process(st *engine.State, l ledger.Ledger, blk model.BlockContext, delta *big.Int, hookData []byte, out *model.Outcome) *model.Outcome {
	// A zero native leg (one-sided add in the paired asset) still counts as
	// activity with a zero amount.
	if delta.Sign() > 0 {
		return out.Skip(model.SkipNoNativeOutflow)
	}
	magnitude := new(big.Int).Neg(delta)
	if magnitude.BitLen() > maxDeltaBits {
		return out.Skip(model.SkipAmountOutOfRange)
	}
	ethAmount, _ := uint256.FromBig(magnitude)
	out.EthAmount = ethAmount

	// The contribution lands before the payload is looked at, so it sticks
	// even when the payload turns out to be unusable.
	contribution := a.engine.Contribution(ethAmount)
	st.Contribute(contribution)
	out.Contribution = contribution
	out.JackpotBalance = st.JackpotBalance()
	out.Step(model.StepJackpotContribution)

	payload, err := DecodePayload(hookData)
	if err != nil {
		return out.Skip(model.SkipMalformedPayload)
	}
	if payload.Empty() {
		return out.Skip(model.SkipEmptyPayload)
	}
	if *payload.User == (common.Address{}) {
		return out.Skip(model.SkipZeroUser)
	}

	a.engine.Apply(st, l, engine.Input{
		Block:      blk,
		User:       *payload.User,
		Referrer:   payload.Referrer,
		BasePoints: a.engine.BasePoints(out.Kind, ethAmount),
		EthAmount:  ethAmount,
	}, out)
	return out
}
