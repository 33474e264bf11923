package metrics

import (
	"testing"

	"UD_loyalty_hook/internal/model"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOutcome(t *testing.T) {
	applied := model.NewOutcome(model.EventSwap, 42)
	applied.Contribution = uint256.NewInt(10_000_000_000_000_000)
	applied.JackpotBalance = uint256.NewInt(3_000_000_000_000_000_000)
	applied.TotalPoints = uint256.NewInt(200_000_000_000_000_000)
	applied.Step(model.StepJackpotContribution)
	applied.Step(model.StepJackpotDraw)

	skipped := model.NewOutcome(model.EventLiquidityAdded, 43).Skip(model.SkipPairNotNative)

	beforeApplied := testutil.ToFloat64(EventsProcessedTotal.WithLabelValues("swap", ResultApplied))
	beforeSkipped := testutil.ToFloat64(EventsProcessedTotal.WithLabelValues("liquidity_added", model.SkipPairNotNative))
	beforeDraws := testutil.ToFloat64(JackpotDrawsTotal)

	ObserveOutcome(applied)
	ObserveOutcome(skipped)

	assert.Equal(t, beforeApplied+1, testutil.ToFloat64(EventsProcessedTotal.WithLabelValues("swap", ResultApplied)))
	assert.Equal(t, beforeSkipped+1, testutil.ToFloat64(EventsProcessedTotal.WithLabelValues("liquidity_added", model.SkipPairNotNative)))
	assert.Equal(t, beforeDraws+1, testutil.ToFloat64(JackpotDrawsTotal))
	assert.InDelta(t, 3.0, testutil.ToFloat64(JackpotBalance), 1e-9)
	assert.Equal(t, 43.0, testutil.ToFloat64(LastProcessedBlock))
}
