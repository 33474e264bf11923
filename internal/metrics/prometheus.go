package metrics

import (
	"time"

	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/pkg/units"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "loyalty"
	subsystem = "hook"

	// ResultApplied labels an event that reached the points engine.
	ResultApplied = "applied"
)

var (
	startTime = time.Now()

	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "uptime_seconds",
		Help:      "Time passed since the service started in seconds",
	})

	// EventsProcessedTotal counts callbacks by kind and result
	// (result=applied or a skip reason).
	EventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_processed_total",
		Help:      "Pool callbacks processed by kind and result",
	}, []string{"kind", "result"})

	EventsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_rejected_total",
		Help:      "Callbacks rejected before the engine (reason=duplicate/invalid/persist)",
	}, []string{"reason"})

	PointsMintedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "points_minted_total",
		Help:      "Points minted in whole units (reason=points/referral/jackpot)",
	}, []string{"reason"})

	JackpotBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "jackpot_balance",
		Help:      "Current jackpot balance in whole units",
	})

	JackpotDrawsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "jackpot_draws_total",
		Help:      "Jackpot draws that passed the gates",
	})

	JackpotWinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "jackpot_wins_total",
		Help:      "Jackpot draws that paid out",
	})

	LastProcessedBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_processed_block",
		Help:      "Block number of the last processed callback",
	})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "feed_subscribers",
		Help:      "Open websocket feed connections",
	})

	LeaderboardRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "leaderboard_refresh_total",
		Help:      "Leaderboard refresh runs (status=success/failure)",
	}, []string{"status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// StartMetricsCollection starts the uptime updater.
func StartMetricsCollection() {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			UptimeSeconds.Set(time.Since(startTime).Seconds())
		}
	}()
}

// ObserveOutcome records a committed transition.
func ObserveOutcome(out *model.Outcome) {
	result := ResultApplied
	if out.Skipped != "" {
		result = out.Skipped
	}
	EventsProcessedTotal.WithLabelValues(string(out.Kind), result).Inc()
	LastProcessedBlock.Set(float64(out.Block))

	if out.Contribution.IsZero() && out.Skipped != "" {
		return
	}
	JackpotBalance.Set(units.ToFloat(out.JackpotBalance))

	if !out.TotalPoints.IsZero() {
		PointsMintedTotal.WithLabelValues("points").Add(units.ToFloat(out.TotalPoints))
	}
	if !out.ReferralPoints.IsZero() {
		PointsMintedTotal.WithLabelValues("referral").Add(units.ToFloat(out.ReferralPoints))
	}
	for _, step := range out.Steps {
		if step == model.StepJackpotDraw {
			JackpotDrawsTotal.Inc()
		}
	}
	if out.WonJackpot() {
		JackpotWinsTotal.Inc()
		PointsMintedTotal.WithLabelValues("jackpot").Add(units.ToFloat(out.JackpotWon))
	}
}
