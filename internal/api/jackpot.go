package api

import (
	"net/http"

	"UD_loyalty_hook/internal/service"
	"UD_loyalty_hook/pkg/units"

	"github.com/gin-gonic/gin"
)

type jackpotRoutes struct {
	rs service.RewardServiceI
}

func NewJackpotRoutes(handler *gin.RouterGroup, rs service.RewardServiceI) {
	r := &jackpotRoutes{rs: rs}
	h := handler.Group("/jackpot")
	{
		h.GET("", r.GetJackpotBalance)
		h.GET("/status", r.GetJackpotStatus)
	}
}

func (r *jackpotRoutes) GetJackpotBalance(c *gin.Context) {
	balance := r.rs.GetJackpotBalance(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"balance":        balance.Dec(),
		"balance_tokens": units.FormatWei(balance),
	})
}

func (r *jackpotRoutes) GetJackpotStatus(c *gin.Context) {
	status := r.rs.GetJackpotStatus(c.Request.Context())
	pool := status.Pool

	c.JSON(http.StatusOK, gin.H{
		"balance":             pool.Balance.Dec(),
		"balance_tokens":      units.FormatWei(pool.Balance),
		"threshold":           status.Threshold.Dec(),
		"min_amount":          status.MinAmount.Dec(),
		"win_probability_pct": status.WinProbabilityPct,
		"eligible":            status.Eligible,
		"draws":               pool.Draws,
		"wins":                pool.Wins,
		"last_winner":         pool.LastWinner,
		"last_win_amount":     pool.LastWinAmount.Dec(),
		"last_win_block":      pool.LastWinBlock,
		"total_paid_out":      pool.TotalPaidOut.Dec(),
	})
}
