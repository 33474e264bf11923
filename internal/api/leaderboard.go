package api

import (
	"net/http"

	"UD_loyalty_hook/internal/service"
	"UD_loyalty_hook/pkg/logger"
	"UD_loyalty_hook/pkg/units"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type leaderboardRoutes struct {
	ls service.LeaderboardServiceI
}

func NewLeaderboardRoutes(handler *gin.RouterGroup, ls service.LeaderboardServiceI) {
	r := &leaderboardRoutes{ls: ls}
	handler.GET("/leaderboard", r.GetLeaderboard)
}

func (r *leaderboardRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.ls.GetLeaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	response := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		response = append(response, gin.H{
			"rank":           e.Rank,
			"address":        e.Address,
			"balance":        e.Balance.Dec(),
			"balance_tokens": units.FormatWei(e.Balance),
		})
	}

	c.JSON(http.StatusOK, response)
}
