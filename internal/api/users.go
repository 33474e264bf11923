package api

import (
	"errors"
	"net/http"
	"strconv"

	"UD_loyalty_hook/internal/service"
	"UD_loyalty_hook/pkg/logger"
	"UD_loyalty_hook/pkg/units"
	"go.uber.org/zap"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	rs service.RewardServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, rs service.RewardServiceI) {
	r := &userRoutes{rs: rs}
	h := handler.Group("/users")
	{
		h.GET("/:address", r.GetAccount)
		h.GET("/:address/streak", r.GetStreak)
		h.GET("/:address/bonus", r.GetStreakBonusPercent)
		h.GET("/:address/referrer", r.GetReferrer)
		h.GET("/:address/referrals", r.GetReferrals)
		h.GET("/:address/events", r.GetEvents)
	}
}

func addressParam(c *gin.Context) (common.Address, bool) {
	raw := c.Param("address")
	if !common.IsHexAddress(raw) {
		logger.Logger().Info("invalid address parameter", zap.String("address", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (r *userRoutes) GetAccount(c *gin.Context) {
	log := logger.Logger()

	address, ok := addressParam(c)
	if !ok {
		return
	}

	summary, err := r.rs.GetAccount(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no account associated with the provided address"})
			return
		}
		log.Error("failed to get account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return
	}

	account := summary.Account
	c.JSON(http.StatusOK, gin.H{
		"address":        account.Address,
		"streak":         account.StreakCount,
		"last_activity":  account.LastActivity,
		"referrer":       account.Referrer,
		"referrals":      summary.Referrals,
		"bonus_percent":  summary.BonusPercent,
		"event_count":    account.EventCount,
		"total_earned":   account.TotalEarned.Dec(),
		"jackpot_wins":   account.JackpotWins,
		"balance":        summary.Balance.Dec(),
		"balance_tokens": units.FormatWei(summary.Balance),
	})
}

func (r *userRoutes) GetStreak(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"streak":  r.rs.GetStreak(c.Request.Context(), address),
	})
}

func (r *userRoutes) GetStreakBonusPercent(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":       address,
		"bonus_percent": r.rs.GetStreakBonusPercent(c.Request.Context(), address),
	})
}

func (r *userRoutes) GetReferrer(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"referrer": r.rs.GetReferrer(c.Request.Context(), address),
	})
}

func (r *userRoutes) GetReferrals(c *gin.Context) {
	log := logger.Logger()

	address, ok := addressParam(c)
	if !ok {
		return
	}

	referrals, err := r.rs.GetReferrals(c.Request.Context(), address)
	if err != nil {
		log.Error("failed to get referrals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referrals"})
		return
	}

	response := make([]gin.H, 0, len(referrals))
	for _, ref := range referrals {
		response = append(response, gin.H{
			"address":      ref.Address,
			"balance":      ref.Balance.Dec(),
			"event_count":  ref.EventCount,
			"total_earned": ref.TotalEarned.Dec(),
		})
	}

	c.JSON(http.StatusOK, response)
}

func (r *userRoutes) GetEvents(c *gin.Context) {
	log := logger.Logger()

	address, ok := addressParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = l
	}

	events, err := r.rs.GetEvents(c.Request.Context(), address, limit)
	if err != nil {
		log.Error("failed to get events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get events"})
		return
	}

	response := make([]interface{}, 0, len(events))
	for _, ev := range events {
		response = append(response, ev.View())
	}

	c.JSON(http.StatusOK, response)
}
