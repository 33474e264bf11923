package api

import (
	"errors"
	"net/http"

	"UD_loyalty_hook/internal/metrics"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/internal/service"
	"UD_loyalty_hook/pkg/auth"
	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type hookRoutes struct {
	rs service.RewardServiceI
}

func NewHookRoutes(handler *gin.RouterGroup, rs service.RewardServiceI, a *auth.HookAuth) {
	r := &hookRoutes{rs: rs}
	h := handler.Group("/hooks")
	h.Use(a.Middleware())
	{
		h.POST("/swap", r.HandleSwap)
		h.POST("/liquidity", r.HandleLiquidity)
	}
}

type HookResponse struct {
	EventID uuid.UUID         `json:"event_id"`
	Outcome model.OutcomeView `json:"outcome"`
}

func (r *hookRoutes) HandleSwap(c *gin.Context) {
	log := logger.Logger()

	req, ok := bindEvent(c)
	if !ok {
		return
	}

	ev, err := req.SwapEvent()
	if err != nil {
		log.Info("invalid swap event", zap.Error(err))
		metrics.EventsRejectedTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := r.rs.HandleSwap(c.Request.Context(), req.EventID, ev)
	respondOutcome(c, req.EventID, out, err)
}

func (r *hookRoutes) HandleLiquidity(c *gin.Context) {
	log := logger.Logger()

	req, ok := bindEvent(c)
	if !ok {
		return
	}

	ev, err := req.LiquidityEvent()
	if err != nil {
		log.Info("invalid liquidity event", zap.Error(err))
		metrics.EventsRejectedTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := r.rs.HandleLiquidity(c.Request.Context(), req.EventID, ev)
	respondOutcome(c, req.EventID, out, err)
}

func bindEvent(c *gin.Context) (*model.EventRequest, bool) {
	log := logger.Logger()

	var req model.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind event", zap.Error(err))
		metrics.EventsRejectedTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return nil, false
	}

	if req.EventID == uuid.Nil {
		metrics.EventsRejectedTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id is required"})
		return nil, false
	}

	return &req, true
}

func respondOutcome(c *gin.Context, eventID uuid.UUID, out *model.Outcome, err error) {
	log := logger.Logger()

	if err != nil {
		if errors.Is(err, service.ErrDuplicateEvent) {
			c.JSON(http.StatusConflict, gin.H{"error": "event already processed"})
			return
		}
		log.Error("failed to process event", zap.String("event_id", eventID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, HookResponse{
		EventID: eventID,
		Outcome: out.View(),
	})
}
