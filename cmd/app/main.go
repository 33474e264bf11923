package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"UD_loyalty_hook/internal/api"
	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/metrics"
	"UD_loyalty_hook/internal/middleware"
	"UD_loyalty_hook/internal/notify"
	"UD_loyalty_hook/internal/repository"
	"UD_loyalty_hook/internal/service"
	"UD_loyalty_hook/pkg/auth"
	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(); err != nil {
		zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	native, err := cfg.Rewards.Native()
	if err != nil {
		zapLogger.Fatal("Invalid rewards config", zap.Error(err))
	}

	params := engine.DefaultParams()
	if err := params.Validate(); err != nil {
		zapLogger.Fatal("Invalid engine params", zap.Error(err))
	}

	feed := api.NewFeedHub()
	rewardService := service.NewRewardService(repo, engine.New(params, engine.KeccakEntropy{}), native, feed)
	if err := rewardService.Load(ctx); err != nil {
		zapLogger.Fatal("Failed to load reward state", zap.Error(err))
	}

	if cfg.Telegram.BotToken != "" {
		announcer, err := notify.NewTelegramAnnouncer(cfg.Telegram)
		if err != nil {
			zapLogger.Error("Telegram announcer disabled", zap.Error(err))
		} else {
			rewardService.AddPublisher(announcer)
			go announcer.Run(ctx)
		}
	}

	leaderboardService := service.NewLeaderboardService(repo, cfg.Leaderboard.Size)
	if err := leaderboardService.Start(ctx, cfg.Leaderboard.Schedule); err != nil {
		zapLogger.Fatal("Failed to start leaderboard refresh", zap.Error(err))
	}
	defer leaderboardService.Stop()

	metrics.StartMetricsCollection()

	if !cfg.Auth.Enabled {
		zapLogger.Warn("Hook ingestion authentication is disabled")
	}
	hookAuth := auth.NewHookAuth(cfg.Auth)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics(), middleware.RequestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a := router.Group("/api/v1")
	api.NewHookRoutes(a, rewardService, hookAuth)
	api.NewUserRoutes(a, rewardService)
	api.NewJackpotRoutes(a, rewardService)
	api.NewLeaderboardRoutes(a, leaderboardService)
	api.NewFeedRoutes(a, feed)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr), zap.String("root", rewardService.Root().Hex()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
}
