package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/amd"
	"github.com/edsindustries1/my-outbound-dialer/internal/auth"
	"github.com/edsindustries1/my-outbound-dialer/internal/calls"
	"github.com/edsindustries1/my-outbound-dialer/internal/campaign"
	"github.com/edsindustries1/my-outbound-dialer/internal/config"
	"github.com/edsindustries1/my-outbound-dialer/internal/history"
	"github.com/edsindustries1/my-outbound-dialer/internal/httpapi"
	"github.com/edsindustries1/my-outbound-dialer/internal/reporting"
	"github.com/edsindustries1/my-outbound-dialer/internal/telephony"
	"github.com/edsindustries1/my-outbound-dialer/pkg/logger"
	"github.com/edsindustries1/my-outbound-dialer/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	historyRepo := history.NewPostgresRepo(db)
	if err := historyRepo.EnsureSchema(rootCtx); err != nil {
		log.Error("history schema init failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	gateway := telephony.NewTelnyxGateway(telephony.TelnyxOptions{
		APIKey:       cfg.Telnyx.APIKey,
		ConnectionID: cfg.Telnyx.ConnectionID,
		WebhookURL:   cfg.WebhookURL(),
	})

	store := calls.NewStore()

	policy := amd.DefaultPolicy()
	policy.TreatNotSureAsMachine = cfg.Dialer.TreatNotSureAsMachine
	policy.TreatTimeoutAsMachine = cfg.Dialer.TreatTimeoutAsMachine

	orchestrator := campaign.NewOrchestrator(campaign.Options{
		Log:                     log,
		Gateway:                 gateway,
		Store:                   store,
		History:                 historyRepo,
		Policy:                  policy,
		FromNumber:              cfg.Telnyx.FromNumber,
		DefaultPacing:           cfg.Dialer.Pacing,
		AMDFallback:             cfg.Dialer.AMDFallback,
		AllowDialDuringTransfer: cfg.Dialer.AllowDialDuringTransfer,
	})

	reports := reporting.NewService(historyRepo, policy)

	webhook := telephony.WebhookHandler{
		Sink:   orchestrator,
		Dedupe: telephony.NewEventDeduper(rdb, cfg.Dialer.EventDedupeTTL),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:         authManager,
		Orchestrator: orchestrator,
		Reports:      reports,
	}
	registerRoutes(r, h, webhook, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// Hang up live calls and flush history before the listener closes.
	orchestrator.Teardown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
