package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"arbscan/internal/config"
	cronrunner "arbscan/internal/cron"
	"arbscan/internal/db"
	"arbscan/internal/handler"
	"arbscan/internal/logger"
	"arbscan/internal/market"
	"arbscan/internal/ranker"
	"arbscan/internal/repository"
	gormrepository "arbscan/internal/repository/gorm"
	"arbscan/internal/risk"
	"arbscan/internal/strategy"

	_ "arbscan/docs"
)

func main() {
	cfgPath := os.Getenv("ARB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ARB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.Repository
	var gormDB *db.DB
	if cfg.DB.Enabled {
		gormDB, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(gormDB)

		if err := db.SetTimezone(gormDB, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(gormDB); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(gormDB.Gorm)
	}

	httpClient := &http.Client{Timeout: cfg.Binance.Timeout}
	client := market.NewClient(httpClient, cfg.Binance.SpotBaseURL, cfg.Binance.FuturesBaseURL, cfg.Binance.P2PBaseURL, logger)

	if cfg.Stream.Enabled {
		ticker := &market.Ticker{
			URL:    cfg.Stream.URL,
			MaxAge: cfg.Stream.MaxAge,
			Logger: logger,
		}
		client.WithTicker(ticker)
		go func() {
			if err := ticker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("ticker stream stopped", zap.Error(err))
			}
		}()
	}

	triangle := strategy.NewTriangleScanner(cfg.Triangle, client, logger)
	pairs := strategy.NewStatScanner(cfg.Statistical, client, logger)
	funding := strategy.NewFundingScanner(cfg.Carry, client, logger)
	basis := strategy.NewBasisScanner(cfg.Carry, client, logger)

	svc := ranker.NewService(cfg, triangle, pairs, funding, basis, logger)
	riskMgr := risk.NewManager(cfg.Risk, nil, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{}
	if gormDB != nil {
		healthHandler.DB = gormDB.Gorm
	}
	healthHandler.Register(engine)

	scanHandler := &handler.ScanHandler{Svc: svc, Repo: store, Logger: logger}
	scanHandler.Register(engine)
	portfolioHandler := &handler.PortfolioHandler{Svc: svc, Risk: riskMgr}
	portfolioHandler.Register(engine)
	analysisHandler := &handler.AnalysisHandler{Svc: svc}
	analysisHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add(cfg.Cron.ScanSpec, func(ctx context.Context) {
			filter := svc.DefaultFilter()
			started := time.Now()
			opps := svc.Scan(ctx, filter)
			took := time.Since(started)
			logger.Info("cron scan finished",
				zap.Int("opportunities", len(opps)),
				zap.Duration("took", took),
			)
			if store == nil {
				return
			}
			rec := repository.NewScanRecord(opps, filter.MinReturnPct, filter.MaxRiskScore, filter.CapitalUSD, took)
			ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := store.InsertScan(ctx2, rec); err != nil {
				logger.Warn("cron scan snapshot failed", zap.Error(err))
			}
			cancel()
		})
		if err != nil {
			logger.Fatal("cron add failed", zap.Error(err))
		}
		cronRunner.Start()
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if cfg.Cron.Enabled {
		cronRunner.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}
