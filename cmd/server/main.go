package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinboard/internal/breaker"
	"coinboard/internal/cache"
	"coinboard/internal/config"
	"coinboard/internal/handler"
	"coinboard/internal/health"
	"coinboard/internal/job"
	"coinboard/internal/metrics"
	"coinboard/internal/orchestrator"
	"coinboard/internal/registry"
	"coinboard/pkg/logging"
	"coinboard/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "coinboard/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	loadCatalogFunc        = config.LoadCatalog
	initTracerFunc         = tracing.InitTracer
	connectRedisFunc       = cache.ConnectRedis
	startProberFunc        = func(p *job.HealthProber, ctx context.Context) { go p.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Coinboard API
// @version         1.0
// @description     Multi-provider crypto dashboard data service with circuit breaking and automatic fallback.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	logger := logging.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	rdb, err := connectRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, continuing with in-memory cache only")
		rdb = nil
	}
	// A nil *redis.Client must stay a nil interface for the layered cache's
	// degradation check.
	var level2 cache.RedisClient
	if rdb != nil {
		level2 = rdb
	}
	store := cache.NewLayered(cache.DefaultTTLTable(), level2, logger)

	promReg := prometheus.NewRegistry()
	recorder := metrics.New(promReg)

	monitor := health.NewMonitor(cfg.HealthWindowSize)
	circuits := breaker.New(
		breaker.Config{
			FailureThreshold: cfg.BreakerFailureThreshold,
			RecoveryTimeout:  cfg.BreakerRecoveryTimeout,
		},
		func(id string, from, to breaker.State) {
			if to == breaker.StateOpen {
				recorder.RecordCircuitOpen(id)
			}
			logger.Info().Str("resource", id).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit transition")
		},
	)

	descriptors, err := loadCatalogFunc(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load resource catalog: %v", err)
	}
	catalog := registry.New(monitor)
	if err := bindAdapters(catalog, descriptors, tracer, cfg, logger); err != nil {
		log.Fatalf("failed to bind adapters: %v", err)
	}

	engine := orchestrator.New(tracer, logger, catalog, circuits, monitor, store, recorder)
	engine.SetRotationSize(cfg.RPCRotationSize)

	prober := job.NewHealthProber(tracer, logger, catalog, monitor, circuits, cfg.ProbeInterval, cfg.ProbeIdleAfter)
	startProberFunc(prober, ctx)

	h := handler.New(tracer, engine, monitor, circuits)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("coinboard"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	logger.Info().Str("addr", srv.Addr).Msg("server listening")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info().Msg("server exiting")
}
