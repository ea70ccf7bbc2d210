package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/adamanr/onboarding_dashboard/internal/api/http"
	"github.com/adamanr/onboarding_dashboard/internal/config"
	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/database"
	"github.com/adamanr/onboarding_dashboard/internal/hrapi"
	"github.com/adamanr/onboarding_dashboard/internal/session"
	logging "github.com/adamanr/onboarding_dashboard/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the TOML config (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.GetConfig(config.ResolvePath(*configPath), slog.Default())
	if err != nil {
		log.Fatal("Failed to load config:", err)
		return
	}

	level, err := cfg.LogLevel()
	if err != nil {
		log.Fatal("Failed to read log level:", err)
		return
	}

	logger, err := logging.SetupLogger(os.Stdout, cfg.Log.File, level)
	if err != nil {
		log.Fatal("Failed to setup logger:", err)
		return
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, redisErr := database.NewRedisConn(ctx, cfg, logger)
	if redisErr != nil {
		log.Fatal("Failed to connect to Redis:", redisErr)
		return
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := hrapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, hrapi.NewMetrics(reg), logger)
	sessions := session.NewRedisStore(rdb, cfg.Session.KeyPrefix, cfg.Session.TTL, logger)
	deps := controllers.NewHRDependens(client, sessions, controllers.NewUploadMetrics(reg), cfg, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logging.AccessLog(logger))
	r.Use(logging.RequestCounter(reg))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := api.NewServer(deps)
	server.Routes(r)

	s := &http.Server{
		Handler:           r,
		Addr:              cfg.Server.Host,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server is starting",
		slog.String("address", cfg.Server.Host),
		slog.String("upstream", cfg.Upstream.BaseURL),
	)

	if err = s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
