package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/pulse-be/internal/api"
	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/config"
	"github.com/isdelr/pulse-be/internal/logger"
	"github.com/isdelr/pulse-be/internal/scheduler"
	"github.com/isdelr/pulse-be/internal/services"
	"github.com/isdelr/pulse-be/internal/store"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to a YAML config file (defaults to $PULSE_CONFIG)")
	port := flag.IntP("port", "p", 0, "port to listen on (overrides PORT)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.ServerPort = *port
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Set up storage
	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}
	defer st.Close()

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(st, tokens, cfg.BcryptCost)
	taskService := services.NewTaskService(st)
	summaryService := services.NewSummaryService(st)

	if cfg.InternalAPIKey == "" {
		log.Warn().Msg("INTERNAL_API_KEY is not set; the daily summary endpoint will reject every request")
	}

	// Set up and run the daily summary job
	var sched *scheduler.Scheduler
	if cfg.SummaryCron != "" {
		sched, err = scheduler.NewScheduler(summaryService, cfg.SummaryCron, cfg.SummaryOutputDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create summary scheduler")
		}
		go sched.Run()
	}

	// Set up router
	router := api.NewRouter(api.Options{
		UserService:    userService,
		TaskService:    taskService,
		SummaryService: summaryService,
		InternalAPIKey: cfg.InternalAPIKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Bool("production", cfg.IsProduction()).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.NewSQLStore(cfg.DatabasePath)
	default:
		return store.NewJSONStore(cfg.DataDir)
	}
}
