package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/complegal/comprate/internal/api"
	"github.com/complegal/comprate/internal/config"
	"github.com/complegal/comprate/internal/domain"
	"github.com/complegal/comprate/internal/gemini"
	"github.com/complegal/comprate/internal/prompt"
	"github.com/complegal/comprate/internal/repository/jsonfile"
	"github.com/complegal/comprate/internal/repository/redis"
	"github.com/complegal/comprate/internal/repository/sqlite"
	"github.com/complegal/comprate/internal/retry"
	"github.com/complegal/comprate/internal/service"
	"github.com/complegal/comprate/internal/staging"
	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Logging)

	if cfg.Gemini.APIKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("model", cfg.Gemini.Model).
		Msg("Starting workers' comp report analyzer")

	ctx := context.Background()

	// Initialize Gemini client
	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	defer client.Close()

	// Initialize history store
	history, err := newHistoryStore(cfg.History)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history store")
	}

	// Initialize the optional Redis warm cache for reference handles
	var handleCache *redis.HandleCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		handleCache = redis.NewHandleCache(redisClient, cfg.Redis.HandleTTL)
	}

	// Reference documents are fetched lazily, once per process
	refCache := service.NewReferenceCache(
		client,
		[]service.ReferenceSource{
			{Kind: domain.ReferenceRatingSchedule, URL: cfg.Reference.RatingScheduleURL},
			{Kind: domain.ReferenceBenefitsChart, URL: cfg.Reference.BenefitsChartURL},
		},
		retry.Policy{
			MaxAttempts: cfg.Reference.Retry.MaxAttempts,
			Delay:       cfg.Reference.Retry.Delay,
		},
		&http.Client{Timeout: cfg.Reference.FetchTimeout},
		handleCache,
	)

	instruction, err := loadInstruction(cfg.Prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load instruction template")
	}

	svc := service.NewAnalyzerService(
		client,
		client,
		refCache,
		history,
		prompt.NewCatalog(),
		instruction,
		cfg.Gemini.Model,
		retry.Policy{
			MaxAttempts: cfg.Upload.Retry.MaxAttempts,
			Delay:       cfg.Upload.Retry.Delay,
		},
	)

	stager, err := staging.NewStager(cfg.Upload.StagingDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload staging directory")
	}

	// Initialize router
	router := api.NewRouter(cfg, svc, stager, history)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		sink, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationCount(7),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		out = zerolog.MultiLevelWriter(os.Stderr, sink)
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	log.Logger = log.Output(out)
}

func newHistoryStore(cfg config.HistoryConfig) (domain.HistoryRepository, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.NewHistoryStore(cfg.Path)
	case "json", "":
		return jsonfile.NewHistoryStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

func loadInstruction(cfg config.PromptConfig) (string, error) {
	if cfg.InstructionFile != "" {
		data, err := os.ReadFile(cfg.InstructionFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	return prompt.BuildInstruction(prompt.RatingRules{
		ImpairmentMultiplier: cfg.ImpairmentMultiplier,
		MaxWeeklyRate:        cfg.MaxWeeklyRate,
		PainCombinedCap:      cfg.PainCombinedCap,
	}), nil
}
