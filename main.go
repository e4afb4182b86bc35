package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := loadConfig()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := &Handler{
		analyzer: newRetryingAnalyzer(
			newGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.AnalysisTimeout),
			cfg.AnalysisAttempts, cfg.AnalysisRetryDelay),
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, every analysis will fail")
	}

	if cfg.DBUrl != "" {
		pool, err := getDBPool(ctx, cfg.DBUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("database unavailable")
		}
		defer pool.Close()
		h.db = pool
	} else {
		log.Warn().Msg("DB_URL not set, running stateless: no login, no history")
	}

	if cfg.S3Bucket != "" {
		store, err := newS3ImageStore(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.AWSEndpoint, cfg.ImagePublicURL)
		if err != nil {
			log.Fatal().Err(err).Msg("image store setup failed")
		}
		h.images = store
	}
	if cfg.RekognitionEnabled {
		detector, err := newRekognitionLabelDetector(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("label detector setup failed")
		}
		h.labels = detector
	}

	if !cfg.isDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler(cfg.CORSAllowedOrigins).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Str("model", cfg.GeminiModel).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// setupLogger sets the global level and, in development, human-readable output.
func setupLogger(cfg config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.isDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// corsHandler allows any origin unless CORS_ALLOWED_ORIGINS lists some.
func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
}
