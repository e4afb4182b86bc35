package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Handler holds shared dependencies for all route handlers. db is nil in
// stateless mode (no DB_URL): analysis still works, nothing is persisted.
type Handler struct {
	db             *pgxpool.Pool
	analyzer       mealAnalyzer
	images         imageStore    // nil disables photo storage
	labels         labelDetector // nil disables label hints
	maxUploadBytes int64
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Error().Err(err).Str("component", "queryOne").Msg("query failed")
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Error().Err(err).Str("component", "queryOne").Msg("scan failed")
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Error().Err(err).Str("component", "queryMany").Msg("query failed")
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error().Err(err).Str("component", "queryMany").Msg("scan failed")
	}
	return results, err
}

/* ─── Responses ───────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondProfileError maps profile resolution and calculation errors.
// An unresolvable selection is the client's fault; an index out of range
// means resolution itself is broken.
func respondProfileError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidSelection) {
		apiError(c, http.StatusBadRequest, "Invalid profile selection: "+err.Error())
		return
	}
	log.Error().Err(err).Str("component", "profile").Msg("daily target calculation failed")
	apiError(c, http.StatusInternalServerError, "failed to calculate daily target")
}

// respondAnalysisError maps model failures: rate limits get a wait hint the
// UI can count down, everything else is a generic analysis error.
func respondAnalysisError(c *gin.Context, err error) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "RATE_LIMIT",
			"message":   fmt.Sprintf("Please wait %d seconds before trying again.", rl.WaitSeconds),
			"wait_time": rl.WaitSeconds,
		})
		return
	}
	log.Error().Err(err).Str("component", "analyze").Msg("analysis failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "ANALYSIS_ERROR",
		"message": "An error occurred during analysis. Please try again.",
	})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool and checks it with a ping.
func getDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// migrations change a table the pooled connections already prepared.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	config.MaxConns = 10
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// registerRoutes registers all API routes on the router. Without a database
// only the stateless routes exist and /api/analyze needs no login.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": h.db != nil})
	})

	// Public routes
	router.GET("/api/options", h.getOptions)
	router.POST("/api/daily-target", h.postDailyTarget)

	if h.db == nil {
		router.POST("/api/analyze", h.analyzeMeal)
		return
	}

	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/analyze", h.analyzeMeal)
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/analyses", h.listAnalyses)
	api.GET("/analyses/daily", h.getDailyAnalyses)
	api.DELETE("/analyses/:id", h.deleteAnalysis)
}
