package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// retryingAnalyzer wraps a mealAnalyzer with a bounded, fixed-delay retry
// policy. Rate limits and client errors are returned immediately.
type retryingAnalyzer struct {
	next     mealAnalyzer
	attempts int
	delay    time.Duration
}

func newRetryingAnalyzer(next mealAnalyzer, attempts int, delay time.Duration) *retryingAnalyzer {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingAnalyzer{next: next, attempts: attempts, delay: delay}
}

func (r *retryingAnalyzer) AnalyzeMeal(ctx context.Context, req analysisRequest) (NutritionResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		result, err := r.next.AnalyzeMeal(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.attempts || ctx.Err() != nil {
			break
		}

		log.Warn().Err(err).Str("component", "analyze").
			Int("attempt", attempt).Int("max_attempts", r.attempts).
			Msg("model call failed, retrying")

		select {
		case <-ctx.Done():
			return NutritionResult{}, ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return NutritionResult{}, lastErr
}

// isRetryable reports whether another attempt could succeed. Rate limits
// carry their own wait hint for the user and 4xx responses will not change.
func isRetryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return false
	}
	var se *upstreamStatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}
