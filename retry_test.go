package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// stubAnalyzer returns the queued errors in order, then result.
type stubAnalyzer struct {
	errs   []error
	result NutritionResult
	calls  int
	last   analysisRequest
}

func (s *stubAnalyzer) AnalyzeMeal(_ context.Context, req analysisRequest) (NutritionResult, error) {
	s.calls++
	s.last = req
	if s.calls <= len(s.errs) {
		return NutritionResult{}, s.errs[s.calls-1]
	}
	return s.result, nil
}

func transientErr() error {
	return fmt.Errorf("%w: http request: connection reset", ErrAnalysisFailed)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	stub := &stubAnalyzer{
		errs:   []error{transientErr(), transientErr()},
		result: NutritionResult{TotalCalories: 500},
	}
	r := newRetryingAnalyzer(stub, 3, time.Millisecond)

	got, err := r.AnalyzeMeal(context.Background(), analysisRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalCalories != 500 {
		t.Errorf("expected 500, got %d", got.TotalCalories)
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 calls, got %d", stub.calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	stub := &stubAnalyzer{errs: []error{transientErr(), transientErr(), transientErr(), transientErr()}}
	r := newRetryingAnalyzer(stub, 3, time.Millisecond)

	_, err := r.AnalyzeMeal(context.Background(), analysisRequest{})
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 calls, got %d", stub.calls)
	}
}

func TestRetry_RateLimitNotRetried(t *testing.T) {
	stub := &stubAnalyzer{errs: []error{newRateLimitError("retry in 20s")}}
	r := newRetryingAnalyzer(stub, 3, time.Millisecond)

	_, err := r.AnalyzeMeal(context.Background(), analysisRequest{})
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
	if rl.WaitSeconds != 20 {
		t.Errorf("expected wait 20, got %d", rl.WaitSeconds)
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	badRequest := fmt.Errorf("%w: %w", ErrAnalysisFailed, &upstreamStatusError{StatusCode: 400, Body: "bad image"})
	stub := &stubAnalyzer{errs: []error{badRequest}}
	r := newRetryingAnalyzer(stub, 3, time.Millisecond)

	if _, err := r.AnalyzeMeal(context.Background(), analysisRequest{}); err == nil {
		t.Fatal("expected an error")
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
}

func TestRetry_ServerErrorRetried(t *testing.T) {
	unavailable := fmt.Errorf("%w: %w", ErrAnalysisFailed, &upstreamStatusError{StatusCode: 503})
	stub := &stubAnalyzer{errs: []error{unavailable}, result: NutritionResult{TotalCalories: 10}}
	r := newRetryingAnalyzer(stub, 3, time.Millisecond)

	if _, err := r.AnalyzeMeal(context.Background(), analysisRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("expected 2 calls, got %d", stub.calls)
	}
}

func TestRetry_StopsWhenContextCancelled(t *testing.T) {
	stub := &stubAnalyzer{errs: []error{transientErr(), transientErr(), transientErr()}}
	r := newRetryingAnalyzer(stub, 3, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.AnalyzeMeal(ctx, analysisRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry delay ignored the context")
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
}

func TestNewRetryingAnalyzer_AtLeastOneAttempt(t *testing.T) {
	stub := &stubAnalyzer{result: NutritionResult{TotalCalories: 1}}
	r := newRetryingAnalyzer(stub, 0, 0)
	if _, err := r.AnalyzeMeal(context.Background(), analysisRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
}
