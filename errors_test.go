package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewRateLimitError_WaitParsing(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    int
	}{
		{"retry in", "Quota exceeded for metric. Please retry in 12.7s.", 12},
		{"retryDelay", `{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay": "41s"}]}}`, 41},
		{"no hint", "RESOURCE_EXHAUSTED", defaultRateLimitWait},
		{"empty", "", defaultRateLimitWait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newRateLimitError(tt.message)
			if got.WaitSeconds != tt.want {
				t.Errorf("expected wait %d, got %d", tt.want, got.WaitSeconds)
			}
			if got.Message != tt.message {
				t.Errorf("expected message to be kept, got %q", got.Message)
			}
		})
	}
}

func TestRateLimitError_DetectableThroughWrapping(t *testing.T) {
	err := fmt.Errorf("attempt 1: %w", newRateLimitError("retry in 5s"))
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatal("expected errors.As to find *RateLimitError")
	}
	if rl.WaitSeconds != 5 {
		t.Errorf("expected 5, got %d", rl.WaitSeconds)
	}
	if errors.Is(err, ErrAnalysisFailed) {
		t.Error("a rate limit must not read as a generic analysis failure")
	}
}
