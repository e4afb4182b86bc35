package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrInvalidSelection means a categorical profile field does not match any
	// option of the active language, e.g. a stored label from another locale.
	ErrInvalidSelection = errors.New("unresolvable selection")

	// ErrIndexOutOfRange means a gender, activity or goal index outside its
	// domain reached the calculator. Callers resolve selections first, so this
	// is a programming error.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrAnalysisFailed wraps every upstream failure that is not a rate limit:
	// transport errors, non-2xx responses, empty or malformed model output.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// defaultRateLimitWait is reported when the upstream does not say how long to wait.
const defaultRateLimitWait = 30

// RateLimitError reports that the model provider rejected the call for
// capacity reasons. WaitSeconds is the suggested delay before retrying.
type RateLimitError struct {
	WaitSeconds int
	Message     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.WaitSeconds)
}

var (
	retryInPattern    = regexp.MustCompile(`retry in ([0-9.]+)s`)
	retryDelayPattern = regexp.MustCompile(`"retryDelay"\s*:\s*"([0-9.]+)s"`)
)

// newRateLimitError builds a RateLimitError from the upstream message,
// picking up "Please retry in 12.3s." or a RetryInfo "retryDelay": "12s".
func newRateLimitError(message string) *RateLimitError {
	wait := defaultRateLimitWait
	for _, re := range []*regexp.Regexp{retryInPattern, retryDelayPattern} {
		if m := re.FindStringSubmatch(message); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil && f >= 0 {
				wait = int(f)
				break
			}
		}
	}
	return &RateLimitError{WaitSeconds: wait, Message: message}
}
