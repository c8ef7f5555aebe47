package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// APIError carries the provider's error details. IsPermanent distinguishes
// quota exhaustion (wait hours) from plain rate limiting (wait seconds).
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError reports whether err is a transient 429 from the provider.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 && !apiErr.IsPermanent
	}

	s := err.Error()
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests")
}

// IsQuotaError reports whether err indicates the account is out of quota,
// which retrying on the normal schedule will not fix.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	s := err.Error()
	return strings.Contains(s, "insufficient_quota") ||
		strings.Contains(s, "quota") ||
		strings.Contains(s, "billing")
}

// ExtractAPIError pulls structured details out of a provider error. The SDK
// embeds the JSON error body in the message, so the payload is recovered by
// scanning for the first balanced object.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	s := err.Error()
	if !strings.Contains(s, "429") {
		return nil
	}

	apiErr := &APIError{
		StatusCode: 429,
		Message:    s,
		Type:       "rate_limit_error",
	}

	if start := strings.Index(s, "{"); start != -1 {
		raw := s[start:]
		if end := strings.LastIndex(raw, "}"); end != -1 {
			var detail struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(raw[:end+1]), &detail) == nil {
				apiErr.Message = detail.Message
				apiErr.Type = detail.Type
				apiErr.Code = detail.Code
				apiErr.IsPermanent = detail.Code == "insufficient_quota"
			}
		}
	}

	retryAfter := 60 * time.Second
	if apiErr.IsPermanent {
		retryAfter = time.Hour
	}
	apiErr.RetryAfter = &retryAfter

	return apiErr
}

// GetRetryDelay picks an exponential backoff delay for the given attempt,
// scaled by error class: quota errors back off in hours, rate limits in
// minutes, everything else in seconds.
func GetRetryDelay(err error, attempt int) time.Duration {
	// Shift amount bounded to [0, 10] to keep the doubling well inside the
	// duration range.
	shift := attempt
	if shift < 0 {
		shift = 0
	}
	if shift > 10 {
		shift = 10
	}
	factor := time.Duration(1 << uint(shift))

	switch {
	case IsQuotaError(err):
		delay := time.Hour * factor
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay

	case IsRateLimitError(err):
		delay := 60 * time.Second * factor
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay

	default:
		delay := 5 * time.Second * factor
		if delay > 5*time.Minute {
			delay = 5 * time.Minute
		}
		return delay
	}
}
