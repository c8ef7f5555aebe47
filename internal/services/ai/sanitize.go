package ai

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	targetIDKey
	requestIDKey
)

// WithUserID tags the context with the user on whose behalf an AI call runs,
// so provider logs can be correlated without logging the payload.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithTargetID tags the context with the quiz or flashcard set being generated.
func WithTargetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, targetIDKey, id)
}

// WithRequestID tags the context with an upstream request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ExtractRequestID returns the request ID set by WithRequestID, or "".
func ExtractRequestID(ctx context.Context) string {
	return stringFromContext(ctx, requestIDKey)
}

// ExtractUserID returns the user ID set by WithUserID, or "".
func ExtractUserID(ctx context.Context) string {
	return stringFromContext(ctx, userIDKey)
}

// ExtractTargetID returns the target ID set by WithTargetID, or "".
func ExtractTargetID(ctx context.Context) string {
	return stringFromContext(ctx, targetIDKey)
}

func stringFromContext(ctx context.Context, key ctxKey) string {
	switch v := ctx.Value(key).(type) {
	case string:
		return v
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}

const (
	// MaxPreviewLength caps prompt and response previews in logs.
	MaxPreviewLength = 200
	// maxDebugContentLength caps previews when full prompt logging is enabled.
	maxDebugContentLength = 10000

	// RedactedValue replaces secret material in log output.
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey keeps only the first and last four characters of a key.
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt returns a log-safe preview of a prompt. fullLog raises the
// truncation limit but control characters are always stripped.
func SanitizePrompt(prompt string, fullLog bool) string {
	return sanitizeForLog(prompt, fullLog)
}

// SanitizeResponse returns a log-safe preview of a model response.
func SanitizeResponse(response string, fullLog bool) string {
	return sanitizeForLog(response, fullLog)
}

func sanitizeForLog(s string, fullLog bool) string {
	if s == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = maxDebugContentLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}

	return TruncateString(b.String(), maxLen)
}

// TruncateString cuts s at maxLen bytes, appending an ellipsis when truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
