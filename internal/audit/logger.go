// Package audit writes one structured, redacted log entry per API write.
package audit

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Redacted replaces sensitive values in audit output.
const Redacted = "[REDACTED]"

var (
	bearerTokenPattern = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9\-._~+/]+=*`)
	keyValuePattern    = regexp.MustCompile(`(?i)\b(token|secret|password|senha|wifiSenha|authorization)\s*[:=]\s*([^\s,;]+)`)
)

// sensitiveFields are body keys whose values never reach the log.
var sensitiveFields = []string{"wifisenha", "senha", "password", "token", "secret"}

// WriteCompletion captures one finished create, update or delete.
type WriteCompletion struct {
	RequestID    string
	Collection   string
	Action       string
	RecordID     string
	Fields       map[string]any
	Result       string
	ErrorDetail  string
	Duration     time.Duration
	ResponseCode int
}

// Logger emits structured audit entries.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an audit logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Complete writes a single entry for one write. A nil Logger is a no-op.
func (l *Logger) Complete(event WriteCompletion) {
	if l == nil {
		return
	}

	result := strings.TrimSpace(event.Result)
	if result == "" {
		result = "error"
	}
	collection := strings.TrimSpace(event.Collection)
	if collection == "" {
		collection = "unknown"
	}

	duration := event.Duration
	if duration < 0 {
		duration = 0
	}

	entry := l.logger.Info().
		Str("event", "fibradoc.write.completed").
		Str("request_id", strings.TrimSpace(event.RequestID)).
		Str("collection", collection).
		Str("action", strings.TrimSpace(event.Action)).
		Str("record_id", strings.TrimSpace(event.RecordID)).
		Str("result", result).
		Int64("duration_ms", duration.Milliseconds())

	if fields := ChangedFields(event.Fields); len(fields) > 0 {
		entry = entry.Strs("fields", fields)
	}
	if redacted := RedactFields(event.Fields); len(redacted) > 0 {
		entry = entry.Interface("changes", redacted)
	}
	if event.ResponseCode > 0 {
		entry = entry.Int("response_code", event.ResponseCode)
	}
	if redactedError := RedactSensitiveText(event.ErrorDetail); redactedError != "" {
		entry = entry.Str("error_detail", redactedError)
	}

	entry.Msg("write completed")
}

// ChangedFields returns the sorted keys of a request body.
func ChangedFields(fields map[string]any) []string {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// RedactFields copies fields, replacing sensitive values and descending into
// nested objects such as the client address.
func RedactFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if isSensitive(k) {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = RedactFields(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func isSensitive(key string) bool {
	return slices.Contains(sensitiveFields, strings.ToLower(strings.TrimSpace(key)))
}

// RedactSensitiveText removes obvious secrets from free-text error details.
func RedactSensitiveText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	redacted := bearerTokenPattern.ReplaceAllString(trimmed, "Bearer "+Redacted)
	redacted = keyValuePattern.ReplaceAllStringFunc(redacted, func(match string) string {
		parts := strings.SplitN(match, ":", 2)
		if len(parts) == 2 {
			return fmt.Sprintf("%s: %s", strings.TrimSpace(parts[0]), Redacted)
		}
		parts = strings.SplitN(match, "=", 2)
		if len(parts) == 2 {
			return fmt.Sprintf("%s=%s", strings.TrimSpace(parts[0]), Redacted)
		}
		return Redacted
	})
	return redacted
}
