package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// piiKeys are attribute keys whose values must never reach the log sink.
// device_id and coordinates are not treated as PII.
var piiKeys = map[string]struct{}{
	"phone":        {},
	"phone_number": {},
	"email":        {},
	"name":         {},
	"address":      {},
}

// New builds a slog.Logger writing to w. format is "text" or "json".
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: RedactPII,
	}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// RedactPII is a slog ReplaceAttr hook. Group members are visited individually by
// slog, so matching on the leaf key covers nested attributes too.
func RedactPII(groups []string, a slog.Attr) slog.Attr {
	if _, ok := piiKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindAny {
		if m, ok := a.Value.Any().(map[string]interface{}); ok {
			return slog.Any(a.Key, sanitizeMap(m))
		}
	}
	return a
}

func sanitizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if _, ok := piiKeys[strings.ToLower(k)]; ok {
			out[k] = redacted
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = sanitizeMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
