package logging

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// SlogTelemetry records dashboard telemetry events as structured log lines.
// Events ending in ".error" or carrying an "error" field log at warn level.
type SlogTelemetry struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewSlogTelemetry logs routine events at debug level.
func NewSlogTelemetry(logger *slog.Logger) *SlogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTelemetry{Logger: logger, Level: slog.LevelDebug}
}

// Record satisfies the dashboard and command Telemetry interfaces.
func (t *SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	level := t.Level
	if strings.HasSuffix(event, ".error") || payload["error"] != nil {
		level = slog.LevelWarn
	}
	if !t.Logger.Enabled(ctx, level) {
		return
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, payload[k]))
	}
	t.Logger.LogAttrs(ctx, level, event, attrs...)
}
