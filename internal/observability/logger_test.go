package observability

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tc := range cases {
		logger := NewLogger(tc.level)
		if !logger.Enabled(ctx, tc.want) {
			t.Errorf("NewLogger(%q): expected level %v to be enabled", tc.level, tc.want)
		}
		if tc.want > slog.LevelDebug && logger.Enabled(ctx, tc.want-1) {
			t.Errorf("NewLogger(%q): expected level %v to be disabled", tc.level, tc.want-1)
		}
	}
}
