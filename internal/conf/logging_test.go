// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"log/slog"
	"testing"
)

func TestLoggingConfigLevel(t *testing.T) {
	tests := []struct {
		levelStr string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := LoggingConfig{LevelStr: tt.levelStr}
		if c.Level() != tt.expected {
			t.Errorf("expected level %v for %q, got %v", tt.expected, tt.levelStr, c.Level())
		}
	}
}

func TestSetDefaultLogger(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		c := LoggingConfig{LevelStr: "info", Format: format}
		c.SetDefaultLogger()
	}
}
