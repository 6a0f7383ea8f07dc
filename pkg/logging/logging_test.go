// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package logging

import (
	"bytes"
	"strings"
	"testing"
)

// Feature: CORE_LOGGING
// Spec: spec/core/logging.md

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(false, &buf)

	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug at Info level, got: %q", buf.String())
	}

	buf.Reset()
	logger.Info("info message")
	if !strings.Contains(strings.ToUpper(buf.String()), "INF") {
		t.Errorf("expected info marker in output, got: %q", buf.String())
	}

	buf.Reset()
	logger.Warn("warn message")
	if !strings.Contains(strings.ToUpper(buf.String()), "WRN") {
		t.Errorf("expected warn marker in output, got: %q", buf.String())
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(strings.ToUpper(buf.String()), "ERR") {
		t.Errorf("expected error marker in output, got: %q", buf.String())
	}
}

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(true, &buf)

	logger.Debug("debug message")
	if !strings.Contains(strings.ToUpper(buf.String()), "DBG") {
		t.Errorf("expected debug marker in output when verbose, got: %q", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(false, &buf)

	logger = logger.WithFields(NewField("env", "prod"), NewField("version", "1.0.0"))
	logger.Info("deploying")

	output := buf.String()
	if !strings.Contains(output, "env=") || !strings.Contains(output, "prod") {
		t.Errorf("expected env field in output, got: %q", output)
	}
	if !strings.Contains(output, "version=") || !strings.Contains(output, "1.0.0") {
		t.Errorf("expected version field in output, got: %q", output)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(false)
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}

	verboseLogger := NewLogger(true)
	if verboseLogger == nil {
		t.Fatalf("expected non-nil logger")
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}
