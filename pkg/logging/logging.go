// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Stagecraft - A Go-based CLI for orchestrating local-first multi-service deployments using Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Feature: CORE_LOGGING
// Spec: spec/core/logging.md

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger provides structured logging. Progress events emitted on pkg/progress
// do not go through it: they are written to their own writer, and the -v
// flag only sets this logger's level.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// loggerImpl is the default logger implementation, backed by zerolog's
// console writer.
type loggerImpl struct {
	log    zerolog.Logger
	level  Level
	fields []Field
}

// NewLogger creates a new logger. If verbose is true, Debug level logs are
// shown. Output goes to stderr, console-formatted, so it never interleaves
// with the line-delimited JSON progress stream on stdout.
func NewLogger(verbose bool) Logger {
	return NewLoggerWithWriter(verbose, os.Stderr)
}

// NewLoggerWithWriter is NewLogger with an explicit sink, for tests.
func NewLoggerWithWriter(verbose bool, w io.Writer) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	zl := zerolog.New(console).Level(level.zerolog()).With().Timestamp().Logger()

	return &loggerImpl{log: zl, level: level}
}

// Debug logs a debug message.
func (l *loggerImpl) Debug(msg string, fields ...Field) {
	l.event(l.log.Debug(), msg, fields)
}

// Info logs an info message.
func (l *loggerImpl) Info(msg string, fields ...Field) {
	l.event(l.log.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *loggerImpl) Warn(msg string, fields ...Field) {
	l.event(l.log.Warn(), msg, fields)
}

// Error logs an error message (always shown).
func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.event(l.log.Error(), msg, fields)
}

// WithFields returns a new logger with additional fields attached to every
// subsequent call.
func (l *loggerImpl) WithFields(fields ...Field) Logger {
	return &loggerImpl{
		log:    l.log,
		level:  l.level,
		fields: append(append([]Field{}, l.fields...), fields...),
	}
}

func (l *loggerImpl) event(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range l.fields {
		e = e.Interface(f.Key, f.Value)
	}
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	e.Msg(msg)
}
