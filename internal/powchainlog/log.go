// Copyright 2024 The powchain Authors
// This file is part of the powchain library.
//
// The powchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The powchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the powchain library. If not, see <http://www.gnu.org/licenses/>.

// Package powchainlog is a small, leveled logging facade over log/slog, shaped
// after go-ethereum's own log package: a package-level root logger, contextual
// key/value pairs, and a colorized terminal handler for interactive use.
package powchainlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Logger is the interface used throughout the node. It mirrors slog's
// attribute-pair calling convention: Info("msg", "key", val, "key2", val2).
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

// Crit logs at error level with an attached call-site frame, then exits the
// process — reserved for unrecoverable startup failures in cmd/powchain.
func (l *logger) Crit(msg string, ctx ...any) {
	frame := stack.Caller(1)
	l.inner.Error(msg, append(ctx, "caller", fmt.Sprintf("%+v", frame))...)
	os.Exit(1)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

var root Logger = &logger{inner: slog.New(NewTerminalHandler(os.Stderr, slog.LevelInfo))}

// Root returns the package-wide root logger.
func Root() Logger { return root }

// SetRoot replaces the root logger, typically once at process startup after
// the configured log level is known.
func SetRoot(l Logger) { root = l }

// New derives a child logger carrying the given contextual key/value pairs.
func New(ctx ...any) Logger { return root.With(ctx...) }

// NewWithHandler builds a standalone Logger over the given slog.Handler,
// for callers that need to swap the root's handler (e.g. to change the
// configured level) rather than just adding context.
func NewWithHandler(h slog.Handler) Logger { return &logger{inner: slog.New(h)} }

func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }

// NewTerminalHandler builds a slog.Handler that colorizes level names when
// writing to an interactive terminal and falls back to plain text otherwise,
// matching go-ethereum's TerminalHandler.
func NewTerminalHandler(wr io.Writer, level slog.Level) slog.Handler {
	var out io.Writer = wr
	useColor := false
	if f, ok := wr.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
		if useColor {
			out = colorable.NewColorable(f)
		}
	}
	return &terminalHandler{out: out, level: level, color: useColor}
}

type terminalHandler struct {
	out   io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

func (h *terminalHandler) Enabled(_ context.Context, lvl slog.Level) bool { return lvl >= h.level }

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	lvl := levelString(r.Level, h.color)
	line := fmt.Sprintf("%s[%s] %s", r.Time.Format(time.RFC3339), lvl, r.Message)
	for _, a := range h.attrs {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})
	_, err := fmt.Fprintln(h.out, line)
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &terminalHandler{out: h.out, level: h.level, color: h.color}
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return n
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler { return h }

func levelString(lvl slog.Level, color bool) string {
	var s string
	switch {
	case lvl < slog.LevelInfo:
		s = "DBUG"
	case lvl < slog.LevelWarn:
		s = "INFO"
	case lvl < slog.LevelError:
		s = "WARN"
	default:
		s = "CRIT"
	}
	if !color {
		return s
	}
	const (
		colorRed    = 31
		colorYellow = 33
		colorBlue   = 36
	)
	code := colorBlue
	switch s {
	case "WARN":
		code = colorYellow
	case "CRIT":
		code = colorRed
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", code, s)
}
