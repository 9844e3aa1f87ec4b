// Package logging provides the leveled key/value logger used across watchfiles.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface every component depends on.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Options selects level, format and destinations.
type Options struct {
	Level      string
	Format     string // console, json, text
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ZeroLogger is the zerolog-backed Logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New builds a logger writing to stderr and, when opts.File is set, to a
// rotating file.
func New(opts Options) (*ZeroLogger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", opts.Level, err)
		}
		level = l
	}

	writers := []io.Writer{formatWriter(opts.Format, os.Stderr, false)}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			LocalTime:  true,
		}
		writers = append(writers, formatWriter(opts.Format, rotating, true))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZeroLogger{zl: zl}, nil
}

// NewWithWriter builds a logger on a single writer. Used by tests and by
// callers that manage their own output.
func NewWithWriter(w io.Writer, level zerolog.Level) *ZeroLogger {
	return &ZeroLogger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func formatWriter(format string, out io.Writer, file bool) io.Writer {
	switch format {
	case "json":
		return out
	case "text":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: file}
	}
}

func (l *ZeroLogger) Debug(msg string, keyvals ...any) { l.emit(l.zl.Debug(), msg, keyvals) }
func (l *ZeroLogger) Info(msg string, keyvals ...any)  { l.emit(l.zl.Info(), msg, keyvals) }
func (l *ZeroLogger) Warn(msg string, keyvals ...any)  { l.emit(l.zl.Warn(), msg, keyvals) }
func (l *ZeroLogger) Error(msg string, keyvals ...any) { l.emit(l.zl.Error(), msg, keyvals) }

func (l *ZeroLogger) emit(ev *zerolog.Event, msg string, keyvals []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		if i+1 >= len(keyvals) {
			ev = ev.Interface(key, nil)
			break
		}
		switch v := keyvals[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }
