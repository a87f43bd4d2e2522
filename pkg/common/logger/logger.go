package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the leveled, structured logging capability injected into every
// component. Child derives a sub-logger carrying extra bindings, so a
// reconciler can tag all of its output with e.g. the course code and run id.
type Logger interface {
	Trace(format string, v ...any)
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	Child(bindings map[string]any) Logger
}

type zeroLogger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to w at the given level ("trace".."fatal").
// When console is true, output is human-readable; otherwise JSON.
func New(w io.Writer, level string, console bool) Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

// NewDefault returns a console logger on stdout, suitable for cmd entry points.
func NewDefault(level string) Logger {
	return New(os.Stdout, level, true)
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zeroLogger) Trace(format string, v ...any) { l.zl.Trace().Msgf(format, v...) }
func (l *zeroLogger) Debug(format string, v ...any) { l.zl.Debug().Msgf(format, v...) }
func (l *zeroLogger) Info(format string, v ...any)  { l.zl.Info().Msgf(format, v...) }
func (l *zeroLogger) Warn(format string, v ...any)  { l.zl.Warn().Msgf(format, v...) }
func (l *zeroLogger) Error(format string, v ...any) { l.zl.Error().Msgf(format, v...) }
func (l *zeroLogger) Fatal(format string, v ...any) { l.zl.Fatal().Msgf(format, v...) }

func (l *zeroLogger) Child(bindings map[string]any) Logger {
	return &zeroLogger{zl: l.zl.With().Fields(bindings).Logger()}
}
