package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	scierrors "github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a Logger writing JSON lines to w at the given level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	return &ZerologLogger{
		logger: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.Error. A leading error field is attached with Err.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	event := z.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = event.Err(err)
			var m zerolog.LogObjectMarshaler
			if scierrors.As(err, &m) {
				event = event.EmbedObject(m)
			}
			fields = fields[1:]
		}
	}
	z.emit(event, msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fieldValue(fields[i+1]))
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

func (z *ZerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		event = event.Interface(fmt.Sprint(fields[i]), fieldValue(fields[i+1]))
	}
	event.Msg(msg)
}

func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// zerologProvider is the process-wide LoggerProvider. It only holds output
// configuration; analyzers receive loggers explicitly or fall back to it.
type zerologProvider struct {
	mu     sync.RWMutex
	out    io.Writer
	level  Level
	logger *ZerologLogger
}

func newZerologProvider(out io.Writer, level Level) *zerologProvider {
	return &zerologProvider{out: out, level: level, logger: NewZerologLogger(out, level)}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.logger = NewZerologLogger(p.out, level)
}

func (p *zerologProvider) setOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
	p.logger = NewZerologLogger(w, p.level)
}

var defaultProvider = newZerologProvider(os.Stderr, LevelWarn)

func init() {
	// Route pkg/errors warnings through the default provider.
	scierrors.SetZerologWarnFunc(func(w error) {
		logger := defaultProvider.GetLogger().(*ZerologLogger)
		event := logger.logger.Warn()
		var m zerolog.LogObjectMarshaler
		if scierrors.As(w, &m) {
			event = event.EmbedObject(m)
		}
		event.Msg(w.Error())
	})
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns the default logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the default logger.
func SetLevel(level Level) {
	defaultProvider.SetLevel(level)
}

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) {
	defaultProvider.setOutput(w)
}
