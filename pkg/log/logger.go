package log

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl    zerolog.Logger
	level *Level // shared with the provider so SetLevel applies everywhere
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	if *l.level <= LevelDebug {
		l.emit(l.zl.Debug(), msg, fields)
	}
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	if *l.level <= LevelInfo {
		l.emit(l.zl.Info(), msg, fields)
	}
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	if *l.level <= LevelWarn {
		l.emit(l.zl.Warn(), msg, fields)
	}
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	if *l.level <= LevelError {
		event := l.zl.Error()
		// An error in the leading position gets the conventional key.
		if len(fields) > 0 {
			if err, ok := fields[0].(error); ok {
				event = event.Err(err)
				fields = fields[1:]
			}
		}
		l.emit(event, msg, fields)
	}
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger(), level: l.level}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return *l.level <= level
}

// emit attaches alternating key-value fields to the event and sends it.
// Errors and zerolog object marshalers keep their structure.
func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

var (
	providerOnce  sync.Once
	defaultLevel  = LevelInfo
	defaultLogger Logger
)

func initDefault() {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	defaultLogger = &zerologLogger{zl: zl, level: &defaultLevel}
}

// GetLogger returns the default zerolog-backed logger.
func GetLogger() Logger {
	providerOnce.Do(initDefault)
	return defaultLogger
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLevel sets the minimum level for loggers produced by this package.
func SetLevel(level Level) {
	providerOnce.Do(initDefault)
	defaultLevel = level
}

// RouteWarnings sends warnings raised through pkg/errors to the default
// logger as structured WARN records. Call once at program start.
func RouteWarnings() {
	logger := GetLogger()
	errors.SetZerologWarnFunc(func(w error) {
		logger.Warn(w.Error(), "warning", w)
	})
}
