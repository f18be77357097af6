// Package log is the process-wide structured logger.
package log

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	sugar    *zap.SugaredLogger
	logLevel *zap.AtomicLevel
)

// Init replaces the default logger with one built by NewLogger.
func Init(levelStr string, outputs []string) error {
	l, level, err := NewLogger(levelStr, outputs)
	if err != nil {
		return err
	}
	mu.Lock()
	sugar, logLevel = l.Sugar(), level
	mu.Unlock()
	return nil
}

// SetLogger installs l as the default logger. Level changes through
// SetLevelStr have no effect on it.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	sugar, logLevel = l.Sugar(), nil
	mu.Unlock()
}

// SetLevelStr changes the level of the default logger.
// Valid values: debug, info, warn, error, dpanic, panic, fatal.
func SetLevelStr(levelStr string) error {
	get()
	mu.RLock()
	level := logLevel
	mu.RUnlock()
	if level == nil {
		return fmt.Errorf("log: level of injected logger cannot be changed")
	}
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return fmt.Errorf("log: invalid level %q: %w", levelStr, err)
	}
	return nil
}

// Sync flushes buffered entries of the default logger.
func Sync() error {
	return get().Sync()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		return s
	}

	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		l, level, err := NewLogger("info", []string{"stdout"})
		if err != nil {
			panic(err)
		}
		sugar, logLevel = l.Sugar(), level
	}
	return sugar
}

// NewLogger creates a console logger at levelStr writing to outputs.
// outputs holds "stdout", "stderr" or file paths.
func NewLogger(levelStr string, outputs []string) (*zap.Logger, *zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return nil, nil, fmt.Errorf("log: invalid level %q: %w", levelStr, err)
	}
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	cfg := zap.Config{
		Level:            level,
		Encoding:         "console",
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalColorLevelEncoder,
			TimeKey:     "timestamp",
			EncodeTime: func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
				encoder.AppendString(ts.Local().Format(time.RFC3339))
			},
			EncodeDuration: zapcore.StringDurationEncoder,
			CallerKey:      "caller",
			EncodeCaller:   zapcore.ShortCallerEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
		},
	}
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, fmt.Errorf("log: build logger: %w", err)
	}
	return logger, &level, nil
}

// Debug calls log.Debug
func Debug(args ...interface{}) {
	get().Debug(args...)
}

// Info calls log.Info
func Info(args ...interface{}) {
	get().Info(args...)
}

// Warn calls log.Warn
func Warn(args ...interface{}) {
	get().Warn(appendStackTraceMaybeArgs(args)...)
}

// Error calls log.Error
func Error(args ...interface{}) {
	get().Error(appendStackTraceMaybeArgs(args)...)
}

// Fatal calls log.Fatal
func Fatal(args ...interface{}) {
	get().Fatal(appendStackTraceMaybeArgs(args)...)
}

// Debugf calls log.Debugf
func Debugf(template string, args ...interface{}) {
	get().Debugf(template, args...)
}

// Infof calls log.Infof
func Infof(template string, args ...interface{}) {
	get().Infof(template, args...)
}

// Warnf calls log.Warnf
func Warnf(template string, args ...interface{}) {
	get().Warnf(template, args...)
}

// Errorf calls log.Errorf
func Errorf(template string, args ...interface{}) {
	get().Errorf(template, args...)
}

// Fatalf calls log.Fatalf
func Fatalf(template string, args ...interface{}) {
	get().Fatalf(template, args...)
}

// Debugw calls log.Debugw
func Debugw(msg string, kv ...interface{}) {
	get().Debugw(msg, kv...)
}

// Infow calls log.Infow
func Infow(msg string, kv ...interface{}) {
	get().Infow(msg, kv...)
}

// Warnw calls log.Warnw
func Warnw(msg string, kv ...interface{}) {
	get().Warnw(msg, appendStackTraceMaybeKV(kv)...)
}

// Errorw calls log.Errorw
func Errorw(msg string, kv ...interface{}) {
	get().Errorw(msg, appendStackTraceMaybeKV(kv)...)
}

// appendStackTraceMaybeArgs appends the stack trace of the first argument
// that is a pkg/errors error carrying one.
func appendStackTraceMaybeArgs(args []interface{}) []interface{} {
	for _, arg := range args {
		err, ok := arg.(error)
		if !ok {
			continue
		}
		if st := stackTrace(err); st != "" {
			return append(args, "\n", st)
		}
	}
	return args
}

// appendStackTraceMaybeKV adds a "stacktrace" pair for the first error value
// carrying a pkg/errors stack trace.
func appendStackTraceMaybeKV(kv []interface{}) []interface{} {
	for i := 1; i < len(kv); i += 2 {
		err, ok := kv[i].(error)
		if !ok {
			continue
		}
		if st := stackTrace(err); st != "" {
			return append(kv, "stacktrace", st)
		}
	}
	return kv
}

// stackTrace returns the deepest pkg/errors stack trace in err's chain.
func stackTrace(err error) string {
	var deepest stackTracer
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			deepest = st
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	if deepest == nil {
		return ""
	}
	return fmt.Sprintf("%+v", deepest.StackTrace())
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}
