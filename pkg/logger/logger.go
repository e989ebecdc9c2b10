package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps printf-style call sites on top of a zap JSON core.
type Logger struct {
	base  *zap.Logger
	info  *zap.SugaredLogger
	error *zap.SugaredLogger
	warn  *zap.SugaredLogger
	level zap.AtomicLevel
}

func New() *Logger {
	return NewWithLevel("info")
}

// NewWithLevel builds a logger writing JSON lines to stdout. Unknown levels
// fall back to info.
func NewWithLevel(level string) *Logger {
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(level)); err != nil {
		atomic.SetLevel(zapcore.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		atomic,
	)
	return newLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)), atomic)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return newLogger(zap.NewNop(), zap.NewAtomicLevel())
}

// FromZap wraps an existing zap logger, e.g. one built with zaptest/observer.
func FromZap(z *zap.Logger) *Logger {
	return newLogger(z.WithOptions(zap.AddCallerSkip(1)), zap.NewAtomicLevel())
}

func newLogger(z *zap.Logger, level zap.AtomicLevel) *Logger {
	sugar := z.Sugar()
	return &Logger{
		base:  z,
		info:  sugar.Named("app"),
		error: sugar.Named("app"),
		warn:  sugar.Named("app"),
		level: level,
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info.Infof(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.error.Errorf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.warn.Warnf(format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.info.Debugf(format, v...)
}

// With returns a child logger that adds the given key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	child := l.info.With(keysAndValues...)
	return &Logger{
		base:  child.Desugar(),
		info:  child,
		error: child,
		warn:  child,
		level: l.level,
	}
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}
