package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	level   zap.AtomicLevel
	encoder zapcore.Encoder
	file    *os.File // open log file when the destination is FileLog
}

// NewZapLogger creates a logger writing human readable lines to stderr at InfoLevel.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return &ZapLogger{
		logger:  newZap(core),
		level:   level,
		encoder: encoder,
	}
}

// NewFromCore wraps an existing zap core. The core's own level still applies.
func NewFromCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{
		logger:  newZap(core),
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
		encoder: zapcore.NewConsoleEncoder(encoderConfig()),
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{
		logger:  zap.NewNop(),
		level:   zap.NewAtomicLevelAt(zapcore.FatalLevel),
		encoder: zapcore.NewConsoleEncoder(encoderConfig()),
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// Info, Error and the other level methods call log, which calls zap: skip both frames
// so the reported caller is the application code.
func newZap(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
}

// Field returns a builder for typed log fields.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the minimum level that is written.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination switches output between the console and a file. FileLog requires a path;
// the file is created if missing and appended to otherwise.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) error {
	var (
		sink zapcore.WriteSyncer
		file *os.File
	)

	switch dest {
	case contracts.ConsoleLog:
		sink = zapcore.Lock(os.Stderr)
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			return fmt.Errorf("log destination %q requires a file path", dest)
		}
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = f
		sink = zapcore.Lock(f)
	default:
		return fmt.Errorf("unknown log destination %q", dest)
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	_ = z.logger.Sync()
	if z.file != nil {
		_ = z.file.Close()
	}
	z.file = file
	z.logger = newZap(zapcore.NewCore(z.encoder, sink, z.level))
	return nil
}

// Enabled reports whether a message at level would be written.
func (z *ZapLogger) Enabled(level contracts.LogLevel) bool {
	lvl := toZapLevel(level)
	if !z.level.Enabled(lvl) {
		return false
	}
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger.Core().Enabled(lvl)
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger.Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if !z.level.Enabled(level) {
		return
	}

	zfields := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.set {
			zfields = append(zfields, f.field)
		}
	}

	z.mu.RLock()
	l := z.logger
	z.mu.RUnlock()

	switch level {
	case zapcore.DebugLevel:
		l.Debug(msg, zfields...)
	case zapcore.InfoLevel:
		l.Info(msg, zfields...)
	case zapcore.WarnLevel:
		l.Warn(msg, zfields...)
	case zapcore.ErrorLevel:
		l.Error(msg, zfields...)
	case zapcore.FatalLevel:
		l.Fatal(msg, zfields...)
	}
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// zapField implements contracts.Field by carrying a zap.Field.
type zapField struct {
	field zap.Field
	set   bool
}

func wrap(f zap.Field) contracts.Field { return zapField{field: f, set: true} }

func (zapField) Bool(key string, val bool) contracts.Field     { return wrap(zap.Bool(key, val)) }
func (zapField) Int(key string, val int) contracts.Field       { return wrap(zap.Int(key, val)) }
func (zapField) Float64(key string, val float64) contracts.Field {
	return wrap(zap.Float64(key, val))
}
func (zapField) String(key string, val string) contracts.Field  { return wrap(zap.String(key, val)) }
func (zapField) Time(key string, val time.Time) contracts.Field { return wrap(zap.Time(key, val)) }
func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return wrap(zap.Duration(key, val))
}
func (zapField) Int64(key string, val int64) contracts.Field   { return wrap(zap.Int64(key, val)) }
func (zapField) Error(key string, val error) contracts.Field   { return wrap(zap.NamedError(key, val)) }
func (zapField) Uint64(key string, val uint64) contracts.Field { return wrap(zap.Uint64(key, val)) }
func (zapField) Uint8(key string, val uint8) contracts.Field   { return wrap(zap.Uint8(key, val)) }
func (zapField) Stringer(key string, val fmt.Stringer) contracts.Field {
	return wrap(zap.Stringer(key, val))
}
