package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger Interface = NewZapWrappedLogger(zap.NewNop())
var loggerLock sync.RWMutex

type ReinitializeLoggerFunc func()

var registeredLoggers = map[string]ReinitializeLoggerFunc{}
var registeredLoggersLock sync.RWMutex

// L returns the global logger. It can either be used directly in other
// packages, or they can create a sublogger from this and register a
// function for reinitialization on global logger change with `RegisterLogger`.
func L() Interface {
	loggerLock.RLock()
	l := logger
	loggerLock.RUnlock()
	return l
}

// RegisterLogger allows sub-loggers to register a callback function
// to get notified when the global logger changed. This allows sub-loggers
// to reinitialize their sub-logger.
func RegisterLogger(name string, f ReinitializeLoggerFunc) {
	registeredLoggersLock.Lock()
	registeredLoggers[name] = f
	registeredLoggersLock.Unlock()
}

// ReplaceGlobals allows to reinitialize the global logger exactly like
// the zap.ReplaceGlobals. It also returns a function to restore the
// previous logger. However, it takes the interface of this package as
// an argument. Use `NewZapWrappedLogger` to create a zap logger which
// fulfills this interface.
func ReplaceGlobals(newLogger Interface) func() {
	loggerLock.Lock()
	prevLogger := logger
	logger = newLogger
	loggerLock.Unlock()

	registeredLoggersLock.RLock()
	for _, reglogReinitFunc := range registeredLoggers {
		reglogReinitFunc()
	}
	registeredLoggersLock.RUnlock()

	return func() { ReplaceGlobals(prevLogger) }
}

// NewConsole builds the logger of the provisioning server which writes
// to stderr. `format` is either "console" or "json".
func NewConsole(level zapcore.Level, format string, development bool) (*zap.Logger, error) {
	// we enable callers, stacktraces and functions in development mode only
	disableCaller := true
	disableStacktrace := true
	functionKey := zapcore.OmitKey
	if development {
		disableCaller = false
		disableStacktrace = false
		functionKey = "F"
	}

	// these settings will be dependent on the format
	encoding := "console"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	keyConvert := func(s string) string { return s }
	if format == "json" {
		encoding = "json"
		encodeLevel = zapcore.LowercaseLevelEncoder
		keyConvert = func(s string) string { return strings.ToLower(s) }
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       development,
		DisableCaller:     disableCaller,
		DisableStacktrace: disableStacktrace,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        keyConvert("T"),
			LevelKey:       keyConvert("L"),
			NameKey:        keyConvert("N"),
			CallerKey:      keyConvert("C"),
			FunctionKey:    keyConvert(functionKey),
			MessageKey:     keyConvert("M"),
			StacktraceKey:  keyConvert("S"),
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
