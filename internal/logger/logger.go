package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop()

// Init configures the process-wide logger. Production gets JSON output,
// everything else gets the console encoder.
func Init(env string) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	base = l
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	_ = base.Sync()
}

func Info(msg string, fields map[string]any) {
	base.Info(msg, toZap(fields)...)
}

func Warn(msg string, fields map[string]any) {
	base.Warn(msg, toZap(fields)...)
}

func Error(msg string, fields map[string]any) {
	base.Error(msg, toZap(fields)...)
}

// Fatal logs and exits the process.
func Fatal(msg string, fields map[string]any) {
	base.Fatal(msg, toZap(fields)...)
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
