// Package logger builds the zap loggers used across the service.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log configures the root logger. Sink is an optional file path; stdout is
// always written.
type Log struct {
	LogLevel zapcore.Level `envconfig:"LOG_LEVEL" default:"info"`
	Sink     string        `envconfig:"LOG_SINK"`
	JSON     bool          `envconfig:"LOG_JSON" default:"true"`
}

// NewLogger returns a logger named after the component.
func NewLogger(cfg Log, name string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "ts"

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if cfg.Sink != "" {
		f, err := os.OpenFile(cfg.Sink, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			sinks = append(sinks, zapcore.AddSync(f))
		}
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), zap.NewAtomicLevelAt(cfg.LogLevel))
	return zap.New(core, zap.AddCaller()).Named(name)
}
