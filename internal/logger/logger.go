package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fixora/payflow/internal/config"
)

// New builds the process logger: JSON with ISO8601 timestamps and the service
// identity stamped on every entry. Development swaps in the console encoder so
// local payment flows stay readable.
func New(appCfg config.Config) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if appCfg.Environment == "development" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	level := appCfg.LogLevel
	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return cfg.Build(zap.Fields(
		zap.String("service", appCfg.AppName),
		zap.String("version", appCfg.AppVersion),
	))
}
