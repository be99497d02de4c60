// Package logger builds the zap logger for each runtime environment and carries
// request-scoped loggers through context.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// presets maps an environment name to its base zap config.
var presets = map[string]func() zap.Config{
	"prod":   zap.NewProductionConfig,
	"local":  devConfig,
	"dev":    devConfig,
	"docker": devConfig,
	"cli":    cliConfig,
}

func devConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// cliConfig keeps stdout free for the interactive menu.
func cliConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg
}

// NewLogger creates the logger for env: JSON for prod, colored console for
// local/dev/docker, stderr-only console at warn for cli, and a no-op for test.
// A non-empty level (debug, info, warn, error) replaces the preset level.
func NewLogger(env string, level ...string) (*zap.Logger, error) {
	if env == "test" {
		return zap.NewNop(), nil
	}
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := preset()

	if len(level) > 0 && level[0] != "" {
		lvl, err := zapcore.ParseLevel(level[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
