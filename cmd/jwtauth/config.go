package main

import (
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cybergodev/jwtauth"
)

// cliConfig is read from the environment after .env has been loaded.
type cliConfig struct {
	Secret   string `env:"JWTAUTH_SECRET"`
	LogLevel string `env:"JWTAUTH_LOG_LEVEL" envDefault:"warn"`

	Processor jwtauth.Config
}

func loadConfig() (cliConfig, error) {
	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return cliConfig{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Processor.Validate(); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

// newLogger writes JSON logs at level to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
