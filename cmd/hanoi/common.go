package main

import (
	"fmt"
	"strings"

	backend "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gwillem/hanoiarm/pkg/config"
)

// loadConfig reads the configuration file, falling back to the defaults when
// the file does not exist.
func loadConfig() (*config.Config, bool, error) {
	if !config.Exists(opts.Config) {
		return config.Default(), false, nil
	}
	cfg, err := config.LoadFrom(opts.Config)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", opts.Config, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", opts.Config, err)
	}
	return cfg, true, nil
}

func logLevel() zapcore.Level {
	if opts.Verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// newLogger builds the console logger used outside the TUI.
func newLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(logLevel())
	zc.DisableStacktrace = true
	return zc.Build()
}

// chanWriter forwards log lines to the TUI. Lines are dropped when the TUI
// falls behind.
type chanWriter chan string

func (w chanWriter) Write(p []byte) (int, error) {
	select {
	case w <- strings.TrimRight(string(p), "\n"):
	default:
	}
	return len(p), nil
}

func (chanWriter) Sync() error { return nil }

// newTUILogger builds a logger whose output ends up in the TUI log box.
func newTUILogger(lines chan string) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), chanWriter(lines), logLevel())
	return zap.New(core)
}

func newRedisClient(cfg config.RedisConfig) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
}
