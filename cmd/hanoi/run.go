package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	backend "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gwillem/hanoiarm/internal/telemetry"
	"github.com/gwillem/hanoiarm/pkg/actuator"
	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/config"
	"github.com/gwillem/hanoiarm/pkg/enable"
	"github.com/gwillem/hanoiarm/pkg/robot"
)

type RunCommand struct {
	Backend string `long:"backend" choice:"arm" choice:"redis" choice:"dry" default:"arm" description:"Where commands go: the servo bus, Redis pub/sub or nowhere"`
	Enable  string `long:"enable" choice:"local" choice:"redis" default:"local" description:"Enable signal: toggled in the TUI or read from Redis"`
	Metrics string `long:"metrics" description:"Listen address for /metrics and /status (overrides the config file)"`
	NoTUI   bool   `long:"no-tui" description:"Log to stderr instead of showing the dashboard"`
}

// switcher flips the enable signal from the dashboard.
type switcher func(ctx context.Context) (bool, error)

func (c *RunCommand) Execute(args []string) error {
	cfg, found, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Backend == "arm" && (!found || cfg.Arm.Port == "" || !cfg.Arm.IsCalibrated()) {
		fmt.Fprintln(os.Stderr, "Arm not configured. Run 'hanoi setup' first, or use --backend dry.")
		os.Exit(1)
	}
	if c.Metrics != "" {
		cfg.Metrics.Addr = c.Metrics
	}

	var logger *zap.Logger
	logLines := make(chan string, 100)
	if c.NoTUI {
		if logger, err = newLogger(); err != nil {
			return err
		}
	} else {
		logger = newTUILogger(logLines)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client *backend.Client
	if c.Backend == "redis" || c.Enable == "redis" {
		client = newRedisClient(cfg.Redis)
		defer client.Close()
	}

	pub, closePub, err := c.publisher(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer closePub()

	enabled, toggle := c.enableSignal(cfg, client)

	metrics := telemetry.NewMetrics()
	engine, err := choreo.NewEngine(cfg.Choreography, actuator.WithLogging(pub, logger),
		choreo.WithLogger(logger),
		choreo.WithObserver(metrics))
	if err != nil {
		return err
	}
	metrics.Observe(engine.State())

	ctrl, err := choreo.NewController(engine, enabled)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			h := telemetry.NewHandler(metrics, ctrl, logger)
			if err := telemetry.Serve(ctx, cfg.Metrics.Addr, h, logger); err != nil {
				logger.Error("telemetry server", zap.Error(err))
			}
		}()
	}

	if c.NoTUI {
		err := ctrl.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	model, err := newDashboard(ctx, ctrl, enabled, logLines, done, toggle, c.Backend)
	if err != nil {
		return err
	}
	go func() {
		done <- ctrl.Run(ctx)
	}()

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	cancel()

	if d, ok := final.(dashboard); ok && d.err != nil && !errors.Is(d.err, context.Canceled) {
		return d.err
	}
	return nil
}

func (c *RunCommand) publisher(ctx context.Context, cfg *config.Config, client *backend.Client) (choreo.Publisher, func(), error) {
	switch c.Backend {
	case "redis":
		pub, err := actuator.NewRedis(ctx, client)
		return pub, func() {}, err
	case "dry":
		return actuator.NewRecorder(), func() {}, nil
	}

	arm, err := robot.NewArm(cfg.Arm.Port, cfg.Arm.Calibration)
	if err != nil {
		return nil, nil, err
	}
	if err := arm.Enable(ctx); err != nil {
		arm.Close()
		return nil, nil, fmt.Errorf("enable torque: %w", err)
	}
	pub, err := actuator.NewArm(ctx, arm, cfg.Arm.Geometry)
	if err != nil {
		arm.Close()
		return nil, nil, err
	}
	return pub, func() {
		// leave the arm where it is: torque stays on until the process exits
		arm.Close()
	}, nil
}

func (c *RunCommand) enableSignal(cfg *config.Config, client *backend.Client) (choreo.EnableSignal, switcher) {
	if c.Enable == "redis" {
		rf := enable.NewRedisFlag(client, cfg.Redis.EnableKey, true)
		return rf, func(ctx context.Context) (bool, error) {
			on, err := rf.Enabled(ctx)
			if err != nil {
				return false, err
			}
			return !on, rf.Set(ctx, !on)
		}
	}

	f := enable.NewFlag(true)
	return f, func(context.Context) (bool, error) {
		return f.Toggle(), nil
	}
}
