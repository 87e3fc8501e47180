// Package bootstrap loads configuration and wires the relay's components.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go-audit-relay/internal/bot"
	"go-audit-relay/internal/commands"
	"go-audit-relay/internal/config"
	"go-audit-relay/internal/health"
	"go-audit-relay/internal/logging"
	"go-audit-relay/internal/metrics"
	"go-audit-relay/internal/normalizer"
	"go-audit-relay/internal/notifier"
	"go-audit-relay/internal/reconciler"
	"go-audit-relay/internal/watchdog"
)

type Bootstrap struct {
	Config      *config.Config
	Components  *Components
	initialized bool
}

type Components struct {
	Session    *bot.Session
	Guard      *normalizer.Guard
	Router     *bot.Router
	Channels   *notifier.ChannelResolver
	Publisher  *notifier.Publisher
	Reconciler *reconciler.Reconciler
	Commands   *commands.Handler

	Metrics  *metrics.Registry
	Watchdog *watchdog.Watchdog
	Health   *health.Server

	// cancel ends the context every handler publishes under.
	cancel context.CancelFunc
	// healthDone is closed when the health server returns.
	healthDone chan struct{}
}

func New() *Bootstrap {
	return &Bootstrap{
		initialized: false,
	}
}

// Initialize loads the configuration at configPath and builds every
// component without connecting to Discord.
func (b *Bootstrap) Initialize(configPath string) error {
	if err := b.loadConfig(configPath); err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.wireComponents(); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

func (b *Bootstrap) loadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	return logging.InitGlobalLogger(logging.Options{
		Level:  b.Config.Log.Level,
		Format: b.Config.Log.Format,
		Path:   b.Config.Log.File,
	})
}

func (b *Bootstrap) wireComponents() error {
	return Wire(b)
}

func (b *Bootstrap) Start(ctx context.Context) error {
	if !b.initialized {
		return errors.New("bootstrap not initialized")
	}

	return StartAll(ctx, b.Config, b.Components)
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.Components == nil {
		return nil
	}
	return Shutdown(ctx, b.Components)
}
