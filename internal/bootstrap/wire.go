package bootstrap

import (
	"context"
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

// gatewayComponent is the watchdog name of the Discord gateway probe.
const gatewayComponent = "gateway"

func Wire(b *Bootstrap) error {
	logging.Info("Wiring components...")
	cfg := b.Config

	color, err := cfg.Audit.Color()
	if err != nil {
		return err
	}

	metrics.InitGlobalRegistry()
	registry := metrics.GetRegistry()

	guard := normalizer.NewGuard(cfg.Discord.GuildID)
	session, err := bot.Initialize(cfg, guard)
	if err != nil {
		return err
	}
	api := bot.NewRESTAdapter(session.GetDiscord(), cfg.Discord.GuildID)

	channels := notifier.NewChannelResolver(api, cfg.Audit.ChannelName, cfg.Audit.ChannelTopic, guard.Self)
	publisher := notifier.NewPublisher(api, channels, notifier.Style{
		Color:    color,
		ImageURL: cfg.Audit.ImageURL,
	}, registry)

	rec := reconciler.New(api, reconciler.Config{
		Delay:  cfg.Reconciler.Delay,
		Limit:  cfg.Reconciler.Limit,
		Window: cfg.Reconciler.Window,
	})

	ctx, cancel := context.WithCancel(context.Background())
	router := bot.NewRouter(ctx, bot.Deps{
		Guard:          guard,
		Mirror:         bot.NewMirror(),
		Publisher:      publisher,
		Reconciler:     rec,
		AuditLog:       api,
		Users:          api,
		Members:        session,
		Stats:          registry,
		LookupWindow:   cfg.Reconciler.Window,
		ChannelDeleted: channels.Forget,
		OwnChannel:     channels.Created,
	})
	router.Register(session.AddHandler)

	cmdHandler := commands.NewHandler(cfg.Discord.GuildID, channels, registry)
	session.AddHandler(cmdHandler.HandleInteraction)
	session.SetCommands(commands.GetAllCommands())

	wd := watchdog.NewWatchdog(cfg.Watchdog.Interval)
	wd.RegisterProbe(gatewayComponent, cfg.Watchdog.StaleAfter, session.LastHeartbeat)

	var healthServer *health.Server
	if cfg.HTTP.Enabled {
		healthServer = health.NewServer(health.Info{
			GuildID: cfg.Discord.GuildID,
			BotName: session.BotName,
		}, wd, registry.Gatherer())
	}

	b.Components = &Components{
		Session:    session,
		Guard:      guard,
		Router:     router,
		Channels:   channels,
		Publisher:  publisher,
		Reconciler: rec,
		Commands:   cmdHandler,
		Metrics:    registry,
		Watchdog:   wd,
		Health:     healthServer,
		cancel:     cancel,
	}

	logging.Info("Component wiring complete")
	return nil
}

func StartAll(ctx context.Context, cfg *config.Config, c *Components) error {
	logging.Info("Starting components...")

	if c.Watchdog != nil {
		c.Watchdog.Start(ctx)
		logging.Info("Watchdog started")
	}

	if c.Health != nil {
		c.healthDone = make(chan struct{})
		go func() {
			defer close(c.healthDone)
			if err := c.Health.ListenAndServe(cfg.HTTP.Addr); err != nil {
				logging.Error("Health server stopped: %v", err)
			}
		}()
	}

	if err := c.Session.Connect(); err != nil {
		return fmt.Errorf("gateway connection failed: %w", err)
	}

	logging.Info("Audit relay started for guild %s", cfg.Discord.GuildID)
	return nil
}
