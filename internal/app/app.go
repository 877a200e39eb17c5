// Package app assembles the relay: config, logging, identity, channel
// transports, dispatcher, feed pump and scheduled announcements.
package app

import (
	"context"
	"fmt"
	"sync"

	"ecorelay/internal/announce"
	"ecorelay/internal/config"
	"ecorelay/internal/feed"
	"ecorelay/internal/game"
	"ecorelay/internal/identity"
	"ecorelay/internal/relay"
	"ecorelay/internal/transport"
	"ecorelay/internal/transport/telegram"
	"ecorelay/internal/transport/webhook"
	"ecorelay/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	links *identity.SQLiteStore

	users     *game.MemoryUserDirectory
	contracts *game.MemoryContractBoard
	parties   *game.MemoryWorkPartyBoard

	dispatcher *relay.Dispatcher
	pump       *feed.Pump
	announcer  *announce.Service

	mu         sync.Mutex
	watchStop  context.CancelFunc
	watchDone  chan struct{}
	cfgUpdates chan *config.Config
}

func New(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("INFO")
	cfgm := config.NewManager(cfgPath, bootLog)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	// Logging service. The ops webhook sink gets its own client so a
	// flooded notification channel can't starve operator alerts.
	var opsSender logx.LineSender
	if cfg.Logging.Webhook.Enabled {
		ops, err := webhook.New(webhook.Config{
			BaseURL: cfg.Channels.WebhookBase,
			ID:      cfg.Logging.Webhook.ID,
			Token:   cfg.Logging.Webhook.Token,
		}, logx.Nop())
		if err != nil {
			return nil, fmt.Errorf("ops webhook: %w", err)
		}
		opsSender = ops
	}
	logs, log := logx.New(mapLogConfig(cfg), opsSender)
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a := &App{
		cfgm:      cfgm,
		log:       log,
		logs:      logs,
		users:     game.NewMemoryUserDirectory(),
		contracts: game.NewMemoryContractBoard(),
		parties:   game.NewMemoryWorkPartyBoard(),
	}

	// Identity: sqlite links + static member directory.
	storePath := cfg.Identity.StorePath
	if storePath == "" {
		storePath = "./ecorelay.db"
	}
	busy, err := config.ParseDurationField("identity.busy_timeout", cfg.Identity.BusyTimeout)
	if err != nil {
		return nil, err
	}
	links, err := identity.OpenSQLite(identity.StoreConfig{Path: storePath, BusyTimeout: busy},
		log.With(logx.String("comp", "identity")))
	if err != nil {
		return nil, fmt.Errorf("identity store: %w", err)
	}
	a.links = links

	dir := identity.StaticDirectory{}
	for _, m := range cfg.Identity.Members {
		dir[m.ID] = identity.Profile{ID: m.ID, Username: m.Username, AvatarURL: m.AvatarURL}
	}
	resolver := identity.NewResolver(links, dir, a.users, log.With(logx.String("comp", "identity")))

	// Channel transports.
	router := relay.NewRouter(log.With(logx.String("comp", "router")))
	bind := func(ch relay.Channel, cc config.ChannelConfig) error {
		s, err := buildSender(cfg, cc, log.With(logx.String("channel", string(ch))))
		if err != nil {
			return fmt.Errorf("channels.%s: %w", ch, err)
		}
		router.Bind(ch, s)
		return nil
	}
	binds := []struct {
		ch relay.Channel
		cc config.ChannelConfig
	}{
		{relay.ChannelGeneral, cfg.Channels.General},
		{relay.ChannelActivity, cfg.Channels.Activity},
		{relay.ChannelGovernance, cfg.Channels.Governance},
		{relay.ChannelWork, cfg.Channels.Work},
	}
	for _, b := range binds {
		if err := bind(b.ch, b.cc); err != nil {
			a.close()
			return nil, err
		}
	}

	a.dispatcher = relay.New(resolver, a.contracts, a.parties, router,
		cfg.Channels.AvatarURL, log.With(logx.String("comp", "relay")))
	a.pump = feed.NewPump(a.dispatcher, cfg.Feed.Buffer, log.With(logx.String("comp", "feed")))

	ann, err := announce.New(announce.Config{
		Enabled:  cfg.Announce.Enabled,
		Schedule: cfg.Announce.Schedule,
	}, a.users, a.dispatcher, log.With(logx.String("comp", "announce")))
	if err != nil {
		a.close()
		return nil, err
	}
	a.announcer = ann

	return a, nil
}

func buildSender(cfg *config.Config, cc config.ChannelConfig, log logx.Logger) (transport.Sender, error) {
	switch {
	case cc.Webhook != nil:
		return webhook.New(webhook.Config{
			BaseURL:    cfg.Channels.WebhookBase,
			ID:         cc.Webhook.ID,
			Token:      cc.Webhook.Token,
			RatePerSec: cfg.Channels.RatePerSec,
		}, log)
	case cc.Telegram != nil:
		return telegram.New(telegram.Config{
			Token:    cfg.Telegram.Token,
			ChatID:   cc.Telegram.ChatID,
			ThreadID: cc.Telegram.ThreadID,
		}, log)
	default:
		return nil, fmt.Errorf("no transport configured")
	}
}

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Webhook: logx.WebhookConfig{
			Enabled:    cfg.Logging.Webhook.Enabled,
			MinLevel:   cfg.Logging.Webhook.MinLevel,
			RatePerSec: cfg.Logging.Webhook.RatePerSec,
		},
	}
}

// Start launches the feed pump, the config watcher and the announcer.
func (a *App) Start(ctx context.Context) error {
	a.pump.Start(ctx)
	a.announcer.Start()

	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	updates := a.cfgm.Subscribe(1)

	a.mu.Lock()
	a.watchStop = cancel
	a.watchDone = done
	a.cfgUpdates = updates
	a.mu.Unlock()

	go func() {
		defer close(done)
		go func() { _ = a.cfgm.Watch(wctx) }()
		for {
			select {
			case <-wctx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				// Only logging is hot-swappable; transports and the
				// identity store are rebuilt by a restart.
				a.logs.Apply(mapLogConfig(cfg))
				a.log.Info("logging config applied")
			}
		}
	}()

	a.log.Info("relay started")
	return nil
}

// Ingest decodes one feed line and either updates a board/roster view
// or enqueues the action for dispatch. Malformed lines are an error;
// unknown kinds are skipped.
func (a *App) Ingest(ctx context.Context, line []byte) error {
	rec, err := game.Decode(line)
	if err != nil {
		return err
	}
	switch {
	case rec.Contract != nil:
		a.contracts.Upsert(*rec.Contract)
	case rec.RemovedContract != "":
		a.contracts.Remove(rec.RemovedContract)
	case rec.WorkParty != nil:
		a.parties.Upsert(*rec.WorkParty)
	case rec.RemovedParty != "":
		a.parties.Remove(rec.RemovedParty)
	case rec.User != nil:
		a.users.Upsert(*rec.User)
	case rec.Action != nil:
		// Track the online population for status announcements before
		// the signal reaches the dispatcher.
		switch s := rec.Action.(type) {
		case game.UserLogin:
			a.users.SetOnline(s.User, true)
		case game.UserLogout:
			a.users.SetOnline(s.User, false)
		}
		return a.pump.Publish(ctx, rec.Action)
	}
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.watchStop
	done := a.watchDone
	updates := a.cfgUpdates
	a.watchStop = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		a.cfgm.Unsubscribe(updates)
	}

	a.announcer.Stop()
	err := a.pump.Stop(ctx)
	a.log.Info("relay stopped")
	a.close()
	return err
}

func (a *App) close() {
	if a.links != nil {
		_ = a.links.Close()
		a.links = nil
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
}
