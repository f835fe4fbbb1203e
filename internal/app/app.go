// Package app builds the application context: stores, command registry and
// dispatcher wiring. Transports (Discord, the CLI REPL) only supply a
// Notifier.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/buildinfo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/command/core"
	"github.com/keshon/economy-bot/internal/command/eco"
	"github.com/keshon/economy-bot/internal/command/guild"
	"github.com/keshon/economy-bot/internal/config"
	"github.com/keshon/economy-bot/internal/cooldown"
	"github.com/keshon/economy-bot/internal/dispatch"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/reward"
	"github.com/keshon/economy-bot/internal/settings"
	"github.com/keshon/economy-bot/pkg/jobmgr"
	"github.com/keshon/economy-bot/pkg/retrylimit"
)

const (
	connectAttempts = 5
	projectName     = "economy-bot"
)

// BuildInfo reports the binary's build identity. Project falls back to
// economy-bot when it was not set with -ldflags.
func BuildInfo() buildinfo.BuildInfo {
	info := buildinfo.Get()
	if info.Project == "" || info.Project == "unknown" {
		info.Project = projectName
	}
	return info
}

// Options tweaks construction for callers other than the bot process.
type Options struct {
	// Memory keeps balances and cooldowns in process memory.
	Memory bool
	// Latency is reported by the ping command.
	Latency func() time.Duration
}

type App struct {
	Config    *config.Config
	Ledger    ledger.Store
	Cooldowns cooldown.Store
	Settings  *settings.Store
	Registry  *command.Registry
	Granter   *reward.Granter

	jobs    *jobmgr.Manager
	closers []func() error
}

// New connects the stores and registers every command. On error everything
// opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, opts Options) (a *App, err error) {
	a = &App{Config: cfg, jobs: jobmgr.NewManager()}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	if err := a.openCooldowns(ctx, opts.Memory); err != nil {
		return nil, err
	}
	if err := a.openLedger(ctx, opts.Memory); err != nil {
		return nil, err
	}

	a.Settings, err = settings.Open(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	a.closers = append(a.closers, a.Settings.Close)

	table := reward.DefaultTable()
	if cfg.RewardTablePath != "" {
		if table, err = reward.LoadTable(cfg.RewardTablePath); err != nil {
			return nil, err
		}
	}
	a.Granter = &reward.Granter{
		Cooldowns: a.Cooldowns,
		Ledger:    a.Ledger,
		Table:     table,
		Chance:    cfg.RewardChance,
		Window:    cfg.RewardCooldown,
	}

	a.Registry = command.NewRegistry(cfg.CommandCaseSensitive)
	a.registerCommands(opts.Latency)
	return a, nil
}

func (a *App) openCooldowns(ctx context.Context, memory bool) error {
	cfg := a.Config
	if memory || cfg.RedisAddr == "" {
		store := cooldown.NewMemoryStore()
		err := a.jobs.Start("cooldown-janitor", func(ctx context.Context) error {
			store.RunJanitor(ctx, time.Minute)
			return nil
		})
		if err != nil {
			return err
		}
		a.Cooldowns = store
		log.Info().Msg("cooldowns kept in memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.closers = append(a.closers, client.Close)
	store := cooldown.NewRedisStore(client, cfg.RedisPrefix)
	if err := retrylimit.WithRetryMax(ctx, "redis", store.Ping, connectAttempts); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.Cooldowns = store
	log.Info().Str("addr", cfg.RedisAddr).Msg("cooldowns in redis")
	return nil
}

func (a *App) openLedger(ctx context.Context, memory bool) error {
	cfg := a.Config
	if memory {
		a.Ledger = ledger.NewMemoryStore()
		log.Info().Msg("ledger kept in memory")
		return nil
	}

	dialect, err := ledger.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	var store *ledger.SQLStore
	err = retrylimit.WithRetryMax(ctx, "database", func(ctx context.Context) error {
		s, err := ledger.Open(ctx, dialect, cfg.DatabaseDSN)
		if err != nil {
			if errors.Is(err, ledger.ErrUnavailable) {
				return err
			}
			return retrylimit.Fatal(err)
		}
		store = s
		return nil
	}, connectAttempts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	a.Ledger = store
	log.Info().Str("driver", string(dialect)).Msg("ledger in database")
	return nil
}

func (a *App) registerCommands(latency func() time.Duration) {
	cfg := a.Config
	money := eco.Money(cfg.CurrencySymbol)
	logged := command.WithCommandLogger()

	a.Registry.MustRegister(
		command.Apply(&core.HelpCommand{Registry: a.Registry, Project: BuildInfo().Project}, logged),
		command.Apply(&core.PingCommand{Latency: latency}, logged),

		command.Apply(&eco.BalanceCommand{Ledger: a.Ledger, Money: money}, logged),
		command.Apply(&eco.PayCommand{Ledger: a.Ledger, Money: money},
			command.WithCooldown(a.Cooldowns, cfg.PayCooldown), logged),
		command.Apply(&eco.DepositCommand{Ledger: a.Ledger, Money: money}, logged),
		command.Apply(&eco.WithdrawCommand{Ledger: a.Ledger, Money: money}, logged),
		command.Apply(&eco.EcoCommand{Ledger: a.Ledger, Money: money}, logged),

		command.Apply(&guild.PrefixCommand{Settings: a.Settings, Default: cfg.CommandPrefix}, logged),
		command.Apply(&guild.ModRoleCommand{Settings: a.Settings}, logged),
	)
}

// Dispatcher returns a dispatcher that replies through n.
func (a *App) Dispatcher(n command.Notifier) *dispatch.Dispatcher {
	return dispatch.New(dispatch.Options{
		Registry: a.Registry,
		Notifier: n,
		Prefix:   a.Config.CommandPrefix,
		Prefixes: a.Settings,
		Passive:  a.Granter,
	})
}

// Close stops background jobs and releases everything New opened, in
// reverse order.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	a.jobs.StopAll()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
