// Package dispatch drives one inbound chat event through parsing, command
// resolution, permission and tier checks, and handler execution.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"
	"github.com/keshon/economy-bot/pkg/cmd"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FailureMarker is the reaction left on a message whose command failed.
const FailureMarker = "❌"

// Outcome is where a dispatch cycle ended.
type Outcome int

const (
	NoCommand Outcome = iota
	Unknown
	MissingPermissions
	Unauthorized
	Done
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NoCommand:
		return "no-command"
	case Unknown:
		return "unknown"
	case MissingPermissions:
		return "missing-permissions"
	case Unauthorized:
		return "unauthorized"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// PrefixSource supplies per-guild prefix overrides.
type PrefixSource interface {
	Prefix(guildID string) (string, bool)
}

// PassiveHandler receives messages that are not commands.
type PassiveHandler interface {
	Handle(ctx context.Context, logger zerolog.Logger, authorID string, authorBot bool)
}

// Options configures a Dispatcher.
type Options struct {
	Registry *command.Registry
	Notifier command.Notifier
	// Prefix is used when Prefixes has no override for the guild.
	Prefix   string
	Prefixes PrefixSource
	Passive  PassiveHandler
	// Required is added to every handler's own platform permissions;
	// defaults to permission.Base.
	Required permission.Set
	Logger   *zerolog.Logger
}

// Dispatcher routes events to handlers. It keeps no per-event state and is
// safe for concurrent use; shared state lives in the stores handlers use.
type Dispatcher struct {
	registry *command.Registry
	notifier command.Notifier
	prefix   string
	prefixes PrefixSource
	passive  PassiveHandler
	required permission.Set
	logger   zerolog.Logger
}

// New builds a dispatcher from opts.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		registry: opts.Registry,
		notifier: opts.Notifier,
		prefix:   opts.Prefix,
		prefixes: opts.Prefixes,
		passive:  opts.Passive,
		required: opts.Required,
		logger:   log.Logger,
	}
	if d.prefix == "" {
		d.prefix = "."
	}
	if d.required == 0 {
		d.required = permission.Base
	}
	if opts.Logger != nil {
		d.logger = *opts.Logger
	}
	return d
}

// PrefixFor returns the prefix in effect for guildID.
func (d *Dispatcher) PrefixFor(guildID string) string {
	if d.prefixes != nil && guildID != "" {
		if p, ok := d.prefixes.Prefix(guildID); ok && p != "" {
			return p
		}
	}
	return d.prefix
}

// Handle processes one event to completion. Failures never escape: they are
// logged and, where the event source should know, signalled best-effort.
func (d *Dispatcher) Handle(ctx context.Context, ev command.Event) Outcome {
	logger := d.logger.With().
		Str("cycle", uuid.NewString()).
		Str("guild", ev.GuildID).
		Str("channel", ev.ChannelID).
		Str("user", ev.AuthorID).
		Logger()

	prefix := d.PrefixFor(ev.GuildID)
	parsed := cmd.Parse(ev.Content, prefix)
	if !parsed.OK {
		if d.passive != nil {
			d.passive.Handle(ctx, logger, ev.AuthorID, ev.AuthorBot)
		}
		return NoCommand
	}
	inv := parsed.Invocation

	h, ok := d.registry.Resolve(inv.Name)
	if !ok {
		logger.Debug().Str("command", inv.Name).Msg("unknown command")
		return Unknown
	}
	logger = logger.With().Str("command", h.Name()).Logger()

	if missing := permission.Missing(ev.BotPermissions, d.required|h.BotPermissions()); missing != 0 {
		names := strings.Join(permission.Names(missing), ", ")
		if err := d.notifier.Send(ctx, ev.ChannelID, "Missing permissions: "+names); err != nil {
			logger.Debug().Err(err).Msg("missing permissions notice not delivered")
		}
		logger.Warn().Str("missing", names).Msg("missing permissions")
		return MissingPermissions
	}

	if !permission.CheckTier(ev.ActorTier, h.Tier()) {
		logger.Debug().
			Stringer("tier", ev.ActorTier).
			Stringer("required", h.Tier()).
			Msg("command refused: insufficient tier")
		return Unauthorized
	}

	c := &command.Context{
		Event:      ev,
		Invocation: inv,
		Args:       inv.Args,
		Prefix:     prefix,
		Notifier:   d.notifier,
	}
	if err := run(ctx, h, c); err != nil {
		if rerr := d.notifier.React(ctx, ev.ChannelID, ev.ID, FailureMarker); rerr != nil {
			logger.Debug().Err(rerr).Msg("failure marker not delivered")
		}
		logger.Error().Err(err).Msg("command failed")
		return Failed
	}
	return Done
}

// run executes h once, turning a panic into an error.
func run(ctx context.Context, h command.Handler, c *command.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v\n%s", h.Name(), r, debug.Stack())
		}
	}()
	return h.Run(ctx, c)
}
