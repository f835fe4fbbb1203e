package command

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/economy-bot/internal/cooldown"

	"github.com/rs/zerolog/log"
)

// Middleware wraps a handler (logging, cooldowns). The wrapped value is
// still a Handler with the inner handler's identity and requirements.
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the last in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

// Wrapped delegates everything except Run to the embedded Handler.
type Wrapped struct {
	Handler
	RunFunc func(ctx context.Context, c *Context) error
}

func (w *Wrapped) Run(ctx context.Context, c *Context) error {
	if w.RunFunc != nil {
		return w.RunFunc(ctx, c)
	}
	return w.Handler.Run(ctx, c)
}

// Unwrap returns the inner handler.
func (w *Wrapped) Unwrap() Handler { return w.Handler }

// Wrap returns a handler that runs run instead of h.Run.
func Wrap(h Handler, run func(ctx context.Context, c *Context) error) Handler {
	return &Wrapped{Handler: h, RunFunc: run}
}

// Root unwraps h until the underlying handler is reached.
func Root(h Handler) Handler {
	for {
		w, ok := h.(interface{ Unwrap() Handler })
		if !ok {
			return h
		}
		h = w.Unwrap()
	}
}

// WithCommandLogger logs each execution with its duration and outcome.
func WithCommandLogger() Middleware {
	return func(h Handler) Handler {
		return Wrap(h, func(ctx context.Context, c *Context) error {
			start := time.Now()
			err := h.Run(ctx, c)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("command", h.Name()).
				Str("guild", c.Event.GuildID).
				Str("channel", c.Event.ChannelID).
				Str("user", c.Event.AuthorID).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return err
		})
	}
}

// CooldownNamespace is the cooldown namespace of a command.
func CooldownNamespace(name string) string {
	return "cmd:" + name
}

// WithCooldown lets each author run the command at most once per window.
// A denied call replies with the remaining time and does not run the handler.
// Store failures are returned to the caller.
func WithCooldown(store cooldown.Store, window time.Duration) Middleware {
	return func(h Handler) Handler {
		ns := CooldownNamespace(h.Name())
		return Wrap(h, func(ctx context.Context, c *Context) error {
			ok, err := store.TryAcquire(ctx, ns, c.Event.AuthorID, window)
			if err != nil {
				return fmt.Errorf("command %s: %w", h.Name(), err)
			}
			if !ok {
				left, err := store.Remaining(ctx, ns, c.Event.AuthorID)
				if err != nil || left <= 0 {
					return c.Reply(ctx, "Slow down! Try again in a moment.")
				}
				return c.Replyf(ctx, "Slow down! Try again in %s.", (left + time.Second - 1).Truncate(time.Second))
			}
			return h.Run(ctx, c)
		})
	}
}
