package core

import (
	"context"
	"time"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"
)

type PingCommand struct {
	// Latency reports the transport's round trip, if it has one.
	Latency func() time.Duration
}

func (c *PingCommand) Name() string                   { return "ping" }
func (c *PingCommand) Description() string            { return "Check bot latency" }
func (c *PingCommand) Category() string               { return command.CategoryInformation }
func (c *PingCommand) Aliases() []string              { return nil }
func (c *PingCommand) BotPermissions() permission.Set { return 0 }
func (c *PingCommand) Tier() permission.Tier          { return permission.User }

func (c *PingCommand) Run(ctx context.Context, cc *command.Context) error {
	if c.Latency == nil {
		return cc.Reply(ctx, "Pong! 🏓")
	}
	return cc.Replyf(ctx, "Pong! 🏓 Latency: %dms", c.Latency().Milliseconds())
}
