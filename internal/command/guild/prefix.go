// Package guild holds per-server configuration commands.
package guild

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"
	"github.com/keshon/economy-bot/internal/settings"
)

// PrefixCommand shows the prefix to anyone and lets moderators change it.
type PrefixCommand struct {
	Settings *settings.Store
	Default  string
}

func (c *PrefixCommand) Name() string                   { return "prefix" }
func (c *PrefixCommand) Description() string            { return "Show or change the command prefix" }
func (c *PrefixCommand) Category() string               { return command.CategorySettings }
func (c *PrefixCommand) Aliases() []string              { return nil }
func (c *PrefixCommand) BotPermissions() permission.Set { return 0 }
func (c *PrefixCommand) Tier() permission.Tier          { return permission.User }

func (c *PrefixCommand) Run(ctx context.Context, cc *command.Context) error {
	guildID := cc.Event.GuildID
	if guildID == "" {
		return cc.Reply(ctx, "This command only works in a server.")
	}
	if len(cc.Args) == 0 {
		return cc.Replyf(ctx, "Current prefix: `%s`", cc.Prefix)
	}
	if !permission.CheckTier(cc.Event.ActorTier, permission.Moderator) {
		return cc.Reply(ctx, "Only moderators can change the prefix.")
	}

	next := cc.Args[0]
	if strings.EqualFold(next, "reset") {
		next = ""
	}
	if err := c.Settings.SetPrefix(guildID, next); err != nil {
		if errors.Is(err, settings.ErrInvalidPrefix) {
			return cc.Reply(ctx, "Prefix must be 1-5 characters without spaces.")
		}
		return fmt.Errorf("set prefix: %w", err)
	}
	if next == "" {
		next = c.Default
	}
	return cc.Replyf(ctx, "Prefix is now `%s`", next)
}
