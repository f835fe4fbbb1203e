package guild

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"
	"github.com/keshon/economy-bot/internal/settings"
)

type ModRoleCommand struct {
	Settings *settings.Store
}

func (c *ModRoleCommand) Name() string                   { return "modrole" }
func (c *ModRoleCommand) Description() string            { return "Manage the roles treated as moderators" }
func (c *ModRoleCommand) Category() string               { return command.CategorySettings }
func (c *ModRoleCommand) Aliases() []string              { return []string{"modroles"} }
func (c *ModRoleCommand) BotPermissions() permission.Set { return 0 }
func (c *ModRoleCommand) Tier() permission.Tier          { return permission.Owner }

func (c *ModRoleCommand) Run(ctx context.Context, cc *command.Context) error {
	guildID := cc.Event.GuildID
	if guildID == "" {
		return cc.Reply(ctx, "This command only works in a server.")
	}
	usage := fmt.Sprintf("Usage: `%s%s <add|remove|list> [@role]`", cc.Prefix, c.Name())
	if len(cc.Args) == 0 {
		return cc.Reply(ctx, usage)
	}

	sub := strings.ToLower(cc.Args[0])
	if sub == "list" {
		roles, err := c.Settings.ModRoles(guildID)
		if err != nil {
			return fmt.Errorf("list mod roles: %w", err)
		}
		if len(roles) == 0 {
			return cc.Reply(ctx, "No moderator roles configured.")
		}
		mentions := make([]string, len(roles))
		for i, id := range roles {
			mentions[i] = "<@&" + id + ">"
		}
		return cc.Reply(ctx, "Moderator roles: "+strings.Join(mentions, ", "))
	}

	if len(cc.Args) < 2 {
		return cc.Reply(ctx, usage)
	}
	roleID, ok := ParseRoleID(cc.Args[1])
	if !ok {
		return cc.Reply(ctx, usage)
	}

	switch sub {
	case "add":
		added, err := c.Settings.AddModRole(guildID, roleID)
		if err != nil {
			return fmt.Errorf("add mod role: %w", err)
		}
		if !added {
			return cc.Replyf(ctx, "<@&%s> is already a moderator role.", roleID)
		}
		return cc.Replyf(ctx, "<@&%s> is now a moderator role.", roleID)
	case "remove":
		removed, err := c.Settings.RemoveModRole(guildID, roleID)
		if err != nil {
			return fmt.Errorf("remove mod role: %w", err)
		}
		if !removed {
			return cc.Replyf(ctx, "<@&%s> is not a moderator role.", roleID)
		}
		return cc.Replyf(ctx, "<@&%s> is no longer a moderator role.", roleID)
	}
	return cc.Reply(ctx, usage)
}

// ParseRoleID accepts <@&id> or a bare numeric id.
func ParseRoleID(arg string) (string, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@&"), ">")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
