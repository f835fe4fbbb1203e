// Package core holds commands every deployment gets: help and ping.
package core

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"
)

type HelpCommand struct {
	Registry *command.Registry
	// Project names the bot in the help header.
	Project string
}

func (c *HelpCommand) Name() string                   { return "help" }
func (c *HelpCommand) Description() string            { return "Get a list of available commands" }
func (c *HelpCommand) Category() string               { return command.CategoryInformation }
func (c *HelpCommand) Aliases() []string              { return []string{"h", "commands"} }
func (c *HelpCommand) BotPermissions() permission.Set { return 0 }
func (c *HelpCommand) Tier() permission.Tier          { return permission.User }

// Run lists the commands the author may use, grouped by category, or as a
// flat list with "help flat". "help <command>" shows one command.
func (c *HelpCommand) Run(ctx context.Context, cc *command.Context) error {
	visible := c.visible(cc.Event.ActorTier)

	if len(cc.Args) > 0 && !strings.EqualFold(cc.Args[0], "flat") {
		h, ok := c.Registry.Resolve(cc.Args[0])
		if !ok || !permission.CheckTier(cc.Event.ActorTier, h.Tier()) {
			return cc.Replyf(ctx, "Unknown command `%s`.", cc.Args[0])
		}
		return cc.Reply(ctx, describe(cc.Prefix, h))
	}

	var body string
	if len(cc.Args) > 0 {
		body = buildFlat(cc.Prefix, visible)
	} else {
		body = buildByCategory(cc.Prefix, visible)
	}
	return cc.Replyf(ctx, "**%s Help**\n\n%s", cmp.Or(c.Project, "Bot"), body)
}

func (c *HelpCommand) visible(tier permission.Tier) []command.Handler {
	var out []command.Handler
	for _, h := range c.Registry.All() {
		if permission.CheckTier(tier, h.Tier()) {
			out = append(out, h)
		}
	}
	return out
}

func describe(prefix string, h command.Handler) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "`%s%s` - %s", prefix, h.Name(), h.Description())
	if aliases := h.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(&sb, "\nAliases: %s", strings.Join(aliases, ", "))
	}
	if h.Tier() > permission.User {
		fmt.Fprintf(&sb, "\nRequires: %s", h.Tier())
	}
	return sb.String()
}

func buildByCategory(prefix string, handlers []command.Handler) string {
	byCategory := make(map[string][]command.Handler)
	var categories []string
	for _, h := range handlers {
		cat := h.Category()
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], h)
	}
	command.SortCategories(categories)

	var sb strings.Builder
	for _, cat := range categories {
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, h := range byCategory[cat] {
			fmt.Fprintf(&sb, "`%s%s` - %s\n", prefix, h.Name(), h.Description())
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func buildFlat(prefix string, handlers []command.Handler) string {
	var sb strings.Builder
	for _, h := range handlers {
		fmt.Fprintf(&sb, "`%s%s` - %s\n", prefix, h.Name(), h.Description())
	}
	return strings.TrimRight(sb.String(), "\n")
}
