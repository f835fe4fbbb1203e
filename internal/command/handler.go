// Package command defines what a chat command is, what it receives when it
// runs, and the registry the dispatcher resolves invocations against.
package command

import (
	"context"
	"fmt"

	"github.com/keshon/economy-bot/internal/permission"
	"github.com/keshon/economy-bot/pkg/cmd"
)

// Handler is a registered command. Every handler states the platform
// permissions it needs on top of permission.Base and the minimum actor tier.
type Handler interface {
	Name() string
	Description() string
	Category() string
	Aliases() []string
	BotPermissions() permission.Set
	Tier() permission.Tier
	Run(ctx context.Context, c *Context) error
}

// Event is one inbound chat message as seen by the core. Transports fill it
// in; nothing downstream mutates it.
type Event struct {
	ID         string
	AuthorID   string
	AuthorName string
	AuthorBot  bool
	GuildID    string
	ChannelID  string
	Content    string

	// BotPermissions is what the bot itself holds in ChannelID.
	BotPermissions permission.Set
	// ActorTier is the author's application tier.
	ActorTier permission.Tier
}

// Notifier is the outbound side of a transport.
type Notifier interface {
	Send(ctx context.Context, channelID, text string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// Context is what a handler gets for one invocation.
type Context struct {
	Event      Event
	Invocation cmd.Invocation
	Args       []string
	Prefix     string
	Notifier   Notifier
}

// Reply sends text to the channel the event came from.
func (c *Context) Reply(ctx context.Context, text string) error {
	return c.Notifier.Send(ctx, c.Event.ChannelID, text)
}

// Replyf is Reply with fmt.Sprintf formatting.
func (c *Context) Replyf(ctx context.Context, format string, args ...any) error {
	return c.Reply(ctx, fmt.Sprintf(format, args...))
}
