// Package discord connects a discordgo session to the dispatcher: inbound
// messages become command events, and replies go out through Notifier.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/dispatch"
	"github.com/keshon/economy-bot/internal/permission"
)

// Handler consumes events; *dispatch.Dispatcher is the production one.
type Handler interface {
	Handle(ctx context.Context, ev command.Event) dispatch.Outcome
}

// NewSession creates an unopened session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	dg.SyncEvents = false
	return dg, nil
}

// permissionReader reads effective channel permissions. *discordgo.Session
// checks its state cache first and falls back to the REST API.
type permissionReader interface {
	UserChannelPermissions(userID, channelID string, options ...discordgo.RequestOption) (int64, error)
}

// Bot feeds guild messages from a session into a Handler.
type Bot struct {
	dg      *discordgo.Session
	handler Handler
	tiers   TierResolver
	timeout time.Duration
}

func NewBot(dg *discordgo.Session, handler Handler, tiers TierResolver, timeout time.Duration) *Bot {
	return &Bot{dg: dg, handler: handler, tiers: tiers, timeout: timeout}
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessageCreate(ctx, s, m)
	})

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("discord bot is running")
}

// onMessageCreate runs on its own goroutine per event (SyncEvents is off).
func (b *Bot) onMessageCreate(parent context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State.User == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(parent, b.timeout)
	defer cancel()

	ev, err := b.event(ctx, s, s.State, s.State.User.ID, m.Message)
	if err != nil {
		log.Warn().Err(err).Str("guild", m.GuildID).Str("channel", m.ChannelID).
			Msg("skipping message: bot channel permissions unknown")
		return
	}
	b.handler.Handle(ctx, ev)
}

// event builds the command event for m. It fails when the bot's own channel
// permissions cannot be read: an unknown set must not be reported as missing
// permissions. Unreadable author permissions only cost the author the tiers
// granted by Discord permissions.
func (b *Bot) event(ctx context.Context, perms permissionReader, state *discordgo.State, botID string, m *discordgo.Message) (command.Event, error) {
	botPerms, err := perms.UserChannelPermissions(botID, m.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return command.Event{}, fmt.Errorf("bot permissions in %s: %w", m.ChannelID, err)
	}

	actor := Actor{UserID: m.Author.ID, GuildID: m.GuildID}
	if m.Member != nil {
		actor.RoleIDs = m.Member.Roles
	}
	if g, err := state.Guild(m.GuildID); err == nil && g != nil {
		actor.GuildOwner = g.OwnerID == m.Author.ID
	}
	if p, err := perms.UserChannelPermissions(m.Author.ID, m.ChannelID, discordgo.WithContext(ctx)); err == nil {
		actor.Permissions = permission.Set(p)
	} else {
		log.Debug().Err(err).Str("user", m.Author.ID).Msg("reading author channel permissions")
	}

	return ToEvent(m, permission.Set(botPerms), b.tiers.Resolve(actor)), nil
}

// ToEvent converts a Discord message into a command event.
func ToEvent(m *discordgo.Message, botPerms permission.Set, tier permission.Tier) command.Event {
	ev := command.Event{
		ID:             m.ID,
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		Content:        m.Content,
		BotPermissions: botPerms,
		ActorTier:      tier,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorName = m.Author.Username
		ev.AuthorBot = m.Author.Bot
	}
	return ev
}
