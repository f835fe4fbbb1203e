package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// messenger is the part of *discordgo.Session the notifier uses.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// limiterIdle is how long a channel's limiter may sit unused before it can be
// dropped.
const limiterIdle = 10 * time.Minute

type channelLimiter struct {
	*rate.Limiter
	lastUsed time.Time
}

// Notifier sends replies and reactions through a Discord session. Sends are
// paced per channel so a burst of commands cannot flood a channel; a send that
// cannot get a slot before ctx ends fails.
type Notifier struct {
	s     messenger
	limit rate.Limit
	burst int

	now func() time.Time

	mu       sync.Mutex
	channels map[string]*channelLimiter
	swept    time.Time
}

// NewNotifier paces each channel at perSecond messages with the given burst.
func NewNotifier(s messenger, perSecond float64, burst int) *Notifier {
	if burst < 1 {
		burst = 1
	}
	return &Notifier{
		s:        s,
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
		channels: make(map[string]*channelLimiter),
	}
}

func (n *Notifier) limiter(channelID string) *rate.Limiter {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if now.Sub(n.swept) >= limiterIdle {
		n.sweep(now)
	}
	l, ok := n.channels[channelID]
	if !ok {
		l = &channelLimiter{Limiter: rate.NewLimiter(n.limit, n.burst)}
		n.channels[channelID] = l
	}
	l.lastUsed = now
	return l.Limiter
}

// sweep drops limiters that have been idle for limiterIdle and have refilled,
// so a new limiter for that channel would behave the same. Callers hold mu.
func (n *Notifier) sweep(now time.Time) {
	n.swept = now
	for id, l := range n.channels {
		if now.Sub(l.lastUsed) >= limiterIdle && l.TokensAt(now) >= float64(n.burst) {
			delete(n.channels, id)
		}
	}
}

func (n *Notifier) Send(ctx context.Context, channelID, text string) error {
	if err := n.limiter(channelID).Wait(ctx); err != nil {
		return err
	}
	_, err := n.s.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (n *Notifier) React(ctx context.Context, channelID, messageID, emoji string) error {
	return n.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}
