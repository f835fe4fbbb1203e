package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct{ texts []string }

func (c *capture) Send(_ context.Context, _, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

func (c *capture) React(context.Context, string, string, string) error { return nil }

type fixed struct {
	name, category string
	tier           permission.Tier
}

func (f fixed) Name() string                                { return f.name }
func (f fixed) Description() string                         { return f.name + " things" }
func (f fixed) Category() string                            { return f.category }
func (f fixed) Aliases() []string                           { return []string{f.name[:1] + "x"} }
func (f fixed) BotPermissions() permission.Set              { return 0 }
func (f fixed) Tier() permission.Tier                       { return f.tier }
func (f fixed) Run(context.Context, *command.Context) error { return nil }

func help(t *testing.T, tier permission.Tier, args ...string) string {
	t.Helper()
	reg := command.NewRegistry(false)
	h := &HelpCommand{Registry: reg}
	reg.MustRegister(
		h,
		fixed{"balance", command.CategoryEconomy, permission.User},
		fixed{"prefix", command.CategorySettings, permission.Moderator},
		fixed{"eco", command.CategoryAdmin, permission.Owner},
	)
	out := &capture{}
	c := &command.Context{
		Event:    command.Event{ChannelID: "c", ActorTier: tier},
		Args:     args,
		Prefix:   "!",
		Notifier: out,
	}
	require.NoError(t, h.Run(context.Background(), c))
	require.Len(t, out.texts, 1)
	return out.texts[0]
}

func TestHelpFiltersByTier(t *testing.T) {
	user := help(t, permission.User)
	assert.Contains(t, user, "`!balance`")
	assert.Contains(t, user, "`!help`")
	assert.NotContains(t, user, "`!prefix`")
	assert.NotContains(t, user, "`!eco`")

	mod := help(t, permission.Moderator)
	assert.Contains(t, mod, "`!prefix`")
	assert.NotContains(t, mod, "`!eco`")

	owner := help(t, permission.Owner)
	assert.Contains(t, owner, "`!eco`")
}

func TestHelpCategoryOrder(t *testing.T) {
	out := help(t, permission.Owner)
	info := strings.Index(out, command.CategoryInformation)
	eco := strings.Index(out, command.CategoryEconomy)
	settings := strings.Index(out, command.CategorySettings)
	admin := strings.Index(out, command.CategoryAdmin)
	assert.True(t, info < eco && eco < settings && settings < admin, out)
}

func TestHelpSingleCommand(t *testing.T) {
	out := help(t, permission.User, "bx")
	assert.Contains(t, out, "`!balance` - balance things")
	assert.Contains(t, out, "Aliases: bx")

	assert.Equal(t, "Unknown command `eco`.", help(t, permission.User, "eco"))
	assert.Contains(t, help(t, permission.Owner, "eco"), "Requires: owner")
}

func TestHelpHeader(t *testing.T) {
	assert.True(t, strings.HasPrefix(help(t, permission.User), "**Bot Help**"))

	reg := command.NewRegistry(false)
	h := &HelpCommand{Registry: reg, Project: "economy-bot"}
	reg.MustRegister(h)
	out := &capture{}
	c := &command.Context{Event: command.Event{ChannelID: "c"}, Prefix: ".", Notifier: out}
	require.NoError(t, h.Run(context.Background(), c))
	require.Len(t, out.texts, 1)
	assert.True(t, strings.HasPrefix(out.texts[0], "**economy-bot Help**"))
}

func TestHelpFlat(t *testing.T) {
	out := help(t, permission.User, "flat")
	assert.NotContains(t, out, command.CategoryEconomy)
	assert.Less(t, strings.Index(out, "`!balance`"), strings.Index(out, "`!help`"))
}

func TestPing(t *testing.T) {
	out := &capture{}
	c := &command.Context{Notifier: out}
	require.NoError(t, (&PingCommand{}).Run(context.Background(), c))
	require.NoError(t, (&PingCommand{Latency: func() time.Duration { return 42 * time.Millisecond }}).Run(context.Background(), c))
	assert.Equal(t, []string{"Pong! 🏓", "Pong! 🏓 Latency: 42ms"}, out.texts)
}
