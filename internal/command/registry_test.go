package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keshon/economy-bot/internal/cooldown"
	"github.com/keshon/economy-bot/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	name    string
	aliases []string
	runs    int
	err     error
}

func (h *stubHandler) Name() string                   { return h.name }
func (h *stubHandler) Description() string            { return "stub " + h.name }
func (h *stubHandler) Category() string               { return "test" }
func (h *stubHandler) Aliases() []string              { return h.aliases }
func (h *stubHandler) BotPermissions() permission.Set { return 0 }
func (h *stubHandler) Tier() permission.Tier          { return permission.User }
func (h *stubHandler) Run(ctx context.Context, c *Context) error {
	h.runs++
	return h.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	react []string
}

func (n *recordingNotifier) Send(ctx context.Context, channelID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return nil
}

func (n *recordingNotifier) React(ctx context.Context, channelID, messageID, emoji string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.react = append(n.react, emoji)
	return nil
}

func TestRegistryResolveByNameAndAlias(t *testing.T) {
	r := NewRegistry(false)
	bal := &stubHandler{name: "balance", aliases: []string{"bal", "money"}}
	pay := &stubHandler{name: "pay"}
	r.MustRegister(bal, pay)

	for _, name := range []string{"balance", "bal", "money", "BAL", "Balance"} {
		h, ok := r.Resolve(name)
		require.True(t, ok, name)
		assert.Same(t, bal, h, name)
	}
	h, ok := r.Resolve("pay")
	require.True(t, ok)
	assert.Same(t, pay, h)

	_, ok = r.Resolve("withdraw")
	assert.False(t, ok)
}

func TestRegistryCaseSensitive(t *testing.T) {
	r := NewRegistry(true)
	r.MustRegister(&stubHandler{name: "balance"})

	_, ok := r.Resolve("balance")
	assert.True(t, ok)
	_, ok = r.Resolve("Balance")
	assert.False(t, ok)
}

func TestRegistryDuplicates(t *testing.T) {
	tests := []struct {
		name   string
		second *stubHandler
	}{
		{"same name", &stubHandler{name: "balance"}},
		{"alias equals name", &stubHandler{name: "wallet", aliases: []string{"balance"}}},
		{"name equals alias", &stubHandler{name: "bal"}},
		{"alias equals alias", &stubHandler{name: "cash", aliases: []string{"money"}}},
		{"case folded", &stubHandler{name: "BALANCE"}},
		{"self collision", &stubHandler{name: "dep", aliases: []string{"dep"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(false)
			require.NoError(t, r.Register(&stubHandler{name: "balance", aliases: []string{"bal", "money"}}))

			err := r.Register(tt.second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDuplicateName))
			assert.Len(t, r.All(), 1)
		})
	}
}

func TestRegistryFailedRegisterLeavesNoPartialAliases(t *testing.T) {
	r := NewRegistry(false)
	r.MustRegister(&stubHandler{name: "pay"})

	err := r.Register(&stubHandler{name: "deposit", aliases: []string{"dep", "pay"}})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, ok := r.Resolve("deposit")
	assert.False(t, ok)
	_, ok = r.Resolve("dep")
	assert.False(t, ok)
}

func TestRegistryEmptyName(t *testing.T) {
	r := NewRegistry(false)
	assert.Error(t, r.Register(&stubHandler{name: ""}))
}

func TestMustRegisterPanics(t *testing.T) {
	r := NewRegistry(false)
	assert.Panics(t, func() {
		r.MustRegister(&stubHandler{name: "a"}, &stubHandler{name: "a"})
	})
}

func TestRegistryAllSortedUnique(t *testing.T) {
	r := NewRegistry(false)
	r.MustRegister(
		&stubHandler{name: "withdraw", aliases: []string{"with"}},
		&stubHandler{name: "balance", aliases: []string{"bal"}},
		&stubHandler{name: "pay"},
	)
	var names []string
	for _, h := range r.All() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"balance", "pay", "withdraw"}, names)
}

func TestWrapAndRoot(t *testing.T) {
	inner := &stubHandler{name: "pay", aliases: []string{"give"}}
	var order []string
	mw := func(tag string) Middleware {
		return func(h Handler) Handler {
			return Wrap(h, func(ctx context.Context, c *Context) error {
				order = append(order, tag)
				return h.Run(ctx, c)
			})
		}
	}
	h := Apply(inner, mw("first"), mw("second"))

	assert.Equal(t, "pay", h.Name())
	assert.Equal(t, []string{"give"}, h.Aliases())
	assert.Same(t, inner, Root(h))

	require.NoError(t, h.Run(context.Background(), &Context{}))
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, 1, inner.runs)
}

func TestWithCommandLoggerPassesError(t *testing.T) {
	boom := errors.New("boom")
	inner := &stubHandler{name: "pay", err: boom}
	h := Apply(inner, WithCommandLogger())

	err := h.Run(context.Background(), &Context{Event: Event{AuthorID: "u1"}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inner.runs)
}

func TestWithCooldown(t *testing.T) {
	now := time.Unix(1_000, 0)
	store := cooldown.NewMemoryStoreWithClock(func() time.Time { return now })
	inner := &stubHandler{name: "pay"}
	h := Apply(inner, WithCooldown(store, 5*time.Second))
	n := &recordingNotifier{}
	c := &Context{Event: Event{AuthorID: "u1", ChannelID: "c1"}, Notifier: n}
	ctx := context.Background()

	require.NoError(t, h.Run(ctx, c))
	require.NoError(t, h.Run(ctx, c))
	assert.Equal(t, 1, inner.runs)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Slow down! Try again in 5s.", n.sent[0])

	other := &Context{Event: Event{AuthorID: "u2", ChannelID: "c1"}, Notifier: n}
	require.NoError(t, h.Run(ctx, other))
	assert.Equal(t, 2, inner.runs)

	now = now.Add(5 * time.Second)
	require.NoError(t, h.Run(ctx, c))
	assert.Equal(t, 3, inner.runs)
}

type failingStore struct{}

func (failingStore) TryAcquire(ctx context.Context, namespace, subject string, window time.Duration) (bool, error) {
	return false, cooldown.ErrUnavailable
}

func (failingStore) Remaining(ctx context.Context, namespace, subject string) (time.Duration, error) {
	return 0, cooldown.ErrUnavailable
}

func TestWithCooldownStoreFailure(t *testing.T) {
	inner := &stubHandler{name: "pay"}
	h := Apply(inner, WithCooldown(failingStore{}, time.Second))

	err := h.Run(context.Background(), &Context{Event: Event{AuthorID: "u1"}, Notifier: &recordingNotifier{}})
	assert.ErrorIs(t, err, cooldown.ErrUnavailable)
	assert.Zero(t, inner.runs)
}
