package eco

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	mu    sync.Mutex
	texts []string
}

func (s *sent) Send(_ context.Context, _, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *sent) React(context.Context, string, string, string) error { return nil }

func (s *sent) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

func run(t *testing.T, h command.Handler, author string, args ...string) string {
	t.Helper()
	n := &sent{}
	c := &command.Context{
		Event:    command.Event{AuthorID: author, ChannelID: "c1"},
		Args:     args,
		Prefix:   ".",
		Notifier: n,
	}
	require.NoError(t, h.Run(context.Background(), c))
	return n.last()
}

func seed(t *testing.T, store ledger.Store, user string, wallet, bank int64) {
	t.Helper()
	_, err := store.AddBalance(context.Background(), user, ledger.Delta{Wallet: wallet, Bank: bank})
	require.NoError(t, err)
}

func balance(t *testing.T, store ledger.Store, user string) ledger.Entry {
	t.Helper()
	e, err := store.GetBalance(context.Background(), user)
	require.NoError(t, err)
	return e
}

func TestParseUserID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"<@123>", "123", true},
		{"<@!456>", "456", true},
		{"789", "789", true},
		{"<@>", "", false},
		{"@bob", "", false},
		{"<@12a>", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseUserID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBalance(t *testing.T) {
	store := ledger.NewMemoryStore()
	seed(t, store, "1", 50, 10)
	cmd := &BalanceCommand{Ledger: store, Money: "h"}

	out := run(t, cmd, "1")
	assert.Contains(t, out, "Wallet: 50h")
	assert.Contains(t, out, "Bank: 10h")
	assert.Contains(t, out, "Total: 60h")

	out = run(t, cmd, "1", "<@2>")
	assert.True(t, strings.HasPrefix(out, "<@2>'s balance"))
	assert.Contains(t, out, "Total: 0h")

	assert.Contains(t, run(t, cmd, "1", "nobody"), "Usage")
}

func TestPay(t *testing.T) {
	store := ledger.NewMemoryStore()
	seed(t, store, "1", 100, 0)
	cmd := &PayCommand{Ledger: store, Money: "h"}

	assert.Contains(t, run(t, cmd, "1", "<@!2>", "30"), "You paid <@2> 30h. Your wallet: 70h")
	assert.Equal(t, int64(70), balance(t, store, "1").Wallet)
	assert.Equal(t, int64(30), balance(t, store, "2").Wallet)

	assert.Equal(t, "You don't have enough money for that.", run(t, cmd, "1", "2", "500"))
	assert.Equal(t, int64(70), balance(t, store, "1").Wallet)

	assert.Equal(t, "The amount must be a positive whole number.", run(t, cmd, "1", "2", "-5"))
	assert.Equal(t, "The amount must be a positive whole number.", run(t, cmd, "1", "2", "lots"))
	assert.Equal(t, "You can't pay yourself.", run(t, cmd, "1", "<@1>", "5"))
	assert.Contains(t, run(t, cmd, "1", "2"), "Usage")

	assert.Contains(t, run(t, cmd, "1", "2", "all"), "Your wallet: 0h")
	assert.Equal(t, int64(100), balance(t, store, "2").Wallet)

	assert.Equal(t, "You don't have enough money for that.", run(t, cmd, "1", "2", "all"))
}

func TestPayOverflowKeepsSenderBalance(t *testing.T) {
	store := ledger.NewMemoryStore()
	seed(t, store, "1", ledger.MaxBalance, 0)
	seed(t, store, "2", 10, 0)
	cmd := &PayCommand{Ledger: store, Money: "h"}

	assert.Equal(t, "That would push the balance past the limit.", run(t, cmd, "2", "1", "10"))
	assert.Equal(t, int64(10), balance(t, store, "2").Wallet)
	assert.Equal(t, ledger.MaxBalance, balance(t, store, "1").Wallet)
}

func TestDepositWithdraw(t *testing.T) {
	store := ledger.NewMemoryStore()
	seed(t, store, "1", 80, 0)
	dep := &DepositCommand{Ledger: store, Money: "h"}
	with := &WithdrawCommand{Ledger: store, Money: "h"}

	out := run(t, dep, "1", "30")
	assert.Contains(t, out, "Moved 30h from wallet to bank.")
	assert.Equal(t, ledger.Entry{UserID: "1", Wallet: 50, Bank: 30}, balance(t, store, "1"))

	run(t, dep, "1", "all")
	assert.Equal(t, ledger.Entry{UserID: "1", Wallet: 0, Bank: 80}, balance(t, store, "1"))

	assert.Equal(t, "You don't have enough money for that.", run(t, dep, "1", "1"))

	out = run(t, with, "1", "20")
	assert.Contains(t, out, "Moved 20h from bank to wallet.")
	assert.Equal(t, ledger.Entry{UserID: "1", Wallet: 20, Bank: 60}, balance(t, store, "1"))

	assert.Equal(t, "You don't have enough money for that.", run(t, with, "1", "61"))
	assert.Equal(t, int64(80), balance(t, store, "1").Total())
}

func TestEcoAdmin(t *testing.T) {
	store := ledger.NewMemoryStore()
	cmd := &EcoCommand{Ledger: store, Money: "h"}

	assert.Contains(t, run(t, cmd, "owner", "add", "<@2>", "100"), "100h in wallet")
	assert.Contains(t, run(t, cmd, "owner", "add", "2", "40", "bank"), "40h in bank")
	assert.Contains(t, run(t, cmd, "owner", "remove", "2", "25"), "75h in wallet")
	assert.Equal(t, "You don't have enough money for that.", run(t, cmd, "owner", "remove", "2", "41", "bank"))
	assert.Equal(t, ledger.Entry{UserID: "2", Wallet: 75, Bank: 40}, balance(t, store, "2"))

	assert.Equal(t, "That would push the balance past the limit.", run(t, cmd, "owner", "add", "2", "9223372036854775807"))
	assert.Equal(t, int64(115), balance(t, store, "2").Total())

	assert.Contains(t, run(t, cmd, "owner", "steal", "2", "1"), "Usage")
	assert.Contains(t, run(t, cmd, "owner", "add", "2", "1", "pocket"), "Usage")
	assert.Contains(t, run(t, cmd, "owner", "add", "2"), "Usage")
}
