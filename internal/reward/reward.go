package reward

import (
	"context"
	"time"

	"github.com/keshon/economy-bot/internal/cooldown"
	"github.com/keshon/economy-bot/internal/ledger"

	"github.com/rs/zerolog"
)

// Namespace is the cooldown namespace for passive rewards.
const Namespace = "global:reward"

// Granter pays authors of ordinary messages now and then.
//
// Two gates apply in order: a random chance per message, then a per-author
// cooldown. The chance check runs first so most messages never reach the
// cooldown store.
type Granter struct {
	Cooldowns cooldown.Store
	Ledger    ledger.Store
	Table     Table
	Chance    float64
	Window    time.Duration
	Rand      Rand
}

// Grant is the outcome of one attempt.
type Grant struct {
	Label  string
	Amount int64
	Entry  ledger.Entry
}

// Try runs both gates for authorID and, if they pass, credits the wallet.
// ok is false when no reward was granted. Errors mean a gate or the ledger
// failed; in that case nothing was granted.
func (g *Granter) Try(ctx context.Context, authorID string) (Grant, bool, error) {
	r := g.Rand
	if r == nil {
		r = DefaultRand
	}
	if r.Float64() >= g.Chance {
		return Grant{}, false, nil
	}

	acquired, err := g.Cooldowns.TryAcquire(ctx, Namespace, authorID, g.Window)
	if err != nil || !acquired {
		return Grant{}, false, err
	}

	label, amount, err := g.Table.Draw(r)
	if err != nil {
		return Grant{}, false, err
	}
	entry, err := g.Ledger.AddBalance(ctx, authorID, ledger.Delta{Wallet: amount})
	if err != nil {
		return Grant{}, false, err
	}
	return Grant{Label: label, Amount: amount, Entry: entry}, true, nil
}

// Handle is the passive path for a non-command message: bots are skipped and
// failures are only logged.
func (g *Granter) Handle(ctx context.Context, logger zerolog.Logger, authorID string, authorBot bool) {
	if authorBot {
		return
	}
	grant, ok, err := g.Try(ctx, authorID)
	if err != nil {
		logger.Warn().Err(err).Str("user", authorID).Msg("passive reward skipped")
		return
	}
	if ok {
		logger.Debug().
			Str("user", authorID).
			Str("band", grant.Label).
			Int64("amount", grant.Amount).
			Int64("wallet", grant.Entry.Wallet).
			Msg("passive reward granted")
	}
}
