package eco

import (
	"context"
	"fmt"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/permission"
)

// move transfers the author's money between their own wallet and bank.
func move(ctx context.Context, cc *command.Context, store ledger.Store, money Money, name string, from, to ledger.Field) error {
	if len(cc.Args) < 1 {
		return cc.Replyf(ctx, "Usage: `%s%s <amount|all>`", cc.Prefix, name)
	}
	user := cc.Event.AuthorID

	var available int64
	if wantsAll(cc.Args[0]) {
		e, err := store.GetBalance(ctx, user)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		available = e.Get(from)
	}
	amount, err := parseAmount(cc.Args[0], available)
	if err != nil {
		return replyLedgerError(ctx, cc, err)
	}

	e, _, err := store.Transfer(ctx, user, user, amount, from, to)
	if err != nil {
		return replyLedgerError(ctx, cc, fmt.Errorf("%s %d: %w", name, amount, err))
	}
	return cc.Replyf(ctx, "Moved %s from %s to %s.\nWallet: %s\nBank: %s",
		money.Format(amount), from, to, money.Format(e.Wallet), money.Format(e.Bank))
}

type DepositCommand struct {
	Ledger ledger.Store
	Money  Money
}

func (c *DepositCommand) Name() string                   { return "deposit" }
func (c *DepositCommand) Description() string            { return "Move money from your wallet to the bank" }
func (c *DepositCommand) Category() string               { return category }
func (c *DepositCommand) Aliases() []string              { return []string{"dep"} }
func (c *DepositCommand) BotPermissions() permission.Set { return 0 }
func (c *DepositCommand) Tier() permission.Tier          { return permission.User }

func (c *DepositCommand) Run(ctx context.Context, cc *command.Context) error {
	return move(ctx, cc, c.Ledger, c.Money, c.Name(), ledger.Wallet, ledger.Bank)
}

type WithdrawCommand struct {
	Ledger ledger.Store
	Money  Money
}

func (c *WithdrawCommand) Name() string                   { return "withdraw" }
func (c *WithdrawCommand) Description() string            { return "Move money from the bank to your wallet" }
func (c *WithdrawCommand) Category() string               { return category }
func (c *WithdrawCommand) Aliases() []string              { return []string{"with"} }
func (c *WithdrawCommand) BotPermissions() permission.Set { return 0 }
func (c *WithdrawCommand) Tier() permission.Tier          { return permission.User }

func (c *WithdrawCommand) Run(ctx context.Context, cc *command.Context) error {
	return move(ctx, cc, c.Ledger, c.Money, c.Name(), ledger.Bank, ledger.Wallet)
}
