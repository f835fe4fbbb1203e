package eco

import (
	"context"
	"fmt"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/permission"
)

type PayCommand struct {
	Ledger ledger.Store
	Money  Money
}

func (c *PayCommand) Name() string                   { return "pay" }
func (c *PayCommand) Description() string            { return "Send money from your wallet to another user" }
func (c *PayCommand) Category() string               { return category }
func (c *PayCommand) Aliases() []string              { return []string{"give"} }
func (c *PayCommand) BotPermissions() permission.Set { return 0 }
func (c *PayCommand) Tier() permission.Tier          { return permission.User }

func (c *PayCommand) Run(ctx context.Context, cc *command.Context) error {
	if len(cc.Args) < 2 {
		return cc.Replyf(ctx, "Usage: `%s%s <@user> <amount|all>`", cc.Prefix, c.Name())
	}
	to, ok := ParseUserID(cc.Args[0])
	if !ok {
		return cc.Replyf(ctx, "Usage: `%s%s <@user> <amount|all>`", cc.Prefix, c.Name())
	}
	from := cc.Event.AuthorID
	if to == from {
		return cc.Reply(ctx, "You can't pay yourself.")
	}

	var available int64
	if wantsAll(cc.Args[1]) {
		e, err := c.Ledger.GetBalance(ctx, from)
		if err != nil {
			return fmt.Errorf("pay: %w", err)
		}
		available = e.Wallet
	}
	amount, err := parseAmount(cc.Args[1], available)
	if err != nil {
		return replyLedgerError(ctx, cc, err)
	}

	src, _, err := c.Ledger.Transfer(ctx, from, to, amount, ledger.Wallet, ledger.Wallet)
	if err != nil {
		return replyLedgerError(ctx, cc, fmt.Errorf("pay %s -> %s: %w", from, to, err))
	}
	return cc.Replyf(ctx, "You paid %s %s. Your wallet: %s",
		Mention(to), c.Money.Format(amount), c.Money.Format(src.Wallet))
}
