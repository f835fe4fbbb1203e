package eco

import (
	"context"
	"fmt"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/permission"
)

type BalanceCommand struct {
	Ledger ledger.Store
	Money  Money
}

func (c *BalanceCommand) Name() string                   { return "balance" }
func (c *BalanceCommand) Description() string            { return "Show your balance or someone else's" }
func (c *BalanceCommand) Category() string               { return category }
func (c *BalanceCommand) Aliases() []string              { return []string{"bal", "money"} }
func (c *BalanceCommand) BotPermissions() permission.Set { return 0 }
func (c *BalanceCommand) Tier() permission.Tier          { return permission.User }

func (c *BalanceCommand) Run(ctx context.Context, cc *command.Context) error {
	target := cc.Event.AuthorID
	if len(cc.Args) > 0 {
		id, ok := ParseUserID(cc.Args[0])
		if !ok {
			return cc.Replyf(ctx, "Usage: `%s%s [@user]`", cc.Prefix, c.Name())
		}
		target = id
	}

	e, err := c.Ledger.GetBalance(ctx, target)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", target, err)
	}
	return cc.Replyf(ctx, "%s's balance\nWallet: %s\nBank: %s\nTotal: %s",
		Mention(target), c.Money.Format(e.Wallet), c.Money.Format(e.Bank), c.Money.Format(e.Total()))
}
