package eco

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/permission"
)

// EcoCommand lets owners add or remove money. Changes are deltas, so they
// compose with whatever else is happening to the same user.
type EcoCommand struct {
	Ledger ledger.Store
	Money  Money
}

func (c *EcoCommand) Name() string                   { return "eco" }
func (c *EcoCommand) Description() string            { return "Add or remove money from a user (owner only)" }
func (c *EcoCommand) Category() string               { return command.CategoryAdmin }
func (c *EcoCommand) Aliases() []string              { return nil }
func (c *EcoCommand) BotPermissions() permission.Set { return 0 }
func (c *EcoCommand) Tier() permission.Tier          { return permission.Owner }

func (c *EcoCommand) Run(ctx context.Context, cc *command.Context) error {
	usage := fmt.Sprintf("Usage: `%s%s <add|remove> <@user> <amount> [wallet|bank]`", cc.Prefix, c.Name())
	if len(cc.Args) < 3 {
		return cc.Reply(ctx, usage)
	}

	var sign int64
	switch strings.ToLower(cc.Args[0]) {
	case "add", "give":
		sign = 1
	case "remove", "take":
		sign = -1
	default:
		return cc.Reply(ctx, usage)
	}
	user, ok := ParseUserID(cc.Args[1])
	if !ok {
		return cc.Reply(ctx, usage)
	}
	amount, err := parseAmount(cc.Args[2], 0)
	if err != nil {
		return replyLedgerError(ctx, cc, err)
	}
	field := ledger.Wallet
	if len(cc.Args) > 3 {
		if field, err = ledger.ParseField(cc.Args[3]); err != nil {
			return cc.Reply(ctx, usage)
		}
	}

	e, err := c.Ledger.AddBalance(ctx, user, ledger.Of(field, sign*amount))
	if err != nil {
		return replyLedgerError(ctx, cc, fmt.Errorf("eco %s %s: %w", cc.Args[0], user, err))
	}
	return cc.Replyf(ctx, "%s now has %s in wallet and %s in bank.",
		Mention(user), c.Money.Format(e.Wallet), c.Money.Format(e.Bank))
}
