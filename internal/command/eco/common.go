// Package eco holds the economy commands. They only touch balances through
// ledger.Store deltas and transfers.
package eco

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/ledger"
)

const category = command.CategoryEconomy

// Money formats amounts with the currency symbol.
type Money string

func (m Money) Format(amount int64) string {
	return fmt.Sprintf("%d%s", amount, string(m))
}

// ParseUserID accepts <@id>, <@!id> or a bare numeric id.
func ParseUserID(arg string) (string, bool) {
	id := arg
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimSuffix(strings.TrimPrefix(id, "<@"), ">")
		id = strings.TrimPrefix(id, "!")
	}
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// Mention renders a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// parseAmount reads a positive amount, or "all"/"max" meaning available.
func parseAmount(arg string, available int64) (int64, error) {
	switch strings.ToLower(arg) {
	case "all", "max":
		if available <= 0 {
			return 0, ledger.ErrInsufficientFunds
		}
		return available, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(arg, ",", ""), 10, 64)
	if err != nil || n <= 0 {
		return 0, ledger.ErrInvalidAmount
	}
	return n, nil
}

func wantsAll(arg string) bool {
	switch strings.ToLower(arg) {
	case "all", "max":
		return true
	}
	return false
}

// replyLedgerError turns user-facing ledger errors into replies. Anything else
// is returned so the dispatcher reports it as a failure.
func replyLedgerError(ctx context.Context, c *command.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return c.Reply(ctx, "You don't have enough money for that.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return c.Reply(ctx, "The amount must be a positive whole number.")
	case errors.Is(err, ledger.ErrOverflow):
		return c.Reply(ctx, "That would push the balance past the limit.")
	}
	return err
}
