// Package ledger keeps per-user wallet and bank balances. Balances only change
// through atomic deltas and transfers; nothing reads a balance and writes it
// back.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// MaxBalance bounds wallet plus bank of one entry, so Total never overflows.
const MaxBalance int64 = math.MaxInt64

var (
	// ErrInsufficientFunds means a field would have gone negative. No state changed.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount means a non-positive transfer amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrOverflow means the entry would exceed MaxBalance. No state changed.
	ErrOverflow = errors.New("balance limit exceeded")
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("ledger store unavailable")
)

// Field selects one of the two balances of an entry.
type Field int

const (
	Wallet Field = iota
	Bank
)

func (f Field) String() string {
	switch f {
	case Wallet:
		return "wallet"
	case Bank:
		return "bank"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

func (f Field) column() string {
	if f == Bank {
		return "bank"
	}
	return "wallet"
}

// ParseField accepts "wallet" or "bank".
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wallet", "":
		return Wallet, nil
	case "bank":
		return Bank, nil
	}
	return Wallet, fmt.Errorf("unknown balance field %q", s)
}

// Entry is one user's balances. Both fields are never negative.
type Entry struct {
	UserID string
	Wallet int64
	Bank   int64
}

// Total is wallet plus bank.
func (e Entry) Total() int64 { return e.Wallet + e.Bank }

// Get returns the value of f.
func (e Entry) Get(f Field) int64 {
	if f == Bank {
		return e.Bank
	}
	return e.Wallet
}

// Delta is a signed change to both balances.
type Delta struct {
	Wallet int64
	Bank   int64
}

// Of builds a delta touching a single field.
func Of(f Field, amount int64) Delta {
	if f == Bank {
		return Delta{Bank: amount}
	}
	return Delta{Wallet: amount}
}

// next returns the balances after applying d to wallet and bank, which must
// already be in range.
func next(wallet, bank int64, d Delta) (int64, int64, error) {
	if d.Wallet < -wallet || d.Bank < -bank {
		return 0, 0, ErrInsufficientFunds
	}
	if d.Wallet > MaxBalance-wallet || d.Bank > MaxBalance-bank {
		return 0, 0, ErrOverflow
	}
	w, b := wallet+d.Wallet, bank+d.Bank
	if w > MaxBalance-b {
		return 0, 0, ErrOverflow
	}
	return w, b, nil
}

// totalLimit is the largest wallet+bank an entry may hold before d is
// applied. ok is false when no entry can take d.
func totalLimit(d Delta) (limit int64, ok bool) {
	switch {
	case d.Wallet > 0 && d.Bank > MaxBalance-d.Wallet:
		return 0, false
	case d.Wallet < 0 && d.Bank < 0:
		return MaxBalance, true
	}
	if sum := d.Wallet + d.Bank; sum > 0 {
		return MaxBalance - sum, true
	}
	return MaxBalance, true
}

// Store is the ledger contract. Concurrent calls touching the same user are
// serialized by the store so that every mutation is reflected.
type Store interface {
	// AddBalance applies d to userID, creating the entry if needed. If either
	// field would become negative it returns ErrInsufficientFunds, and if the
	// entry would exceed MaxBalance it returns ErrOverflow. Either way nothing
	// changes.
	AddBalance(ctx context.Context, userID string, d Delta) (Entry, error)
	// Transfer moves amount from from.fromField to to.toField as one unit. On
	// any error neither entry changes.
	Transfer(ctx context.Context, from, to string, amount int64, fromField, toField Field) (Entry, Entry, error)
	// GetBalance reads userID without creating it; absent users have zero balances.
	GetBalance(ctx context.Context, userID string) (Entry, error)
}
