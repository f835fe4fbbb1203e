package ledger

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It has no atomic backend to lean on,
// so each user's entry is guarded by its own mutex and transfers take both
// locks in user-id order.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
}

type memEntry struct {
	mu     sync.Mutex
	wallet int64
	bank   int64
}

// NewMemoryStore returns an empty ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memEntry)}
}

func (s *MemoryStore) entry(userID string, create bool) *memEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok && create {
		e = &memEntry{}
		s.entries[userID] = e
	}
	return e
}

func (e *memEntry) apply(d Delta) error {
	w, b, err := next(e.wallet, e.bank, d)
	if err != nil {
		return err
	}
	e.wallet, e.bank = w, b
	return nil
}

func (e *memEntry) snapshot(userID string) Entry {
	return Entry{UserID: userID, Wallet: e.wallet, Bank: e.bank}
}

func (s *MemoryStore) AddBalance(ctx context.Context, userID string, d Delta) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	e := s.entry(userID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.apply(d); err != nil {
		return Entry{}, err
	}
	return e.snapshot(userID), nil
}

func (s *MemoryStore) Transfer(ctx context.Context, from, to string, amount int64, fromField, toField Field) (Entry, Entry, error) {
	if amount <= 0 {
		return Entry{}, Entry{}, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, Entry{}, err
	}
	src, dst := s.entry(from, true), s.entry(to, true)

	if from == to {
		src.mu.Lock()
		defer src.mu.Unlock()
	} else {
		first, second := src, dst
		if to < from {
			first, second = dst, src
		}
		first.mu.Lock()
		defer first.mu.Unlock()
		second.mu.Lock()
		defer second.mu.Unlock()
	}

	sw, sb, err := next(src.wallet, src.bank, Of(fromField, -amount))
	if err != nil {
		return Entry{}, Entry{}, err
	}
	if from == to {
		if sw, sb, err = next(sw, sb, Of(toField, amount)); err != nil {
			return Entry{}, Entry{}, err
		}
		src.wallet, src.bank = sw, sb
		return src.snapshot(from), src.snapshot(to), nil
	}
	dw, db, err := next(dst.wallet, dst.bank, Of(toField, amount))
	if err != nil {
		return Entry{}, Entry{}, err
	}
	src.wallet, src.bank = sw, sb
	dst.wallet, dst.bank = dw, db
	return src.snapshot(from), dst.snapshot(to), nil
}

func (s *MemoryStore) GetBalance(ctx context.Context, userID string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	e := s.entry(userID, false)
	if e == nil {
		return Entry{UserID: userID}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(userID), nil
}
