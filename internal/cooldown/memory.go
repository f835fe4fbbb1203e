package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MemoryStore is a process-local Store for single-instance runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock returns an empty store reading time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{expires: make(map[string]time.Time), now: now}
}

func (s *MemoryStore) TryAcquire(ctx context.Context, namespace, subject string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, ErrInvalidWindow
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := Key(namespace, subject)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(window)
	return true, nil
}

func (s *MemoryStore) Remaining(ctx context.Context, namespace, subject string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[Key(namespace, subject)]
	if !ok || !now.Before(exp) {
		return 0, nil
	}
	return exp.Sub(now), nil
}

// Purge drops expired keys and returns how many were removed.
func (s *MemoryStore) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
			n++
		}
	}
	return n
}

// RunJanitor purges expired keys every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("cooldown janitor")
			}
		}
	}
}
