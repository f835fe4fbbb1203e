// Package cooldown rate-limits actions per key with an atomic
// set-if-absent-with-expiry primitive.
package cooldown

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps backend failures. Reward paths must treat it as a denial.
	ErrUnavailable = errors.New("cooldown store unavailable")
	// ErrInvalidWindow is returned for non-positive windows.
	ErrInvalidWindow = errors.New("cooldown window must be positive")
)

// Store is a shared cooldown table.
type Store interface {
	// TryAcquire records (namespace, subject) for window and returns true if no
	// unexpired record existed. Otherwise it returns false and changes nothing.
	// Concurrent calls for one key have at most one winner per window.
	TryAcquire(ctx context.Context, namespace, subject string, window time.Duration) (bool, error)
	// Remaining reports how long (namespace, subject) stays held; zero if free.
	Remaining(ctx context.Context, namespace, subject string) (time.Duration, error)
}

// Key is the backend key for a namespace and subject.
func Key(namespace, subject string) string {
	return namespace + ":" + subject
}
