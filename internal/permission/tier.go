package permission

import (
	"fmt"
	"strings"
)

// Tier is the application-level authorization level of an actor.
// Tiers are totally ordered: User < Moderator < Owner.
type Tier int

const (
	User Tier = iota
	Moderator
	Owner
)

func (t Tier) String() string {
	switch t {
	case User:
		return "user"
	case Moderator:
		return "moderator"
	case Owner:
		return "owner"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier accepts the names produced by String, case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "":
		return User, nil
	case "moderator", "mod":
		return Moderator, nil
	case "owner":
		return Owner, nil
	}
	return User, fmt.Errorf("unknown tier %q", s)
}

// CheckTier reports whether actor is at least required.
func CheckTier(actor, required Tier) bool {
	return actor >= required
}
