package discord

import (
	"slices"

	"github.com/keshon/economy-bot/internal/permission"
)

// ModRoleSource tells which guild roles count as moderators.
type ModRoleSource interface {
	IsModRole(guildID string, roleIDs []string) bool
}

// Actor is what tier resolution needs to know about a message author.
type Actor struct {
	UserID     string
	GuildID    string
	RoleIDs    []string
	GuildOwner bool
	// Permissions are the author's effective permissions in the channel.
	Permissions permission.Set
}

// TierResolver maps a Discord member onto an application tier.
type TierResolver struct {
	Owners   []string
	ModRoles ModRoleSource
}

// Resolve returns Owner for configured owners; Moderator for the guild owner,
// administrators, server managers and holders of a moderator role; otherwise
// User.
func (r TierResolver) Resolve(a Actor) permission.Tier {
	if slices.Contains(r.Owners, a.UserID) {
		return permission.Owner
	}
	if a.GuildOwner ||
		a.Permissions.Has(permission.Administrator) ||
		a.Permissions.Has(permission.ManageGuild) {
		return permission.Moderator
	}
	if r.ModRoles != nil && r.ModRoles.IsModRole(a.GuildID, a.RoleIDs) {
		return permission.Moderator
	}
	return permission.User
}
