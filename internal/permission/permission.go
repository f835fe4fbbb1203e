// Package permission resolves whether a command may run: the platform
// permissions the bot holds in a channel, and the application tier of the actor.
package permission

import (
	"fmt"
	"math/bits"

	"github.com/bwmarrin/discordgo"
)

// Set is a platform permission bitset using Discord's bit layout.
type Set int64

const (
	ViewChannel        = Set(discordgo.PermissionViewChannel)
	ReadMessageHistory = Set(discordgo.PermissionReadMessageHistory)
	SendMessages       = Set(discordgo.PermissionSendMessages)
	EmbedLinks         = Set(discordgo.PermissionEmbedLinks)
	AddReactions       = Set(discordgo.PermissionAddReactions)
	AttachFiles        = Set(discordgo.PermissionAttachFiles)
	ManageMessages     = Set(discordgo.PermissionManageMessages)
	UseExternalEmojis  = Set(discordgo.PermissionUseExternalEmojis)
	MentionEveryone    = Set(discordgo.PermissionMentionEveryone)
	ManageRoles        = Set(discordgo.PermissionManageRoles)
	ManageGuild        = Set(discordgo.PermissionManageGuild)
	Administrator      = Set(discordgo.PermissionAdministrator)
)

// Base is what the bot needs in a channel for any command to work at all.
const Base = ViewChannel | ReadMessageHistory | SendMessages | EmbedLinks | AddReactions

var names = map[Set]string{
	ViewChannel:        "View Channel",
	ReadMessageHistory: "Read Message History",
	SendMessages:       "Send Messages",
	EmbedLinks:         "Embed Links",
	AddReactions:       "Add Reactions",
	AttachFiles:        "Attach Files",
	ManageMessages:     "Manage Messages",
	UseExternalEmojis:  "Use External Emojis",
	MentionEveryone:    "Mention Everyone",
	ManageRoles:        "Manage Roles",
	ManageGuild:        "Manage Server",
	Administrator:      "Administrator",
}

// Has reports whether every bit of p is present in s.
func (s Set) Has(p Set) bool {
	return s&p == p
}

// Missing returns the bits of required that actor lacks.
//
// An actor holding Administrator is not treated specially: Discord already
// resolves channel permissions to the full set for administrators.
func Missing(actor, required Set) Set {
	return required &^ actor
}

// Names renders the bits of s in ascending bit order.
func Names(s Set) []string {
	var out []string
	for v := uint64(s); v != 0; v &= v - 1 {
		bit := Set(1) << bits.TrailingZeros64(v)
		name, ok := names[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", int64(bit))
		}
		out = append(out, name)
	}
	return out
}
