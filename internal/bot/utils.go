package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/scriptbot/pkg/constants"
)

// maskSecret hides a bot token for logging, keeping its ends recognisable.
func maskSecret(token string) string {
	token = strings.TrimPrefix(strings.TrimSpace(token), "Bot ")
	if len(token) <= constants.MinSecretLengthForMasking {
		return "***"
	}
	return token[:constants.SecretMaskPrefixLength] + "***" + token[len(token)-constants.SecretMaskSuffixLength:]
}

// interactionUserID returns the invoking user in guilds and DMs.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
