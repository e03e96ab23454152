package render

import (
	"fmt"
	"strings"

	"github.com/keepmind9/scriptbot/pkg/constants"
)

const (
	helpThumbnail   = "https://media1.tenor.com/m/j9Jhn5M1Xw0AAAAd/neuro-sama-ai.gif"
	notFoundImage   = "https://w0.peakpx.com/wallpaper/346/996/HD-wallpaper-love-live-sunshine-404-error-love-live-sunshine-anime-girl-anime.jpg"
	defaultHelpMode = "free"
)

// Help renders the usage card for the given text command prefix.
func Help(prefix string) Document {
	var b strings.Builder
	b.WriteString("Use these commands to interact with the bot:\n\n")
	b.WriteString("**Prefix Commands:**\n")
	fmt.Fprintf(&b, "`%ssearch <query> [mode] [filter=value ...]` - Search ScriptBlox. Example: `%ssearch arsenal paid`.\n", prefix, prefix)
	fmt.Fprintf(&b, "`%sbothelp` - Show this help.\n\n", prefix)
	b.WriteString("**Slash Commands:**\n")
	b.WriteString("`/search <query>` - Search scripts (ScriptBlox or Rscripts).\n")
	b.WriteString("`/fetch` - Browse the latest ScriptBlox scripts.\n")
	b.WriteString("`/trending` - Show trending scripts.\n")
	b.WriteString("`/script <id>` - Show one script.\n")
	b.WriteString("`/executors` - List executors.\n")
	b.WriteString("`/rscripts_fetch` - Browse the latest Rscripts scripts.\n")
	b.WriteString("`/rscripts_by_user <username>` - Scripts uploaded by an Rscripts user.\n")
	b.WriteString("`/bothelp` - Show this help.\n\n")
	fmt.Fprintf(&b, "Modes: `free`, `paid`. Default mode is `%s`.", defaultHelpMode)

	return Document{
		Title:        "🔍 Script Search Help",
		Description:  b.String(),
		Color:        ColorHelp,
		ThumbnailURL: helpThumbnail,
	}
}

// NotFound renders the empty-result card.
func NotFound(query, mode string) Document {
	desc := "No scripts found."
	switch {
	case query != "" && mode != "":
		desc = fmt.Sprintf("No scripts found for: `%s` in mode `%s`.", query, mode)
	case query != "":
		desc = fmt.Sprintf("No scripts found for: `%s`.", query)
	}
	return Document{
		Title:       "No Scripts Found",
		Description: desc,
		Color:       ColorError,
		ImageURL:    notFoundImage,
	}
}

// Searching renders the placeholder shown while the first page loads.
func Searching(what string) Document {
	desc := "Searching..."
	if what != "" {
		desc = fmt.Sprintf("Searching for `%s`...", what)
	}
	return Document{Title: "🔍 Script Search", Description: desc, Color: ColorCard}
}

// Failure renders an error message as a card.
func Failure(message string) Document {
	return Document{Title: "Error", Description: Truncate(message, constants.MaxDiscordMessageLength), Color: ColorError}
}
