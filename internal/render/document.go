// Package render maps script records into platform-neutral display documents.
//
// Every function here is pure given the Renderer's clock, so rendering the
// same records and page metadata twice yields identical documents. Missing
// record fields are replaced with defaults rather than failing.
package render

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/keepmind9/scriptbot/pkg/constants"
)

// Colours used by the cards.
const (
	ColorCard  = 0x206694
	ColorHelp  = 0x3498db
	ColorError = 0xff0000
)

// FallbackImageURL is shown when a record's image URL is not well formed.
const FallbackImageURL = "https://c.tenor.com/jnINmQlMNbsAAAAC/tenor.gif"

// Unknown marks a total page count the source did not report.
const Unknown = 0

// Document is a rich embed independent of any chat platform.
type Document struct {
	Title        string
	URL          string
	Description  string
	Color        int
	Fields       []Field
	ImageURL     string
	ThumbnailURL string
	AuthorName   string
	AuthorIcon   string
	Footer       string
	FooterIcon   string
}

// Field is one labelled value of a Document.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Link is an external URL offered next to a card.
type Link struct {
	Label string
	URL   string
}

// Card is a rendered page: the document plus its content-specific actions.
type Card struct {
	Document Document
	Links    []Link
	// Copy is the full content sent privately when the copy action is used.
	// Empty means no copy action.
	Copy string
}

// Truncate caps s at max runes, replacing the tail with "..." when cut.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return strings.Repeat(".", max)
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// IsWellFormedURL reports whether raw is an absolute http(s) URL.
func IsWellFormedURL(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ImageOrFallback returns raw when well formed, FallbackImageURL otherwise.
func ImageOrFallback(raw string) string {
	if IsWellFormedURL(raw) {
		return raw
	}
	return FallbackImageURL
}

// PageLabel renders "X/Y", using "?" for an unknown total.
func PageLabel(page, total int) string {
	if total == Unknown {
		return fmt.Sprintf("%d/?", page)
	}
	return fmt.Sprintf("%d/%d", page, total)
}

func footer(source string, page, total int) string {
	return fmt.Sprintf("Powered by %s | Page %s", source, PageLabel(page, total))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func flag(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// CopyBlock formats content as a lua code block that fits in one message.
func CopyBlock(content string) string {
	fence := len("```lua\n") + len("\n```")
	return luaBlock(Truncate(content, constants.MaxDiscordMessageLength-fence))
}

// luaBlock wraps code in a lua code fence.
func luaBlock(code string) string {
	return "```lua\n" + code + "\n```"
}
