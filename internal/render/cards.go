package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/scriptbot/internal/upstream"
	"github.com/keepmind9/scriptbot/pkg/constants"
)

const (
	sourceScriptBlox = "ScriptBlox"
	sourceRscripts   = "Rscripts"

	noScriptContent = "⚠️ No script content available."
)

// Renderer builds cards for both script sources.
type Renderer struct {
	ScriptBloxURL string
	RscriptsURL   string
	// Now is the clock used for relative timestamps. Nil means time.Now.
	Now func() time.Time
}

// NewRenderer creates a Renderer for the given site roots.
func NewRenderer(scriptBloxURL, rscriptsURL string) *Renderer {
	return &Renderer{
		ScriptBloxURL: strings.TrimRight(scriptBloxURL, "/"),
		RscriptsURL:   strings.TrimRight(rscriptsURL, "/"),
	}
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// resolve makes a site-relative path absolute.
func resolve(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// ScriptBloxCard renders one ScriptBlox script.
func (r *Renderer) ScriptBloxCard(s upstream.ScriptBloxScript, page, total int) Card {
	now := r.now()
	pageURL := ""
	if s.Slug != "" {
		pageURL = r.ScriptBloxURL + "/script/" + s.Slug
	}

	game := orDefault(s.Game.Name, "Unknown Game")
	if s.Game.GameID != "" {
		game = fmt.Sprintf("[%s](https://www.roblox.com/games/%s)", game, s.Game.GameID)
	}

	keyStatus := "✅ No Key"
	if s.Key {
		keyStatus = "🔑 Has Key"
		if IsWellFormedURL(s.KeyLink) {
			keyStatus = fmt.Sprintf("[Key Link](%s)", s.KeyLink)
		}
	}

	links := "No links available"
	if s.Slug != "" {
		links = fmt.Sprintf("[Raw Script](https://rawscripts.net/raw/%s) - [Script Page](%s)", s.Slug, pageURL)
	}

	script := noScriptContent
	if s.Script != "" {
		script = luaBlock(Truncate(s.Script, constants.MaxScriptPreviewLength))
	}

	image := resolve(r.ScriptBloxURL, s.Game.ImageURL)
	if image == "" {
		image = resolve(r.ScriptBloxURL, s.Image)
	}

	doc := Document{
		Title: Truncate("[SB] "+orDefault(s.Title, "No Title"), constants.MaxEmbedTitleLength),
		URL:   pageURL,
		Color: ColorCard,
		Fields: []Field{
			{Name: "Game", Value: game, Inline: true},
			{Name: "Verified", Value: flag(s.Verified, "✅ Verified", "❌ Not Verified"), Inline: true},
			{Name: "Script Type", Value: flag(strings.EqualFold(orDefault(s.ScriptType, "free"), "free"), "Free", "💲 Paid"), Inline: true},
			{Name: "Universal", Value: flag(s.IsUniversal, "🌐 Universal", "Not Universal"), Inline: true},
			{Name: "Views", Value: "👁️ " + humanize.Comma(int64(s.Views)), Inline: true},
			{Name: "Key", Value: keyStatus, Inline: true},
			{Name: "Patched", Value: flag(s.IsPatched, "❌ Patched", "✅ Not Patched"), Inline: true},
			{Name: "Links", Value: links},
			{Name: "The Script", Value: script},
			{Name: "Timestamps", Value: fmt.Sprintf("**Created At:** %s\n**Updated At:** %s",
				RelativeTime(s.CreatedAt, now), RelativeTime(s.UpdatedAt, now))},
		},
		ImageURL: ImageOrFallback(image),
		Footer:   footer(sourceScriptBlox, page, total),
	}
	if s.Owner != nil && s.Owner.Username != "" {
		doc.AuthorName = s.Owner.Username
		if icon := resolve(r.ScriptBloxURL, s.Owner.Image); IsWellFormedURL(icon) {
			doc.AuthorIcon = icon
		}
	}

	card := Card{Document: doc, Copy: s.Script}
	if s.ID != "" {
		card.Links = append(card.Links, Link{Label: "Download", URL: r.ScriptBloxURL + "/download/" + s.ID})
	}
	if pageURL != "" {
		card.Links = append(card.Links, Link{Label: "View", URL: pageURL})
	}
	return card
}

// rscriptsLoader returns the loadstring snippet for a script, or "".
func (r *Renderer) rscriptsLoader(s upstream.RscriptsScript) string {
	raw := s.RawScript
	if raw == "" && s.Download != "" {
		raw = r.RscriptsURL + "/raw/" + s.Download
	}
	if raw == "" {
		return ""
	}
	return fmt.Sprintf("loadstring(game:HttpGet(\"%s\"))()", raw)
}

// RscriptsCard renders one Rscripts script.
func (r *Renderer) RscriptsCard(s upstream.RscriptsScript, page, total int) Card {
	now := r.now()
	pageURL := ""
	if s.Slug != "" {
		pageURL = r.RscriptsURL + "/script/" + s.Slug
	}

	loader := r.rscriptsLoader(s)
	script := noScriptContent
	if loader != "" {
		script = luaBlock(loader)
	}

	links := "No links available"
	if pageURL != "" {
		links = fmt.Sprintf("[Script Page](%s)", pageURL)
	}

	fields := []Field{
		{Name: "Views", Value: "👁️ " + humanize.Comma(int64(s.Views)), Inline: true},
		{Name: "Likes", Value: "👍 " + humanize.Comma(int64(s.Likes)), Inline: true},
		{Name: "Dislikes", Value: "👎 " + humanize.Comma(int64(s.Dislikes)), Inline: true},
		{Name: "Mobile", Value: flag(s.MobileReady, "📱 Mobile Ready", "🚫 Not Mobile Ready"), Inline: true},
		{Name: "Verified", Value: flag(s.Verified, "✅ Verified", "❌ Not Verified"), Inline: true},
		{Name: "Key System", Value: flag(s.KeySystem, "🔑 Key System", "✅ No Key"), Inline: true},
		{Name: "Paid", Value: flag(s.Paid, "💲 Paid", "Free"), Inline: true},
	}
	if s.Game != nil && s.Game.Title != "" {
		game := s.Game.Title
		if s.Game.PlaceID != "" {
			game = fmt.Sprintf("[%s](https://www.roblox.com/games/%s)", game, s.Game.PlaceID)
		}
		fields = append(fields, Field{Name: "Game", Value: game, Inline: true})
	}
	fields = append(fields,
		Field{Name: "The Script", Value: script},
		Field{Name: "Links", Value: links},
		Field{Name: "Date", Value: RelativeTime(s.Created(), now), Inline: true},
	)
	if s.LastUpdated != "" {
		fields = append(fields, Field{Name: "Updated", Value: RelativeTime(s.LastUpdated, now), Inline: true})
	}

	image := resolve(r.RscriptsURL, s.Image)
	if image == "" && s.Game != nil {
		image = s.Game.Image
	}

	avatar := s.User.Image
	if !strings.HasPrefix(avatar, "http") {
		avatar = r.RscriptsURL + "/assets/avatars/" + orDefault(avatar, "default.png")
	}

	doc := Document{
		Title:       Truncate("[RS] "+orDefault(s.Title, "No Title"), constants.MaxEmbedTitleLength),
		URL:         pageURL,
		Description: Truncate(strings.TrimSpace(s.Description), constants.MaxDescriptionLength),
		Color:       ColorCard,
		Fields:      fields,
		ImageURL:    ImageOrFallback(image),
		AuthorName:  orDefault(s.User.Username, "Unknown"),
		AuthorIcon:  avatar,
		Footer:      footer(sourceRscripts, page, total),
	}
	if !IsWellFormedURL(doc.AuthorIcon) {
		doc.AuthorIcon = ""
	}

	card := Card{Document: doc, Copy: loader}
	if pageURL != "" {
		card.Links = append(card.Links, Link{Label: "View", URL: pageURL})
	}
	if IsWellFormedURL(s.RawScript) {
		card.Links = append(card.Links, Link{Label: "Raw", URL: s.RawScript})
	}
	return card
}

// ScriptBloxList renders several ScriptBlox scripts as one page.
func (r *Renderer) ScriptBloxList(scripts []upstream.ScriptBloxScript, page, total int) Card {
	var b strings.Builder
	for i, s := range scripts {
		title := orDefault(s.Title, "No Title")
		if s.Slug != "" {
			title = fmt.Sprintf("[%s](%s/script/%s)", title, r.ScriptBloxURL, s.Slug)
		}
		fmt.Fprintf(&b, "**%d.** %s\n%s • 👁️ %s • %s • %s\n",
			i+1, title,
			orDefault(s.Game.Name, "Unknown Game"),
			humanize.Comma(int64(s.Views)),
			flag(s.Verified, "✅ Verified", "❌ Not Verified"),
			flag(s.Key, "🔑 Key", "✅ No Key"))
	}
	return Card{Document: Document{
		Title:       "[SB] Scripts",
		Description: Truncate(b.String(), 4096),
		Color:       ColorCard,
		Footer:      footer(sourceScriptBlox, page, total),
	}}
}

// RscriptsList renders several Rscripts scripts as one page.
func (r *Renderer) RscriptsList(scripts []upstream.RscriptsScript, page, total int) Card {
	var b strings.Builder
	for i, s := range scripts {
		title := orDefault(s.Title, "No Title")
		if s.Slug != "" {
			title = fmt.Sprintf("[%s](%s/script/%s)", title, r.RscriptsURL, s.Slug)
		}
		fmt.Fprintf(&b, "**%d.** %s\nby %s • 👁️ %s • 👍 %s • %s\n",
			i+1, title,
			orDefault(s.User.Username, "Unknown"),
			humanize.Comma(int64(s.Views)),
			humanize.Comma(int64(s.Likes)),
			flag(s.KeySystem, "🔑 Key System", "✅ No Key"))
	}
	return Card{Document: Document{
		Title:       "[RS] Scripts",
		Description: Truncate(b.String(), 4096),
		Color:       ColorCard,
		Footer:      footer(sourceRscripts, page, total),
	}}
}

// ExecutorList renders a page of executors.
func (r *Renderer) ExecutorList(executors []upstream.Executor, page, total int) Card {
	fields := make([]Field, 0, len(executors))
	for _, e := range executors {
		status := flag(e.Patched, "🔴", "🟢")
		value := fmt.Sprintf("Platform: %s | Version: %s | %s",
			orDefault(e.Platform, "Unknown"),
			orDefault(e.Version, "?"),
			flag(e.Patched, "❌ Patched", "✅ Working"))
		if IsWellFormedURL(e.Website) {
			value += fmt.Sprintf("\n[Website](%s)", e.Website)
		}
		if IsWellFormedURL(e.Discord) {
			value += fmt.Sprintf(" - [Discord](%s)", e.Discord)
		}
		fields = append(fields, Field{
			Name:  Truncate(status+" "+orDefault(e.Name, "Unnamed"), constants.MaxEmbedTitleLength),
			Value: Truncate(value, constants.MaxEmbedFieldValueLength),
		})
	}
	return Card{Document: Document{
		Title:  "[SB] Executors",
		Color:  ColorCard,
		Fields: fields,
		Footer: footer(sourceScriptBlox, page, total),
	}}
}
