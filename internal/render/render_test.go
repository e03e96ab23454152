package render

import (
	"strings"
	"testing"
	"time"

	"github.com/keepmind9/scriptbot/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 11, 20, 12, 0, 0, 0, time.UTC)

func newTestRenderer() *Renderer {
	r := NewRenderer("https://scriptblox.com/", "https://rscripts.net")
	r.Now = func() time.Time { return fixedNow }
	return r
}

func fieldValue(t *testing.T, doc Document, name string) string {
	t.Helper()
	for _, f := range doc.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("field %q not found", name)
	return ""
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, ".."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.max), tt.in)
	}
}

func TestImageOrFallback(t *testing.T) {
	assert.Equal(t, "https://scriptblox.com/a.png", ImageOrFallback("https://scriptblox.com/a.png"))
	assert.Equal(t, FallbackImageURL, ImageOrFallback(""))
	assert.Equal(t, FallbackImageURL, ImageOrFallback("/images/a.png"))
	assert.Equal(t, FallbackImageURL, ImageOrFallback("ftp://host/a.png"))
	assert.Equal(t, FallbackImageURL, ImageOrFallback("https://bad host/a.png"))
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "3 days ago | 11/17/2024 | 12:00:00 PM",
		RelativeTime("2024-11-17T12:00:00.000Z", fixedNow))
	assert.Equal(t, "just now | 11/20/2024 | 12:00:00 PM",
		RelativeTime("2024-11-20T12:00:00Z", fixedNow))
	assert.Equal(t, "Unknown", RelativeTime("", fixedNow))
	assert.Equal(t, "Unknown", RelativeTime("yesterday", fixedNow))
}

func TestScriptBloxCard_FullRecord(t *testing.T) {
	r := newTestRenderer()
	script := upstream.ScriptBloxScript{
		ID:         "66f",
		Title:      "Arsenal Aimbot",
		Slug:       "arsenal-aimbot",
		Game:       upstream.ScriptBloxGame{Name: "Arsenal", GameID: "286090429", ImageURL: "/images/arsenal.png"},
		Script:     strings.Repeat("x", 500),
		ScriptType: "paid",
		Views:      12345,
		Verified:   true,
		Key:        true,
		KeyLink:    "https://keys.example.com/get",
		CreatedAt:  "2024-11-17T12:00:00.000Z",
		UpdatedAt:  "2024-11-20T11:00:00.000Z",
	}

	card := r.ScriptBloxCard(script, 2, 5)
	doc := card.Document

	assert.Equal(t, "[SB] Arsenal Aimbot", doc.Title)
	assert.Equal(t, "https://scriptblox.com/script/arsenal-aimbot", doc.URL)
	assert.Equal(t, "[Arsenal](https://www.roblox.com/games/286090429)", fieldValue(t, doc, "Game"))
	assert.Equal(t, "✅ Verified", fieldValue(t, doc, "Verified"))
	assert.Equal(t, "💲 Paid", fieldValue(t, doc, "Script Type"))
	assert.Equal(t, "👁️ 12,345", fieldValue(t, doc, "Views"))
	assert.Equal(t, "[Key Link](https://keys.example.com/get)", fieldValue(t, doc, "Key"))
	assert.Equal(t, "✅ Not Patched", fieldValue(t, doc, "Patched"))
	assert.Contains(t, fieldValue(t, doc, "Links"), "https://rawscripts.net/raw/arsenal-aimbot")
	assert.Contains(t, fieldValue(t, doc, "Timestamps"), "3 days ago")

	preview := fieldValue(t, doc, "The Script")
	assert.True(t, strings.HasPrefix(preview, "```lua\n"))
	assert.Contains(t, preview, strings.Repeat("x", 397)+"...")
	assert.NotContains(t, preview, strings.Repeat("x", 398))

	assert.Equal(t, "https://scriptblox.com/images/arsenal.png", doc.ImageURL)
	assert.Equal(t, "Powered by ScriptBlox | Page 2/5", doc.Footer)

	require.Len(t, card.Links, 2)
	assert.Equal(t, Link{Label: "Download", URL: "https://scriptblox.com/download/66f"}, card.Links[0])
	assert.Equal(t, "View", card.Links[1].Label)
	assert.Equal(t, script.Script, card.Copy)
}

func TestScriptBloxCard_MissingFieldsUseDefaults(t *testing.T) {
	card := newTestRenderer().ScriptBloxCard(upstream.ScriptBloxScript{}, 1, Unknown)
	doc := card.Document

	assert.Equal(t, "[SB] No Title", doc.Title)
	assert.Equal(t, "Unknown Game", fieldValue(t, doc, "Game"))
	assert.Equal(t, "Free", fieldValue(t, doc, "Script Type"))
	assert.Equal(t, "👁️ 0", fieldValue(t, doc, "Views"))
	assert.Equal(t, "✅ No Key", fieldValue(t, doc, "Key"))
	assert.Equal(t, "No links available", fieldValue(t, doc, "Links"))
	assert.Equal(t, noScriptContent, fieldValue(t, doc, "The Script"))
	assert.Contains(t, fieldValue(t, doc, "Timestamps"), "Unknown")
	assert.Equal(t, FallbackImageURL, doc.ImageURL)
	assert.Equal(t, "Powered by ScriptBlox | Page 1/?", doc.Footer)
	assert.Empty(t, card.Links)
	assert.Empty(t, card.Copy)
}

func TestScriptBloxCard_Idempotent(t *testing.T) {
	r := newTestRenderer()
	script := upstream.ScriptBloxScript{ID: "1", Title: "T", Slug: "t", Script: "print(1)", CreatedAt: "2024-01-01T00:00:00Z"}

	assert.Equal(t, r.ScriptBloxCard(script, 3, 9), r.ScriptBloxCard(script, 3, 9))
}

func TestRscriptsCard(t *testing.T) {
	r := newTestRenderer()
	script := upstream.RscriptsScript{
		ID:          "r1",
		Title:       "Fly GUI",
		Slug:        "fly-gui",
		Description: "A fly script",
		RawScript:   "https://rscripts.net/raw/fly.lua",
		Views:       1000,
		Likes:       10,
		Dislikes:    1,
		MobileReady: true,
		KeySystem:   true,
		CreatedAt:   "2024-11-19T12:00:00Z",
		User:        upstream.RscriptsUser{Username: "bob", Image: "bob.png"},
		Game:        &upstream.RscriptsGame{Title: "Brookhaven", PlaceID: "4924922222"},
	}

	card := r.RscriptsCard(script, 1, 3)
	doc := card.Document

	assert.Equal(t, "[RS] Fly GUI", doc.Title)
	assert.Equal(t, "A fly script", doc.Description)
	assert.Equal(t, "📱 Mobile Ready", fieldValue(t, doc, "Mobile"))
	assert.Equal(t, "🔑 Key System", fieldValue(t, doc, "Key System"))
	assert.Equal(t, "[Brookhaven](https://www.roblox.com/games/4924922222)", fieldValue(t, doc, "Game"))
	assert.Contains(t, fieldValue(t, doc, "The Script"), `loadstring(game:HttpGet("https://rscripts.net/raw/fly.lua"))()`)
	assert.Contains(t, fieldValue(t, doc, "Date"), "1 day ago")
	assert.Equal(t, "bob", doc.AuthorName)
	assert.Equal(t, "https://rscripts.net/assets/avatars/bob.png", doc.AuthorIcon)
	assert.Equal(t, "Powered by Rscripts | Page 1/3", doc.Footer)

	require.Len(t, card.Links, 2)
	assert.Equal(t, "https://rscripts.net/script/fly-gui", card.Links[0].URL)
	assert.Equal(t, "Raw", card.Links[1].Label)
	assert.Equal(t, `loadstring(game:HttpGet("https://rscripts.net/raw/fly.lua"))()`, card.Copy)
}

func TestRscriptsCard_LegacyDownloadAndDefaults(t *testing.T) {
	card := newTestRenderer().RscriptsCard(upstream.RscriptsScript{Download: "abc.lua", Date: "2024-11-20T12:00:00Z"}, 1, 1)

	assert.Equal(t, `loadstring(game:HttpGet("https://rscripts.net/raw/abc.lua"))()`, card.Copy)
	assert.Equal(t, "Unknown", card.Document.AuthorName)
	assert.Equal(t, "https://rscripts.net/assets/avatars/default.png", card.Document.AuthorIcon)
	assert.Contains(t, fieldValue(t, card.Document, "Date"), "just now")
	assert.Equal(t, FallbackImageURL, card.Document.ImageURL)
}

func TestLists(t *testing.T) {
	r := newTestRenderer()

	sb := r.ScriptBloxList([]upstream.ScriptBloxScript{{Title: "A", Slug: "a"}, {Title: "B"}}, 2, Unknown)
	assert.Contains(t, sb.Document.Description, "**1.** [A](https://scriptblox.com/script/a)")
	assert.Contains(t, sb.Document.Description, "**2.** B")
	assert.Equal(t, "Powered by ScriptBlox | Page 2/?", sb.Document.Footer)
	assert.Empty(t, sb.Links)

	rs := r.RscriptsList([]upstream.RscriptsScript{{Title: "Fly", User: upstream.RscriptsUser{Username: "amy"}}}, 1, 4)
	assert.Contains(t, rs.Document.Description, "by amy")

	ex := r.ExecutorList([]upstream.Executor{
		{Name: "Solara", Platform: "Windows", Version: "3.1", Website: "https://solara.example"},
		{Name: "Old", Patched: true},
	}, 1, 2)
	require.Len(t, ex.Document.Fields, 2)
	assert.Equal(t, "🟢 Solara", ex.Document.Fields[0].Name)
	assert.Contains(t, ex.Document.Fields[0].Value, "[Website](https://solara.example)")
	assert.Equal(t, "🔴 Old", ex.Document.Fields[1].Name)
	assert.Contains(t, ex.Document.Fields[1].Value, "Version: ?")
}

func TestHelpAndNotFound(t *testing.T) {
	help := Help("?")
	assert.Contains(t, help.Description, "`?search <query>")
	assert.Contains(t, help.Description, "/rscripts_by_user")

	assert.Equal(t, "No scripts found for: `arsenal` in mode `paid`.", NotFound("arsenal", "paid").Description)
	assert.Equal(t, "No scripts found.", NotFound("", "").Description)
}
