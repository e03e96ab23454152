package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Unknown is the total page count reported when an endpoint does not say.
const Unknown = 0

// ScriptBloxScript is one script as returned by ScriptBlox.
type ScriptBloxScript struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Game        ScriptBloxGame `json:"game"`
	Script      string         `json:"script"`
	ScriptType  string         `json:"scriptType"`
	Image       string         `json:"image"`
	Views       Count          `json:"views"`
	Likes       Count          `json:"likeCount"`
	Dislikes    Count          `json:"dislikeCount"`
	Verified    bool           `json:"verified"`
	Key         bool           `json:"key"`
	KeyLink     string         `json:"keyLink"`
	IsPatched   bool           `json:"isPatched"`
	IsUniversal bool           `json:"isUniversal"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Owner       *Owner         `json:"owner"`
}

// ScriptBloxGame is the game a ScriptBlox script targets.
type ScriptBloxGame struct {
	ID       string     `json:"_id"`
	Name     string     `json:"name"`
	GameID   FlexString `json:"gameId"`
	ImageURL string     `json:"imageUrl"`
}

// Owner is a script uploader.
type Owner struct {
	Username string `json:"username"`
	Image    string `json:"profilePicture"`
	Verified bool   `json:"verified"`
}

// Executor is one entry of the ScriptBlox executor list.
type Executor struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	Patched     bool   `json:"patched"`
	Website     string `json:"website"`
	Discord     string `json:"discord"`
	Store       string `json:"store"`
	Type        string `json:"type"`
	Thumbnail   string `json:"thumbnail"`
	UpdatedDate string `json:"updatedDate"`
}

// RscriptsScript is one script as returned by Rscripts.
type RscriptsScript struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	RawScript   string        `json:"rawScript"`
	Download    string        `json:"download"` // v1 responses: raw file name
	Views       Count         `json:"views"`
	Likes       Count         `json:"likes"`
	Dislikes    Count         `json:"dislikes"`
	Paid        bool          `json:"paid"`
	KeySystem   bool          `json:"keySystem"`
	MobileReady bool          `json:"mobileReady"`
	Verified    bool          `json:"verified"`
	Patched     bool          `json:"patched"`
	CreatedAt   string        `json:"createdAt"`
	Date        string        `json:"date"` // v1 responses
	LastUpdated string        `json:"lastUpdated"`
	User        RscriptsUser  `json:"user"`
	Game        *RscriptsGame `json:"game"`
}

// Created returns the creation timestamp from whichever field is present.
func (s RscriptsScript) Created() string {
	if s.CreatedAt != "" {
		return s.CreatedAt
	}
	return s.Date
}

// RscriptsGame is the game an Rscripts script targets.
type RscriptsGame struct {
	Title   string     `json:"title"`
	PlaceID FlexString `json:"placeId"`
	Image   string     `json:"imgurl"`
}

// RscriptsUser is the uploader. The API sends either an object or a
// one-element array.
type RscriptsUser struct {
	Username string `json:"username"`
	Image    string `json:"image"`
	Verified bool   `json:"verified"`
}

func (u *RscriptsUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	type plain RscriptsUser
	if data[0] == '[' {
		var users []plain
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
		if len(users) > 0 {
			*u = RscriptsUser(users[0])
		}
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = RscriptsUser(p)
	return nil
}

// Count is a numeric counter that tolerates strings, floats and null.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = Count(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = Count(f)
	return nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// SearchParams selects one result page.
type SearchParams struct {
	Query   string
	Mode    string // free or paid
	Page    int
	Max     int               // results per page; zero leaves the upstream default
	Filters map[string]string // passed through verbatim as query parameters
}

// ScriptBloxPage is one page of ScriptBlox scripts.
type ScriptBloxPage struct {
	Scripts    []ScriptBloxScript
	TotalPages int // Unknown when not reported
}

// RscriptsPage is one page of Rscripts scripts.
type RscriptsPage struct {
	Scripts    []RscriptsScript
	TotalPages int // Unknown when not reported
}
