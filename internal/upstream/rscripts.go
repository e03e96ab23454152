package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// RscriptsFilters lists the optional query parameters Rscripts accepts.
var RscriptsFilters = []string{
	"noKeySystem", "mobileOnly", "verifiedOnly", "unpatched", "orderBy", "sort", "username",
}

// Rscripts is a client for the rscripts.net v2 API.
type Rscripts struct {
	http    *HTTPClient
	baseURL string
}

// NewRscripts creates an Rscripts client rooted at baseURL.
func NewRscripts(c *HTTPClient, baseURL string) *Rscripts {
	return &Rscripts{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the site root.
func (r *Rscripts) BaseURL() string {
	return r.baseURL
}

type rscriptsEnvelope struct {
	Info *struct {
		CurrentPage int `json:"currentPage"`
		MaxPages    int `json:"maxPages"`
	} `json:"info"`
	Scripts []RscriptsScript `json:"scripts"`
	Success json.RawMessage  `json:"success"`
	Script  *RscriptsScript  `json:"script"`
	Error   string           `json:"error"`
}

// scripts returns whichever list key the endpoint used.
func (e rscriptsEnvelope) scripts(op string) ([]RscriptsScript, error) {
	if e.Scripts != nil {
		return e.Scripts, nil
	}
	if len(e.Success) > 0 && e.Success[0] == '[' {
		var list []RscriptsScript
		if err := json.Unmarshal(e.Success, &list); err != nil {
			return nil, &SchemaError{Op: op, Key: "success", Err: err}
		}
		return list, nil
	}
	if e.Script != nil {
		return []RscriptsScript{*e.Script}, nil
	}
	return nil, missingKey(op, "scripts")
}

// Search runs /api/v2/scripts. Mode "paid" maps to notPaid=false.
func (r *Rscripts) Search(ctx context.Context, p SearchParams) (RscriptsPage, error) {
	const op = "rscripts search"
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("notPaid", strconv.FormatBool(p.Mode != "paid"))
	for _, key := range RscriptsFilters {
		if v, ok := p.Filters[key]; ok && v != "" {
			q.Set(key, v)
		}
	}

	var env rscriptsEnvelope
	if err := r.http.GetJSON(ctx, op, r.baseURL+"/api/v2/scripts", q, &env); err != nil {
		return RscriptsPage{}, err
	}
	list, err := env.scripts(op)
	if err != nil {
		return RscriptsPage{}, err
	}
	if len(list) == 0 {
		return RscriptsPage{}, ErrNotFound
	}
	out := RscriptsPage{Scripts: list, TotalPages: Unknown}
	if env.Info != nil && env.Info.MaxPages > 0 {
		out.TotalPages = env.Info.MaxPages
	}
	return out, nil
}

// Trending runs /api/v2/trending.
func (r *Rscripts) Trending(ctx context.Context) (RscriptsPage, error) {
	const op = "rscripts trending"
	var env rscriptsEnvelope
	if err := r.http.GetJSON(ctx, op, r.baseURL+"/api/v2/trending", nil, &env); err != nil {
		return RscriptsPage{}, err
	}
	list, err := env.scripts(op)
	if err != nil {
		return RscriptsPage{}, err
	}
	if len(list) == 0 {
		return RscriptsPage{}, ErrNotFound
	}
	return RscriptsPage{Scripts: list, TotalPages: Unknown}, nil
}

// Script fetches one script by id.
func (r *Rscripts) Script(ctx context.Context, id string) (RscriptsScript, error) {
	const op = "rscripts script"
	var env rscriptsEnvelope
	q := url.Values{"id": {id}}
	if err := r.http.GetJSON(ctx, op, r.baseURL+"/api/v2/script", q, &env); err != nil {
		return RscriptsScript{}, err
	}
	list, err := env.scripts(op)
	if err != nil {
		return RscriptsScript{}, err
	}
	if len(list) == 0 {
		return RscriptsScript{}, ErrNotFound
	}
	return list[0], nil
}
