package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ScriptBloxFilters lists the optional query parameters ScriptBlox accepts.
var ScriptBloxFilters = []string{
	"verified", "patched", "key", "universal", "sortBy", "order", "strict", "owner", "placeId",
}

// ScriptBlox is a client for the scriptblox.com API.
type ScriptBlox struct {
	http    *HTTPClient
	baseURL string
}

// NewScriptBlox creates a ScriptBlox client rooted at baseURL.
func NewScriptBlox(c *HTTPClient, baseURL string) *ScriptBlox {
	return &ScriptBlox{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the site root, used to resolve relative image paths.
func (s *ScriptBlox) BaseURL() string {
	return s.baseURL
}

type scriptBloxEnvelope struct {
	Result *struct {
		TotalPages *int               `json:"totalPages"`
		Scripts    []ScriptBloxScript `json:"scripts"`
	} `json:"result"`
	Script  *ScriptBloxScript `json:"script"`
	Message string            `json:"message"`
}

// Search runs /api/script/search.
func (s *ScriptBlox) Search(ctx context.Context, p SearchParams) (ScriptBloxPage, error) {
	q := s.pageQuery(p)
	q.Set("q", p.Query)
	return s.list(ctx, "scriptblox search", "/api/script/search", q)
}

// Fetch runs /api/script/fetch, the latest scripts feed.
func (s *ScriptBlox) Fetch(ctx context.Context, p SearchParams) (ScriptBloxPage, error) {
	return s.list(ctx, "scriptblox fetch", "/api/script/fetch", s.pageQuery(p))
}

// Trending runs /api/script/trending. The endpoint reports no page count.
func (s *ScriptBlox) Trending(ctx context.Context) (ScriptBloxPage, error) {
	page, err := s.list(ctx, "scriptblox trending", "/api/script/trending", nil)
	if err != nil {
		return page, err
	}
	page.TotalPages = Unknown
	return page, nil
}

// Script fetches one script by id or slug.
func (s *ScriptBlox) Script(ctx context.Context, id string) (ScriptBloxScript, error) {
	const op = "scriptblox script"
	var env scriptBloxEnvelope
	if err := s.http.GetJSON(ctx, op, s.baseURL+"/api/script/"+url.PathEscape(id), nil, &env); err != nil {
		return ScriptBloxScript{}, err
	}
	if env.Script == nil {
		return ScriptBloxScript{}, missingKey(op, "script")
	}
	return *env.Script, nil
}

// Executors lists known executors. The endpoint returns a bare array.
func (s *ScriptBlox) Executors(ctx context.Context) ([]Executor, error) {
	const op = "scriptblox executors"
	var raw json.RawMessage
	if err := s.http.GetJSON(ctx, op, s.baseURL+"/api/executor/list", nil, &raw); err != nil {
		return nil, err
	}
	var executors []Executor
	if err := json.Unmarshal(raw, &executors); err != nil {
		return nil, &SchemaError{Op: op, Key: "[]", Err: err}
	}
	if len(executors) == 0 {
		return nil, ErrNotFound
	}
	return executors, nil
}

func (s *ScriptBlox) pageQuery(p SearchParams) url.Values {
	q := url.Values{}
	if p.Mode != "" {
		q.Set("mode", p.Mode)
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if p.Max > 0 {
		q.Set("max", strconv.Itoa(p.Max))
	}
	for _, key := range ScriptBloxFilters {
		if v, ok := p.Filters[key]; ok && v != "" {
			q.Set(key, v)
		}
	}
	return q
}

func (s *ScriptBlox) list(ctx context.Context, op, path string, q url.Values) (ScriptBloxPage, error) {
	var env scriptBloxEnvelope
	if err := s.http.GetJSON(ctx, op, s.baseURL+path, q, &env); err != nil {
		return ScriptBloxPage{}, err
	}
	if env.Result == nil {
		return ScriptBloxPage{}, missingKey(op, "result")
	}
	if env.Result.Scripts == nil {
		return ScriptBloxPage{}, missingKey(op, "result.scripts")
	}
	if len(env.Result.Scripts) == 0 {
		return ScriptBloxPage{}, ErrNotFound
	}
	page := ScriptBloxPage{Scripts: env.Result.Scripts, TotalPages: Unknown}
	if env.Result.TotalPages != nil && *env.Result.TotalPages > 0 {
		page.TotalPages = *env.Result.TotalPages
	}
	return page, nil
}
