package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/keepmind9/scriptbot/internal/bot"
	"github.com/keepmind9/scriptbot/internal/guard"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/internal/upstream"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BusyNotice is sent to a user who starts a command while another is active.
const BusyNotice = "You already have an active search. Please wait for it to finish before starting a new one."

// Arguments that select what to fetch rather than filter it.
var reservedArgs = map[string]bool{
	"query":  true,
	"mode":   true,
	"page":   true,
	"source": true,
	"id":     true,
}

// BotRunner is a chat adapter that delivers invocations until ctx is done.
type BotRunner interface {
	Run(ctx context.Context, handler bot.Handler) error
}

// Engine routes command invocations to the script APIs and drives the
// resulting browsing sessions.
type Engine struct {
	config     *Config
	guard      *guard.Registry
	scriptblox *upstream.ScriptBlox
	rscripts   *upstream.Rscripts
	renderer   *render.Renderer

	botsMu sync.RWMutex
	bots   map[string]BotRunner
}

// NewEngine creates a new Engine instance
func NewEngine(config *Config) *Engine {
	client := upstream.NewHTTPClient(upstream.HTTPOptions{
		Timeout:   config.Upstream.RequestTimeout(),
		RateLimit: config.Upstream.RateLimit,
		UserAgent: config.Upstream.UserAgent,
	})
	scriptblox := upstream.NewScriptBlox(client, config.Upstream.ScriptBloxURL)
	rscripts := upstream.NewRscripts(client, config.Upstream.RscriptsURL)
	return &Engine{
		config:     config,
		guard:      guard.New(),
		scriptblox: scriptblox,
		rscripts:   rscripts,
		renderer:   render.NewRenderer(scriptblox.BaseURL(), rscripts.BaseURL()),
		bots:       make(map[string]BotRunner),
	}
}

// RegisterBot adds a chat adapter started by Run.
func (e *Engine) RegisterBot(platform string, b BotRunner) {
	e.botsMu.Lock()
	defer e.botsMu.Unlock()
	e.bots[platform] = b
}

// Run serves every registered bot until ctx is cancelled or one fails.
func (e *Engine) Run(ctx context.Context) error {
	e.botsMu.RLock()
	defer e.botsMu.RUnlock()

	if len(e.bots) == 0 {
		return errors.New("no bots registered")
	}

	g, ctx := errgroup.WithContext(ctx)
	for platform, b := range e.bots {
		logger.WithField("platform", platform).Info("starting-bot")
		g.Go(func() error {
			if err := b.Run(ctx, e.Handle); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s bot: %w", platform, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Handle processes one invocation. A user with an active invocation gets a
// busy notice and the new invocation is dropped.
func (e *Engine) Handle(ctx context.Context, req bot.Request) {
	log := logger.WithFields(logrus.Fields{
		"platform": req.Platform,
		"user":     req.UserID,
		"command":  req.Command,
	})

	release, ok := e.guard.TryAcquire(req.UserID)
	defer release()
	if !ok {
		log.Info("user-busy-invocation-rejected")
		if err := req.Responder.Notice(ctx, BusyNotice); err != nil {
			log.WithField("error", err).Warn("failed-to-send-busy-notice")
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("invocation-panic-recovered")
		}
	}()

	log.Info("invocation-started")

	switch req.Command {
	case bot.CommandHelp, bot.CommandBotHelp:
		e.showHelp(ctx, req)
	case bot.CommandSearch:
		e.handleSearch(ctx, req)
	case bot.CommandFetch:
		e.handleFetch(ctx, req)
	case bot.CommandTrending:
		e.handleTrending(ctx, req)
	case bot.CommandScript:
		e.handleScript(ctx, req)
	case bot.CommandExecutors:
		e.handleExecutors(ctx, req)
	case bot.CommandRscriptsFetch:
		e.handleRscriptsFetch(ctx, req)
	case bot.CommandRscriptsByUser:
		e.handleRscriptsByUser(ctx, req)
	default:
		log.Warn("unknown-command")
		return
	}

	log.Info("invocation-finished")
}

func (e *Engine) showHelp(ctx context.Context, req bot.Request) {
	if err := req.Responder.Reply(ctx, render.Help(e.config.Discord.Prefix)); err != nil {
		logger.WithFields(logrus.Fields{"user": req.UserID, "error": err}).Error("failed-to-send-help")
	}
}

func (e *Engine) handleSearch(ctx context.Context, req bot.Request) {
	query := req.Arg("query", "")
	if query == "" {
		e.showHelp(ctx, req)
		return
	}
	params := searchParams(req)

	if req.Arg("source", bot.SourceScriptBlox) == bot.SourceRscripts {
		browse(ctx, e, req, browseSpec[upstream.RscriptsScript]{
			what:  query,
			query: query,
			mode:  params.Mode,
			open: func(ctx context.Context) (pager.Source[upstream.RscriptsScript], error) {
				page, err := e.rscripts.Search(ctx, params)
				if err != nil {
					return nil, err
				}
				return pager.NewLocalSource(page.Scripts, 1), nil
			},
			render: e.rscriptsPage,
		})
		return
	}

	params.Max = 1
	browse(ctx, e, req, browseSpec[upstream.ScriptBloxScript]{
		what:      query,
		query:     query,
		mode:      params.Mode,
		startPage: params.Page,
		open: dynamic(params.Page, func(ctx context.Context, n int) ([]upstream.ScriptBloxScript, int, error) {
			p := params
			p.Page = n
			page, err := e.scriptblox.Search(ctx, p)
			return page.Scripts, page.TotalPages, err
		}),
		render: e.scriptBloxPage,
	})
}

func (e *Engine) handleFetch(ctx context.Context, req bot.Request) {
	params := searchParams(req)
	params.Max = 1
	browse(ctx, e, req, browseSpec[upstream.ScriptBloxScript]{
		what:      "the latest scripts",
		mode:      params.Mode,
		startPage: params.Page,
		open: dynamic(params.Page, func(ctx context.Context, n int) ([]upstream.ScriptBloxScript, int, error) {
			p := params
			p.Page = n
			page, err := e.scriptblox.Fetch(ctx, p)
			return page.Scripts, page.TotalPages, err
		}),
		render: e.scriptBloxPage,
	})
}

func (e *Engine) handleTrending(ctx context.Context, req bot.Request) {
	if req.Arg("source", bot.SourceScriptBlox) == bot.SourceRscripts {
		browse(ctx, e, req, browseSpec[upstream.RscriptsScript]{
			what: "trending scripts",
			open: func(ctx context.Context) (pager.Source[upstream.RscriptsScript], error) {
				page, err := e.rscripts.Trending(ctx)
				if err != nil {
					return nil, err
				}
				return pager.NewLocalSource(page.Scripts, 1), nil
			},
			render: e.rscriptsPage,
		})
		return
	}

	browse(ctx, e, req, browseSpec[upstream.ScriptBloxScript]{
		what: "trending scripts",
		open: func(ctx context.Context) (pager.Source[upstream.ScriptBloxScript], error) {
			page, err := e.scriptblox.Trending(ctx)
			if err != nil {
				return nil, err
			}
			return pager.NewLocalSource(page.Scripts, 1), nil
		},
		render: e.scriptBloxPage,
	})
}

func (e *Engine) handleScript(ctx context.Context, req bot.Request) {
	id := req.Arg("id", "")
	if id == "" {
		e.replyFailure(ctx, req, "Please provide a script id.")
		return
	}

	if req.Arg("source", bot.SourceScriptBlox) == bot.SourceRscripts {
		browse(ctx, e, req, browseSpec[upstream.RscriptsScript]{
			what: id,
			open: func(ctx context.Context) (pager.Source[upstream.RscriptsScript], error) {
				s, err := e.rscripts.Script(ctx, id)
				if err != nil {
					return nil, err
				}
				return pager.NewLocalSource([]upstream.RscriptsScript{s}, 1), nil
			},
			render: e.rscriptsPage,
		})
		return
	}

	browse(ctx, e, req, browseSpec[upstream.ScriptBloxScript]{
		what: id,
		open: func(ctx context.Context) (pager.Source[upstream.ScriptBloxScript], error) {
			s, err := e.scriptblox.Script(ctx, id)
			if err != nil {
				return nil, err
			}
			return pager.NewLocalSource([]upstream.ScriptBloxScript{s}, 1), nil
		},
		render: e.scriptBloxPage,
	})
}

func (e *Engine) handleExecutors(ctx context.Context, req bot.Request) {
	browse(ctx, e, req, browseSpec[upstream.Executor]{
		what: "executors",
		open: func(ctx context.Context) (pager.Source[upstream.Executor], error) {
			executors, err := e.scriptblox.Executors(ctx)
			if err != nil {
				return nil, err
			}
			return pager.NewLocalSource(executors, e.config.Pager.ListPageSize), nil
		},
		render: e.renderer.ExecutorList,
	})
}

func (e *Engine) handleRscriptsFetch(ctx context.Context, req bot.Request) {
	e.browseRscripts(ctx, req, "the latest Rscripts scripts", searchParams(req))
}

func (e *Engine) handleRscriptsByUser(ctx context.Context, req bot.Request) {
	username := req.Arg("username", "")
	if username == "" {
		e.replyFailure(ctx, req, "Please provide an Rscripts username.")
		return
	}
	params := searchParams(req)
	params.Filters["username"] = username
	e.browseRscripts(ctx, req, "scripts by "+username, params)
}

// browseRscripts pages through Rscripts listings one upstream page at a time.
func (e *Engine) browseRscripts(ctx context.Context, req bot.Request, what string, params upstream.SearchParams) {
	browse(ctx, e, req, browseSpec[upstream.RscriptsScript]{
		what:      what,
		mode:      params.Mode,
		startPage: params.Page,
		open: dynamic(params.Page, func(ctx context.Context, n int) ([]upstream.RscriptsScript, int, error) {
			p := params
			p.Page = n
			page, err := e.rscripts.Search(ctx, p)
			return page.Scripts, page.TotalPages, err
		}),
		render: e.renderer.RscriptsList,
	})
}

func (e *Engine) scriptBloxPage(items []upstream.ScriptBloxScript, page, total int) render.Card {
	if len(items) == 1 {
		return e.renderer.ScriptBloxCard(items[0], page, total)
	}
	return e.renderer.ScriptBloxList(items, page, total)
}

func (e *Engine) rscriptsPage(items []upstream.RscriptsScript, page, total int) render.Card {
	if len(items) == 1 {
		return e.renderer.RscriptsCard(items[0], page, total)
	}
	return e.renderer.RscriptsList(items, page, total)
}

func (e *Engine) replyFailure(ctx context.Context, req bot.Request, message string) {
	if err := req.Responder.Reply(ctx, render.Failure(message)); err != nil {
		logger.WithFields(logrus.Fields{"user": req.UserID, "error": err}).Error("failed-to-send-failure")
	}
}

// searchParams reads mode, start page and filters from the request.
func searchParams(req bot.Request) upstream.SearchParams {
	p := upstream.SearchParams{
		Query:   req.Arg("query", ""),
		Mode:    req.Arg("mode", "free"),
		Page:    1,
		Filters: make(map[string]string),
	}
	if n, err := strconv.Atoi(req.Arg("page", "1")); err == nil && n > 1 {
		p.Page = n
	}
	for k, v := range req.Args {
		if !reservedArgs[k] && v != "" {
			p.Filters[k] = v
		}
	}
	return p
}

// describeError turns an upstream failure into the text shown to users.
func describeError(err error) string {
	var schemaErr *upstream.SchemaError
	switch {
	case errors.Is(err, upstream.ErrNotFound), errors.Is(err, pager.ErrEmptyPage):
		return "No more scripts found."
	case errors.As(err, &schemaErr):
		return fmt.Sprintf("An error occurred: the response is missing the '%s' field.", schemaErr.Key)
	default:
		return "An error occurred: " + err.Error()
	}
}
