package core

import (
	"context"
	"errors"

	"github.com/keepmind9/scriptbot/internal/bot"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/pager"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/internal/upstream"
	"github.com/sirupsen/logrus"
)

// browseSpec describes one browsable result set.
type browseSpec[T any] struct {
	what      string // shown while the first page loads
	query     string // echoed by the not-found card
	mode      string
	startPage int

	// open loads enough to know whether there is anything to show.
	open   func(ctx context.Context) (pager.Source[T], error)
	render pager.RenderFunc[T]
}

// dynamic fetches the start page eagerly so an empty or failed search is
// reported before any controls appear, then pages on demand.
func dynamic[T any](start int, fetch pager.FetchFunc[T]) func(context.Context) (pager.Source[T], error) {
	if start < 1 {
		start = 1
	}
	return func(ctx context.Context) (pager.Source[T], error) {
		items, total, err := fetch(ctx, start)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, upstream.ErrNotFound
		}
		if total != pager.Unknown && total < start {
			total = start
		}
		return pager.NewDynamicSource(fetch).Prime(start, items, total), nil
	}
}

// browse answers req with a placeholder, loads the result set and runs a
// pager on the answer until the session ends.
func browse[T any](ctx context.Context, e *Engine, req bot.Request, spec browseSpec[T]) {
	log := logger.WithFields(logrus.Fields{"user": req.UserID, "command": req.Command})
	r := req.Responder

	if err := r.Defer(ctx); err != nil {
		log.WithField("error", err).Error("failed-to-defer-invocation")
		return
	}
	if err := r.Reply(ctx, render.Searching(spec.what)); err != nil {
		log.WithField("error", err).Error("failed-to-send-placeholder")
		return
	}

	src, err := spec.open(ctx)
	if err != nil {
		log.WithField("error", err).Warn("first-page-fetch-failed")
		doc := render.Failure(describeError(err))
		if errors.Is(err, upstream.ErrNotFound) {
			doc = render.NotFound(spec.query, spec.mode)
		}
		if err := r.Edit(ctx, doc); err != nil {
			log.WithField("error", err).Error("failed-to-show-fetch-error")
		}
		return
	}

	anchor, err := r.Anchor()
	if err != nil {
		log.WithField("error", err).Error("failed-to-anchor-results")
		return
	}
	defer anchor.Close()

	session := pager.NewSession(req.UserID, anchor.MessageID())
	if spec.startPage > 1 {
		session.CurrentPage = spec.startPage
	}

	outcome, err := pager.Run(ctx, pager.Options[T]{
		Session:       session,
		Source:        src,
		Render:        spec.render,
		Display:       anchor,
		Events:        anchor.Events(),
		Timeout:       e.config.Pager.NavigationTimeout(),
		DescribeError: describeError,
	})

	fields := logrus.Fields{
		"session": session.ID,
		"outcome": outcome.String(),
		"page":    session.CurrentPage,
	}
	if err != nil {
		fields["error"] = err
	}
	log.WithFields(fields).Info("browse-session-ended")
}
