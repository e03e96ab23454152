// Package pager drives an interactive, paged result display.
//
// A pager owns one Session: it renders the current page onto an anchored
// message, offers only the navigation controls valid for that page, then
// blocks until the session owner presses one of them or the wait times out.
// Clicks are resolved against the controls that were actually rendered, so
// an out-of-range transition can never be applied.
package pager

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// Session is the state of one user's paged browsing.
type Session struct {
	ID              string
	Owner           string
	AnchorMessageID string
	CurrentPage     int
	TotalPages      int // Unknown until the source reports one
}

// NewSession creates a session on page 1 for owner.
func NewSession(owner, anchorMessageID string) *Session {
	return &Session{
		ID:              uuid.NewString(),
		Owner:           owner,
		AnchorMessageID: anchorMessageID,
		CurrentPage:     1,
		TotalPages:      Unknown,
	}
}

// Interaction is the platform handle of one click.
type Interaction interface {
	// Acknowledge tells the platform the click was handled.
	Acknowledge() error
	// RespondPrivate answers the click with content only the clicker sees.
	RespondPrivate(content string) error
}

// Event is one inbound click on a component.
type Event struct {
	UserID      string
	MessageID   string
	CustomID    string
	Interaction Interaction
}

// Display is the anchored message a pager renders onto.
type Display interface {
	// Update replaces the message content and controls. Safe to repeat.
	Update(ctx context.Context, doc render.Document, controls []Control) error
	// Expire strips the controls and marks the message timed out.
	Expire(ctx context.Context) error
	// Fail strips the controls and shows message instead of the results.
	Fail(ctx context.Context, message string) error
}

// RenderFunc renders the records of one page.
type RenderFunc[T any] func(items []T, page, total int) render.Card

// Outcome is how a pager run ended.
type Outcome int

const (
	OutcomeTimedOut Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTimedOut:
		return "timed-out"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// NotOwnerNotice is sent privately to users clicking someone else's controls.
const NotOwnerNotice = "Only the user who started this search can use these buttons."

// Options configures Run.
type Options[T any] struct {
	Session *Session
	Source  Source[T]
	Render  RenderFunc[T]
	Display Display
	// Events delivers clicks on the anchored message. The sender must not
	// block: clicks arriving while the pager renders are dropped.
	Events <-chan Event
	// Timeout is the wait for the next click. Zero uses the default.
	Timeout time.Duration
	// DescribeError turns a fetch failure into the text shown to the user.
	DescribeError func(error) string
}

// Run drives the display-and-wait loop until the session times out, a page
// fetch fails, or ctx is cancelled.
func Run[T any](ctx context.Context, o Options[T]) (Outcome, error) {
	s := o.Session
	if o.Timeout <= 0 {
		o.Timeout = constants.DefaultNavigationTimeout
	}
	if o.DescribeError == nil {
		o.DescribeError = func(err error) string { return "An error occurred: " + err.Error() }
	}
	log := logger.ForSession(s.ID, s.Owner)

	var card render.Card
	var live map[string]Control
	needsRender := true

	for {
		if needsRender {
			items, total, err := o.Source.Page(ctx, s.CurrentPage)
			if err != nil {
				log.WithFields(logrus.Fields{"page": s.CurrentPage, "error": err}).Warn("pager-page-fetch-failed")
				if failErr := o.Display.Fail(ctx, o.DescribeError(err)); failErr != nil {
					log.WithField("error", failErr).Warn("pager-failed-to-show-error")
				}
				return OutcomeFailed, err
			}
			s.TotalPages = total

			card = o.Render(items, s.CurrentPage, total)
			controls := buildControls(s.ID, s.CurrentPage, total, len(items), card)
			if err := o.Display.Update(ctx, card.Document, controls); err != nil {
				log.WithField("error", err).Error("pager-failed-to-update-display")
				return OutcomeFailed, err
			}
			live = indexControls(controls)

			log.WithFields(logrus.Fields{
				"page":  s.CurrentPage,
				"total": total,
				"items": len(items),
			}).Debug("pager-page-rendered")
		}

		ev, ctrl, err := waitForControl(ctx, o.Events, s, live, o.Timeout)
		switch {
		case errors.Is(err, errTimedOut):
			log.WithField("page", s.CurrentPage).Info("pager-timed-out")
			if expErr := o.Display.Expire(ctx); expErr != nil {
				log.WithField("error", expErr).Warn("pager-failed-to-expire-display")
			}
			return OutcomeTimedOut, nil
		case err != nil:
			log.WithField("error", err).Info("pager-cancelled")
			expireCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownExpireTimeout)
			if expErr := o.Display.Expire(expireCtx); expErr != nil {
				log.WithField("error", expErr).Warn("pager-failed-to-expire-display")
			}
			cancel()
			return OutcomeCancelled, err
		}

		switch ctrl.Kind {
		case KindCopy:
			if err := ev.Interaction.RespondPrivate(render.CopyBlock(card.Copy)); err != nil {
				log.WithField("error", err).Warn("pager-failed-to-send-copy")
			}
			needsRender = false
		case KindNavigate:
			if err := ev.Interaction.Acknowledge(); err != nil {
				log.WithField("error", err).Warn("pager-failed-to-acknowledge")
			}
			s.CurrentPage = target(ctrl.Action, s.CurrentPage, s.TotalPages)
			needsRender = true
			log.WithFields(logrus.Fields{"action": ctrl.Action, "page": s.CurrentPage}).Debug("pager-navigated")
		}
	}
}

var errTimedOut = errors.New("navigation wait timed out")

// waitForControl blocks until the owner presses a live control on the
// anchored message. Other events are answered and skipped without
// extending the deadline.
func waitForControl(ctx context.Context, events <-chan Event, s *Session, live map[string]Control, timeout time.Duration) (Event, Control, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Event{}, Control{}, ctx.Err()
		case <-timer.C:
			return Event{}, Control{}, errTimedOut
		case ev, ok := <-events:
			if !ok {
				return Event{}, Control{}, context.Canceled
			}
			if ev.MessageID != s.AnchorMessageID {
				continue
			}
			if ev.UserID != s.Owner {
				if ev.Interaction != nil {
					_ = ev.Interaction.RespondPrivate(NotOwnerNotice)
				}
				continue
			}
			ctrl, ok := live[ev.CustomID]
			if !ok || (ctrl.Kind != KindNavigate && ctrl.Kind != KindCopy) {
				if ev.Interaction != nil {
					_ = ev.Interaction.Acknowledge()
				}
				continue
			}
			return ev, ctrl, nil
		}
	}
}

func indexControls(controls []Control) map[string]Control {
	m := make(map[string]Control, len(controls))
	for _, c := range controls {
		if c.ID != "" {
			m[c.ID] = c
		}
	}
	return m
}
