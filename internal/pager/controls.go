package pager

import (
	"fmt"
	"strings"

	"github.com/keepmind9/scriptbot/internal/render"
	"github.com/keepmind9/scriptbot/pkg/constants"
)

// Kind tags what a Control does when rendered and pressed.
type Kind int

const (
	KindNavigate Kind = iota // moves to another page
	KindLabel                // disabled page indicator
	KindLink                 // opens an external URL, never reaches the pager
	KindCopy                 // sends the card's full content privately
)

// Action identifies a pressable control.
type Action string

const (
	ActionFirst    Action = "first"
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
	ActionLast     Action = "last"
	ActionCopy     Action = "copy"
	ActionLabel    Action = "label"
)

// Row groups controls the way the platform lays them out.
const (
	RowNavigation = 0
	RowContent    = 1
)

// Control is one rendered button.
type Control struct {
	ID       string // opaque action id, empty for links
	Kind     Kind
	Action   Action
	Label    string
	URL      string
	Disabled bool
	Row      int
}

// Layout computes the navigation controls for a page. total is Unknown when
// the source never reported one.
//
// first/previous need page > 1, next needs page < total (or an unknown
// total) and last needs a known total greater than page. A single known page
// gets no navigation controls at all.
func Layout(page, total, itemCount int) []Control {
	if itemCount <= 0 {
		return nil
	}
	if total != Unknown && total <= 1 {
		return nil
	}

	nav := func(a Action, label string) Control {
		return Control{Kind: KindNavigate, Action: a, Label: label, Row: RowNavigation}
	}

	var out []Control
	if page > 1 {
		out = append(out, nav(ActionFirst, "⏪"), nav(ActionPrevious, "◀️"))
	}
	out = append(out, Control{
		Kind:     KindLabel,
		Action:   ActionLabel,
		Label:    "Page " + render.PageLabel(page, total),
		Disabled: true,
		Row:      RowNavigation,
	})
	if total == Unknown || page < total {
		out = append(out, nav(ActionNext, "▶️"))
	}
	if total != Unknown && page < total {
		out = append(out, nav(ActionLast, "⏩"))
	}
	return out
}

// contentControls returns the card-specific actions: link buttons and copy.
func contentControls(card render.Card) []Control {
	var out []Control
	for _, l := range card.Links {
		if len(out) >= constants.MaxButtonsPerRow-1 {
			break
		}
		out = append(out, Control{
			Kind:  KindLink,
			Label: render.Truncate(l.Label, constants.MaxButtonLabelLength),
			URL:   l.URL,
			Row:   RowContent,
		})
	}
	if card.Copy != "" {
		out = append(out, Control{Kind: KindCopy, Action: ActionCopy, Label: "Copy Script", Row: RowContent})
	}
	return out
}

// buildControls lays out a full page and assigns action ids scoped to the
// session so clicks on other sessions' messages never resolve here.
func buildControls(sessionID string, page, total, itemCount int, card render.Card) []Control {
	controls := append(Layout(page, total, itemCount), contentControls(card)...)
	for i := range controls {
		if controls[i].Kind != KindLink {
			controls[i].ID = ControlID(sessionID, controls[i].Action)
		}
	}
	return controls
}

// idPrefix marks component ids owned by the pager.
const idPrefix = "sp"

// ControlID builds the opaque id carried by a control.
func ControlID(sessionID string, a Action) string {
	return fmt.Sprintf("%s:%s:%s", idPrefix, sessionID, a)
}

// IsControlID reports whether id was produced by ControlID.
func IsControlID(id string) bool {
	return strings.HasPrefix(id, idPrefix+":")
}

// target returns the page an action moves to.
func target(a Action, page, total int) int {
	switch a {
	case ActionFirst:
		return 1
	case ActionPrevious:
		return page - 1
	case ActionNext:
		return page + 1
	case ActionLast:
		return total
	}
	return page
}
