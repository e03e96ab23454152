package bot

import (
	"sync"

	"github.com/keepmind9/scriptbot/internal/pager"
)

// dispatcher routes component clicks to the pager waiting on their message.
type dispatcher struct {
	mu     sync.Mutex
	routes map[string]chan pager.Event
}

func newDispatcher() *dispatcher {
	return &dispatcher{routes: make(map[string]chan pager.Event)}
}

// register opens the event stream for messageID. The returned func closes it.
func (d *dispatcher) register(messageID string) (<-chan pager.Event, func()) {
	ch := make(chan pager.Event)

	d.mu.Lock()
	d.routes[messageID] = ch
	d.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			if d.routes[messageID] == ch {
				delete(d.routes, messageID)
			}
			d.mu.Unlock()
		})
	}
}

// dispatch hands ev to the waiting pager. It reports false when no pager is
// registered for the message or the pager is not waiting right now.
func (d *dispatcher) dispatch(ev pager.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, ok := d.routes[ev.MessageID]
	if !ok {
		return false
	}
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}

func (d *dispatcher) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.routes)
}
