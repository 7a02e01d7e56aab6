package input

import (
	"log/slog"
	"time"

	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/events"
	"github.com/valerio/jeebie-runner/jeebie/input/action"
	"github.com/valerio/jeebie-runner/jeebie/input/event"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// CommandSender is the producer end of a runner command channel.
type CommandSender interface {
	Send(cmd runner.Command) error
}

// Manager routes input actions. Game Boy buttons become runner commands,
// everything else goes to the registered callbacks.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	sender        CommandSender
	clock         events.Clock
}

func NewManager(sender CommandSender, clock events.Clock) *Manager {
	if clock == nil {
		clock = events.SystemClock
	}
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		sender:        sender,
		clock:         clock,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type. It returns false when the
// event was debounced or had nowhere to go.
func (m *Manager) Trigger(act action.Action, evt event.Type) bool {
	if button, ok := act.Button(); ok {
		return m.sendButton(button, evt)
	}

	if evt == event.Press || evt == event.Release {
		now := m.clock.Now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if last, seen := m.lastTriggered[act][evt]; seen && now.Sub(last) < debounceDuration {
			return false
		}
		m.lastTriggered[act][evt] = now
	}

	callbacks := m.handlers[act][evt]
	for _, callback := range callbacks {
		callback()
	}
	return len(callbacks) > 0
}

func (m *Manager) sendButton(button core.Button, evt event.Type) bool {
	if m.sender == nil {
		return false
	}

	var cmd runner.Command
	switch evt {
	case event.Press:
		cmd = runner.ButtonPressed{Button: button}
	case event.Release:
		cmd = runner.ButtonReleased{Button: button}
	default:
		return false
	}

	if err := m.sender.Send(cmd); err != nil {
		slog.Debug("Button dropped", "button", button, "error", err)
		return false
	}
	return true
}
