package tracker

// EventType labels a state-change notification.
type EventType string

const (
	EventCoursesLoaded     EventType = "courses_loaded"
	EventSelectionChanged  EventType = "selection_changed"
	EventResourceCompleted EventType = "resource_completed"
	EventWriteFailed       EventType = "write_failed"
	EventProgress          EventType = "progress"
)

// Event notifies subscribers that engine state changed and a re-render is
// due. It carries enough to update incrementally; a full Snapshot is always
// available for the rest.
type Event struct {
	Type       EventType `json:"type"`
	CourseID   string    `json:"course_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Completed  bool      `json:"completed,omitempty"`
	Fraction   float64   `json:"fraction,omitempty"`
	Err        string    `json:"error,omitempty"`
}

const subscriberBuffer = 16

// Subscribe registers a state-change listener. The returned cancel func must
// be called when the listener goes away. Slow subscribers lose events rather
// than blocking the engine.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if e.closed {
		close(ch)
		return ch, func() {}
	}

	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (e *Engine) publish(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default: // subscriber is behind, drop
		}
	}
}
