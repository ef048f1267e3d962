// Package tracker keeps a local, optimistic view of learning-path completion
// consistent with the authoritative remote record. It owns the completion
// map, the selection state, and the active player session; views read
// snapshots and call its operations, never mutating state directly.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
	"github.com/ayonpaul8906/skillbite-engine/internal/player"
	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
)

// Config holds dependencies for the engine.
type Config struct {
	Store syncstore.CourseStore
	Hints syncstore.ProgressHints // optional, defaults to NopHints

	SampleInterval time.Duration // defaults to player.DefaultInterval
	Threshold      float64       // defaults to player.DefaultThreshold
}

// Engine is the progress tracking and synchronization core.
type Engine struct {
	store     syncstore.CourseStore
	hints     syncstore.ProgressHints
	interval  time.Duration
	threshold float64

	mu             sync.RWMutex
	identity       string
	courses        []course.Course
	completion     map[string]bool    // resource id -> completed, all loaded courses
	progress       map[string]float64 // resource id -> fraction, active course session only
	activeCourse   int                // index into courses, -1 when none
	activeResource int                // index into active course resources, -1 when empty
	session        *player.Session

	subs    map[int]chan Event
	nextSub int
	closed  bool
}

// NewEngine creates an engine backed by the given gateway.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("course store is required")
	}
	hints := cfg.Hints
	if hints == nil {
		hints = syncstore.NopHints{}
	}
	interval := cfg.SampleInterval
	if interval <= 0 {
		interval = player.DefaultInterval
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = player.DefaultThreshold
	}
	return &Engine{
		store:          cfg.Store,
		hints:          hints,
		interval:       interval,
		threshold:      threshold,
		completion:     make(map[string]bool),
		progress:       make(map[string]float64),
		activeCourse:   -1,
		activeResource: -1,
		subs:           make(map[int]chan Event),
	}, nil
}

// LoadCourses fetches the courses for an identity and resets selection. A
// missing identity means no courses, not an error. On a load failure the
// previous local state is kept and the typed failure is returned for the
// caller's banner.
func (e *Engine) LoadCourses(ctx context.Context, identity string) error {
	if identity == "" {
		e.mu.Lock()
		session := e.detachSessionLocked()
		e.identity = ""
		e.courses = nil
		e.completion = make(map[string]bool)
		e.resetSelectionLocked(-1)
		e.mu.Unlock()

		if session != nil {
			session.Close()
		}
		e.publish(Event{Type: EventCoursesLoaded})
		return nil
	}

	loaded, err := e.store.LoadCourses(ctx, identity)
	if err != nil {
		return err
	}

	e.mu.Lock()
	session := e.detachSessionLocked()
	e.identity = identity
	e.courses = loaded
	e.completion = make(map[string]bool)
	for _, c := range e.courses {
		for _, r := range c.Resources {
			e.completion[r.ID] = r.Completed
		}
	}
	active := -1
	if len(e.courses) > 0 {
		active = 0
	}
	e.resetSelectionLocked(active)
	ev := Event{Type: EventCoursesLoaded, CourseID: e.activeCourseIDLocked()}
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	e.publish(ev)
	return nil
}

// SetCompleted flips a resource's completion state: optimistic local apply,
// then a remote read-modify-write, and an exact rollback when the write
// fails. The new local value is visible to snapshot readers before the
// remote call is issued.
func (e *Engine) SetCompleted(ctx context.Context, courseID, resourceLink string, completed bool) error {
	e.mu.Lock()
	ci, ri := e.findResourceLocked(courseID, resourceLink)
	if ci < 0 {
		e.mu.Unlock()
		return fmt.Errorf("unknown resource %q in course %q", resourceLink, courseID)
	}

	res := &e.courses[ci].Resources[ri]
	// Each call captures the value it must restore to, never a shared
	// variable and never a negation.
	prior := res.Completed
	if prior == completed && e.completion[res.ID] == completed {
		e.mu.Unlock()
		return nil // idempotent no-op, no remote call
	}

	res.Completed = completed
	e.completion[res.ID] = completed
	identity := e.identity
	resourceID := res.ID
	applied := Event{Type: EventResourceCompleted, CourseID: courseID, ResourceID: resourceID, Completed: completed}
	e.mu.Unlock()

	e.publish(applied)

	if err := e.writeRemote(ctx, identity, courseID, resourceLink, completed); err != nil {
		e.mu.Lock()
		if ci, ri := e.findResourceLocked(courseID, resourceLink); ci >= 0 {
			e.courses[ci].Resources[ri].Completed = prior
			e.completion[resourceID] = prior
		}
		e.mu.Unlock()

		slog.Warn("completion write failed, rolled back",
			"course_id", courseID,
			"resource_id", resourceID,
			"error", err,
		)
		e.publish(Event{Type: EventWriteFailed, CourseID: courseID, ResourceID: resourceID, Completed: prior, Err: err.Error()})
		return err
	}

	return nil
}

// writeRemote performs the read-modify-write against the gateway: fetch the
// current remote list, replace the one matching entry, write the whole list
// back. The list is the remote unit of update, so the merge happens here
// against a fresh snapshot rather than pushing a stale local copy.
func (e *Engine) writeRemote(ctx context.Context, identity, courseID, resourceLink string, completed bool) error {
	remote, err := e.store.LoadCourses(ctx, identity)
	if err != nil {
		return &syncstore.WriteFailure{Identity: identity, CourseID: courseID, Err: err}
	}

	for _, c := range remote {
		if c.ID != courseID {
			continue
		}
		idx := c.IndexOfLink(resourceLink)
		if idx < 0 {
			return &syncstore.WriteFailure{Identity: identity, CourseID: courseID, Err: fmt.Errorf("resource not in remote list")}
		}
		resources := c.CloneResources()
		resources[idx].Completed = completed
		return e.store.WriteResources(ctx, identity, courseID, resources)
	}
	return &syncstore.WriteFailure{Identity: identity, CourseID: courseID, Err: fmt.Errorf("course not in remote store")}
}

// Completed reports the completion map entry for a resource id.
func (e *Engine) Completed(resourceID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.completion[resourceID]
}

// Close shuts the engine down: the player session stops sampling and all
// subscriber channels close.
func (e *Engine) Close() {
	e.mu.Lock()
	session := e.session
	e.session = nil
	e.closed = true
	subs := e.subs
	e.subs = make(map[int]chan Event)
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	for _, ch := range subs {
		close(ch)
	}
}

func (e *Engine) findResourceLocked(courseID, resourceLink string) (int, int) {
	for ci, c := range e.courses {
		if c.ID != courseID {
			continue
		}
		if ri := c.IndexOfLink(resourceLink); ri >= 0 {
			return ci, ri
		}
		return -1, -1
	}
	return -1, -1
}

func (e *Engine) activeCourseIDLocked() string {
	if e.activeCourse < 0 || e.activeCourse >= len(e.courses) {
		return ""
	}
	return e.courses[e.activeCourse].ID
}
