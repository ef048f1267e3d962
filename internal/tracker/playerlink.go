package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
	"github.com/ayonpaul8906/skillbite-engine/internal/player"
)

const hintTimeout = 2 * time.Second

// AttachPlayer binds an external player feed to the currently active
// resource, replacing any previous session. The active resource must be a
// video. Sampling starts only once PlayerStateChanged reports playing.
func (e *Engine) AttachPlayer(feed player.Feed) error {
	e.mu.Lock()
	c, ok := e.activeCourseLocked()
	if !ok || e.activeResource < 0 {
		e.mu.Unlock()
		return fmt.Errorf("no active resource")
	}
	res := c.Resources[e.activeResource]
	if res.Kind() != course.KindVideo {
		e.mu.Unlock()
		return fmt.Errorf("active resource %q is not a video", res.ID)
	}

	old := e.detachSessionLocked()
	courseID := c.ID
	link := res.Link
	session, err := player.NewSession(player.Config{
		ResourceID:       res.ID,
		Feed:             feed,
		Interval:         e.interval,
		Threshold:        e.threshold,
		AlreadyCompleted: e.Completed,
		OnProgress:       e.recordProgress,
		OnThreshold: func(string) {
			e.thresholdReached(courseID, link)
		},
	})
	if err != nil {
		e.mu.Unlock()
		if old != nil {
			old.Close()
		}
		return err
	}
	e.session = session
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// PlayerStateChanged forwards the external player's state to the active
// sampling session. With no session attached it is a no-op.
func (e *Engine) PlayerStateChanged(state player.State) {
	e.mu.RLock()
	session := e.session
	e.mu.RUnlock()

	if session != nil {
		session.SetState(state)
	}
}

// recordProgress stores a sampled fraction locally and mirrors it to the
// hint store. Hints are best-effort: a failed write is logged, never
// surfaced.
func (e *Engine) recordProgress(resourceID string, fraction float64) {
	e.mu.Lock()
	// A tick from a session being torn down can land here after the course
	// switched; samples for resources outside the active course are stale
	// and must not repopulate the freshly reset map.
	if !e.inActiveCourseLocked(resourceID) {
		e.mu.Unlock()
		return
	}
	e.progress[resourceID] = fraction
	identity := e.identity
	e.mu.Unlock()

	e.publish(Event{Type: EventProgress, ResourceID: resourceID, Fraction: fraction})

	ctx, cancel := context.WithTimeout(context.Background(), hintTimeout)
	defer cancel()
	if err := e.hints.Set(ctx, identity, resourceID, fraction); err != nil {
		slog.Warn("progress hint write failed", "resource_id", resourceID, "error", err)
	}
}

// thresholdReached marks the resource completed when the watched fraction
// crosses the threshold. Failures roll back inside SetCompleted and reach
// subscribers as a write_failed event.
func (e *Engine) thresholdReached(courseID, resourceLink string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.SetCompleted(ctx, courseID, resourceLink, true); err != nil {
		slog.Warn("threshold completion failed",
			"course_id", courseID,
			"link", resourceLink,
			"error", err,
		)
	}
}

func (e *Engine) inActiveCourseLocked(resourceID string) bool {
	c, ok := e.activeCourseLocked()
	if !ok {
		return false
	}
	for _, r := range c.Resources {
		if r.ID == resourceID {
			return true
		}
	}
	return false
}

// detachSessionLocked removes the active session so the caller can close it
// after releasing the engine lock; closing under the lock would deadlock
// with a sampler callback re-entering the engine.
func (e *Engine) detachSessionLocked() *player.Session {
	session := e.session
	e.session = nil
	return session
}
