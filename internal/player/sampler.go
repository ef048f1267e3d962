// Package player samples playback progress from an external video player and
// raises a completion signal when the watched fraction crosses the threshold.
//
// The package never initializes or controls the player; it only consumes the
// position and state the player reports.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultInterval is the sampling cadence while the player is playing.
	DefaultInterval = time.Second
	// DefaultThreshold is the watched fraction that counts as completed.
	DefaultThreshold = 0.90
)

// State mirrors the playback states the external player reports.
type State int

const (
	StateUnstarted State = iota
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateEnded:
		return "ended"
	default:
		return "unstarted"
	}
}

// Feed exposes the current playback position of an already-initialized
// player. Duration may be zero or negative while the player is still loading.
type Feed interface {
	Position() (current, duration float64)
}

// Config holds the dependencies for a sampling session.
type Config struct {
	ResourceID string
	Feed       Feed
	Interval   time.Duration // defaults to DefaultInterval
	Threshold  float64       // defaults to DefaultThreshold

	// AlreadyCompleted suppresses the threshold signal for resources that
	// are completed before the session starts. Optional.
	AlreadyCompleted func(resourceID string) bool

	// OnProgress receives every sampled fraction, including after the
	// threshold signal fired. Optional.
	OnProgress func(resourceID string, fraction float64)

	// OnThreshold fires at most once per session, the first time the
	// fraction reaches the threshold. Optional.
	OnThreshold func(resourceID string)
}

// Session owns the sampling cadence for one video resource. It is created
// when a video resource becomes active and must be closed when the selection
// moves on; a session that keeps ticking for a stale resource is a leak.
type Session struct {
	cfg Config

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	signaled bool
	closed   bool
}

// NewSession creates a sampling session for one resource.
func NewSession(cfg Config) (*Session, error) {
	if cfg.ResourceID == "" {
		return nil, fmt.Errorf("resource id is required")
	}
	if cfg.Feed == nil {
		return nil, fmt.Errorf("player feed is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Session{cfg: cfg}, nil
}

// ResourceID returns the resource this session samples.
func (s *Session) ResourceID() string {
	return s.cfg.ResourceID
}

// SetState reacts to a player state change. Sampling runs only while the
// player reports playing; any other state cancels the cadence. Restarting is
// allowed indefinitely until the session is closed.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var wait chan struct{}
	if state == StatePlaying {
		s.startLocked()
	} else {
		wait = s.stopLocked()
	}
	s.mu.Unlock()

	// Wait for the cadence goroutine outside the lock; a tick in flight may
	// need the lock to finish.
	if wait != nil {
		<-wait
	}
}

// Tick samples the player once. The cadence loop calls this on every
// interval; it is exported so callers with an event-driven player can feed
// samples directly without the timer.
func (s *Session) Tick() {
	current, duration := s.cfg.Feed.Position()
	if duration <= 0 {
		// Player not ready yet.
		return
	}

	fraction := current / duration
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	if s.cfg.OnProgress != nil {
		s.cfg.OnProgress(s.cfg.ResourceID, fraction)
	}

	if fraction < s.cfg.Threshold {
		return
	}

	s.mu.Lock()
	fire := !s.signaled && !s.closed
	if fire && s.cfg.AlreadyCompleted != nil && s.cfg.AlreadyCompleted(s.cfg.ResourceID) {
		fire = false
	}
	if fire {
		s.signaled = true
	}
	s.mu.Unlock()

	if fire && s.cfg.OnThreshold != nil {
		s.cfg.OnThreshold(s.cfg.ResourceID)
	}
}

// Close cancels the cadence and retires the session permanently.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	wait := s.stopLocked()
	s.mu.Unlock()

	if wait != nil {
		<-wait
	}
}

func (s *Session) startLocked() {
	if s.cancel != nil {
		return // already sampling
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// stopLocked cancels the cadence and returns the channel that closes once
// the goroutine exits, or nil when nothing was running.
func (s *Session) stopLocked() chan struct{} {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	done := s.done
	s.done = nil
	return done
}

func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
