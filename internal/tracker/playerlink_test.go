package tracker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ayonpaul8906/skillbite-engine/internal/player"
	"github.com/ayonpaul8906/skillbite-engine/internal/tracker"
)

type fakePlayer struct {
	mu       sync.Mutex
	current  float64
	duration float64
}

func (f *fakePlayer) Position() (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.duration
}

func (f *fakePlayer) seek(current float64) {
	f.mu.Lock()
	f.current = current
	f.mu.Unlock()
}

func TestEngine_VideoThresholdMarksCompleted(t *testing.T) {
	store := newScriptedStore()
	c := seedCourse(t, store, "c1", false, false)
	e, err := tracker.NewEngine(tracker.Config{
		Store:          store,
		SampleInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()
	if err := e.LoadCourses(context.Background(), "user-1"); err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}

	// First incomplete resource is the video at index 0.
	feed := &fakePlayer{current: 100, duration: 600}
	if err := e.AttachPlayer(feed); err != nil {
		t.Fatalf("AttachPlayer() error = %v", err)
	}
	e.PlayerStateChanged(player.StatePlaying)

	// Below threshold: progress flows but nothing completes.
	waitFor(t, func() bool {
		snap := e.Snapshot()
		return snap.Courses[0].Resources[0].Progress > 0
	}, "no progress recorded while playing")
	if e.Completed(c.Resources[0].ID) {
		t.Fatal("resource completed below the threshold")
	}

	// Crossing 0.90 marks it completed and persists the list.
	feed.seek(540)
	waitFor(t, func() bool { return e.Completed(c.Resources[0].ID) }, "threshold did not complete the resource")

	remote, err := store.LoadCourses(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if !remote[0].Resources[0].Completed {
		t.Error("completion was not written through the gateway")
	}
}

func TestEngine_AttachPlayer_RejectsNonVideo(t *testing.T) {
	store := newScriptedStore()
	seedCourse(t, store, "c1", true, false) // first incomplete is the article at index 1
	e := newLoadedEngine(t, store)

	if err := e.AttachPlayer(&fakePlayer{}); err == nil {
		t.Error("AttachPlayer() should reject a non-video active resource")
	}
}

func TestEngine_SelectCourse_DiscardsEphemeralProgress(t *testing.T) {
	store := newScriptedStore()
	seedCourse(t, store, "c1", false, false)
	seedCourse(t, store, "c2", false)
	e, err := tracker.NewEngine(tracker.Config{
		Store:          store,
		SampleInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()
	if err := e.LoadCourses(context.Background(), "user-1"); err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}

	feed := &fakePlayer{current: 100, duration: 600}
	if err := e.AttachPlayer(feed); err != nil {
		t.Fatalf("AttachPlayer() error = %v", err)
	}
	e.PlayerStateChanged(player.StatePlaying)
	waitFor(t, func() bool {
		return e.Snapshot().Courses[0].Resources[0].Progress > 0
	}, "no progress recorded")

	e.SelectCourse("c2")

	// Progress recorded for c1's video is scoped to its session and gone.
	snap := e.Snapshot()
	if snap.Courses[0].Resources[0].Progress != 0 {
		t.Error("ephemeral progress for the previous course should be discarded")
	}

	// The previous session is closed; further ticks record nothing.
	time.Sleep(10 * time.Millisecond)
	if e.Snapshot().Courses[0].Resources[0].Progress != 0 {
		t.Error("stale sampler kept recording after course switch")
	}
}

func TestEngine_PlayerStateChanged_NoSession(t *testing.T) {
	store := newScriptedStore()
	seedCourse(t, store, "c1", false)
	e := newLoadedEngine(t, store)

	// Must not panic without an attached player.
	e.PlayerStateChanged(player.StatePlaying)
	e.PlayerStateChanged(player.StatePaused)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(time.Millisecond):
		}
	}
}
