package tracker

import "github.com/ayonpaul8906/skillbite-engine/internal/course"

// Status is the derived navigation state.
type Status int

const (
	// StatusNoCourseSelected holds until the first successful load, and
	// whenever the active course has no resources.
	StatusNoCourseSelected Status = iota
	// StatusCourseLoaded means a course with at least one incomplete
	// resource is active.
	StatusCourseLoaded
	// StatusAllResourcesCompleted is a read-only projection: every
	// resource in the active course is completed. Navigation stays open;
	// the learner may revisit anything.
	StatusAllResourcesCompleted
)

func (s Status) String() string {
	switch s {
	case StatusCourseLoaded:
		return "course_loaded"
	case StatusAllResourcesCompleted:
		return "all_resources_completed"
	default:
		return "no_course_selected"
	}
}

// SelectCourse switches the active course. Selection always resets to the
// first-incomplete-else-first resource of the new course, and the previous
// course's ephemeral video progress is discarded. Unknown ids are ignored.
func (e *Engine) SelectCourse(id string) {
	e.mu.Lock()
	target := -1
	for i, c := range e.courses {
		if c.ID == id {
			target = i
			break
		}
	}
	if target < 0 || target == e.activeCourse {
		e.mu.Unlock()
		return
	}
	session := e.detachSessionLocked()
	e.resetSelectionLocked(target)
	ev := Event{Type: EventSelectionChanged, CourseID: id}
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	e.publish(ev)
}

// SelectResource sets the active resource directly (sidebar pick).
// Out-of-range indexes are ignored, not errors.
func (e *Engine) SelectResource(index int) {
	e.mu.Lock()
	c, ok := e.activeCourseLocked()
	if !ok || index < 0 || index >= len(c.Resources) || index == e.activeResource {
		e.mu.Unlock()
		return
	}
	session := e.detachSessionLocked()
	e.activeResource = index
	ev := Event{Type: EventSelectionChanged, CourseID: c.ID, ResourceID: c.Resources[index].ID}
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	e.publish(ev)
}

// Advance moves to the next resource. There is no wraparound; at the last
// index it is a no-op.
func (e *Engine) Advance() {
	e.mu.Lock()
	c, ok := e.activeCourseLocked()
	if !ok || e.activeResource < 0 || e.activeResource >= len(c.Resources)-1 {
		e.mu.Unlock()
		return
	}
	session := e.detachSessionLocked()
	e.activeResource++
	ev := Event{Type: EventSelectionChanged, CourseID: c.ID, ResourceID: c.Resources[e.activeResource].ID}
	e.mu.Unlock()

	if session != nil {
		session.Close()
	}
	e.publish(ev)
}

// Status derives the navigation state from the completion map.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statusLocked()
}

func (e *Engine) statusLocked() Status {
	c, ok := e.activeCourseLocked()
	if !ok || len(c.Resources) == 0 {
		return StatusNoCourseSelected
	}
	for _, r := range c.Resources {
		if !e.completion[r.ID] {
			return StatusCourseLoaded
		}
	}
	return StatusAllResourcesCompleted
}

// Snapshot is a read-only view for the presentation layer.
type Snapshot struct {
	Identity            string          `json:"identity,omitempty"`
	Courses             []course.Course `json:"courses"`
	ActiveCourseID      string          `json:"active_course_id,omitempty"`
	ActiveResourceIndex int             `json:"active_resource_index"` // -1 when undefined
	Status              Status          `json:"-"`
	StatusLabel         string          `json:"status"`
	Completion          map[string]bool `json:"completion"`
}

// Snapshot returns a copy of the engine state. Progress fractions recorded
// this session are merged into the resource copies for display.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	courses := make([]course.Course, len(e.courses))
	for i, c := range e.courses {
		c.Resources = c.CloneResources()
		for j := range c.Resources {
			if f, ok := e.progress[c.Resources[j].ID]; ok {
				c.Resources[j].Progress = f
			}
		}
		courses[i] = c
	}

	completion := make(map[string]bool, len(e.completion))
	for k, v := range e.completion {
		completion[k] = v
	}

	status := e.statusLocked()
	return Snapshot{
		Identity:            e.identity,
		Courses:             courses,
		ActiveCourseID:      e.activeCourseIDLocked(),
		ActiveResourceIndex: e.activeResource,
		Status:              status,
		StatusLabel:         status.String(),
		Completion:          completion,
	}
}

// resetSelectionLocked activates the given course index and applies the
// first-incomplete-else-first rule. Ephemeral progress is scoped to one
// course session, so it is discarded here.
func (e *Engine) resetSelectionLocked(courseIdx int) {
	e.activeCourse = courseIdx
	e.activeResource = -1
	e.progress = make(map[string]float64)

	c, ok := e.activeCourseLocked()
	if !ok || len(c.Resources) == 0 {
		return
	}
	idx := 0
	for i, r := range c.Resources {
		if !e.completion[r.ID] {
			idx = i
			break
		}
	}
	e.activeResource = idx
}

func (e *Engine) activeCourseLocked() (course.Course, bool) {
	if e.activeCourse < 0 || e.activeCourse >= len(e.courses) {
		return course.Course{}, false
	}
	return e.courses[e.activeCourse], true
}
