// Package syncstore is the narrow gateway to the remote course store. The
// engine reads a learner's course documents and overwrites resource lists
// through it; everything else about the store is somebody else's problem.
package syncstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
)

// CourseStore is the synchronization gateway. Implementations must be safe
// for concurrent use; concurrent writes for the same course may race and the
// last write wins at the store.
type CourseStore interface {
	// LoadCourses fetches every course document for the identity, in the
	// order they were created. An absent identity yields (nil, nil).
	// Failures are reported as *LoadFailure.
	LoadCourses(ctx context.Context, identity string) ([]course.Course, error)

	// WriteResources overwrites the stored resource list for one course.
	// The whole list is the unit of update, never a per-resource delta.
	// Failures are reported as *WriteFailure.
	WriteResources(ctx context.Context, identity, courseID string, resources []course.Resource) error
}

// CourseImporter persists a newly generated course document. The intake path
// uses it; the engine itself never creates courses.
type CourseImporter interface {
	SaveCourse(ctx context.Context, identity string, c course.Course) error
}

// MemoryStore is an in-memory CourseStore and CourseImporter, used by tests
// and by store-less runs.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[string][]course.Course
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{courses: make(map[string][]course.Course)}
}

func (s *MemoryStore) LoadCourses(_ context.Context, identity string) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.courses[identity]
	if !ok {
		return nil, nil
	}
	out := make([]course.Course, len(stored))
	for i, c := range stored {
		c.Resources = c.CloneResources()
		out[i] = c
	}
	return out, nil
}

func (s *MemoryStore) WriteResources(_ context.Context, identity, courseID string, resources []course.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.courses[identity] {
		if c.ID != courseID {
			continue
		}
		rs := make([]course.Resource, len(resources))
		copy(rs, resources)
		s.courses[identity][i].Resources = rs
		return nil
	}
	return &WriteFailure{Identity: identity, CourseID: courseID, Err: fmt.Errorf("course not found")}
}

func (s *MemoryStore) SaveCourse(_ context.Context, identity string, c course.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Resources = c.CloneResources()
	for i, existing := range s.courses[identity] {
		if existing.ID == c.ID {
			s.courses[identity][i] = c
			return nil
		}
	}
	s.courses[identity] = append(s.courses[identity], c)
	return nil
}
