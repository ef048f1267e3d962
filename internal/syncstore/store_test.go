package syncstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
)

func sampleCourse(id string) course.Course {
	return course.Course{
		ID:   id,
		Name: "Backend Path",
		Goal: "Become a backend developer",
		Resources: []course.Resource{
			course.NewResource("Intro video", "https://youtu.be/dQw4w9WgXcQ", "watch this", 12),
			course.NewResource("Go article", "https://example.com/go-basics", "read this", 20),
		},
	}
}

func TestMemoryStore_AbsentIdentityIsEmptyResult(t *testing.T) {
	store := syncstore.NewMemoryStore()

	courses, err := store.LoadCourses(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v, want nil for absent identity", err)
	}
	if len(courses) != 0 {
		t.Errorf("LoadCourses() = %d courses, want 0", len(courses))
	}
}

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := syncstore.NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveCourse(ctx, "user-1", sampleCourse("c1")); err != nil {
		t.Fatalf("SaveCourse() error = %v", err)
	}
	if err := store.SaveCourse(ctx, "user-1", sampleCourse("c2")); err != nil {
		t.Fatalf("SaveCourse() error = %v", err)
	}

	courses, err := store.LoadCourses(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("LoadCourses() = %d courses, want 2", len(courses))
	}
	if courses[0].ID != "c1" || courses[1].ID != "c2" {
		t.Errorf("courses out of order: %s, %s", courses[0].ID, courses[1].ID)
	}
}

func TestMemoryStore_WriteResourcesOverwritesList(t *testing.T) {
	store := syncstore.NewMemoryStore()
	ctx := context.Background()

	c := sampleCourse("c1")
	if err := store.SaveCourse(ctx, "user-1", c); err != nil {
		t.Fatalf("SaveCourse() error = %v", err)
	}

	updated := c.CloneResources()
	updated[0].Completed = true
	if err := store.WriteResources(ctx, "user-1", "c1", updated); err != nil {
		t.Fatalf("WriteResources() error = %v", err)
	}

	courses, err := store.LoadCourses(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if !courses[0].Resources[0].Completed {
		t.Error("WriteResources() did not persist the completed flag")
	}
	if courses[0].Resources[1].Completed {
		t.Error("WriteResources() flipped an unrelated resource")
	}
}

func TestMemoryStore_WriteUnknownCourse(t *testing.T) {
	store := syncstore.NewMemoryStore()

	err := store.WriteResources(context.Background(), "user-1", "missing", nil)
	if err == nil {
		t.Fatal("WriteResources() should fail for an unknown course")
	}
	var wf *syncstore.WriteFailure
	if !errors.As(err, &wf) {
		t.Errorf("error = %T, want *WriteFailure", err)
	}
}

func TestMemoryStore_LoadReturnsCopies(t *testing.T) {
	store := syncstore.NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveCourse(ctx, "user-1", sampleCourse("c1")); err != nil {
		t.Fatalf("SaveCourse() error = %v", err)
	}

	first, _ := store.LoadCourses(ctx, "user-1")
	first[0].Resources[0].Completed = true

	second, _ := store.LoadCourses(ctx, "user-1")
	if second[0].Resources[0].Completed {
		t.Error("mutating a loaded course leaked into the store")
	}
}
