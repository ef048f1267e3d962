package syncstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ayonpaul8906/skillbite-engine/internal/syncstore"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("skillbite"),
		tcpostgres.WithUsername("skillbite"),
		tcpostgres.WithPassword("skillbite"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	store, err := syncstore.NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	if err := store.SaveCourse(ctx, "user-1", sampleCourse("c1")); err != nil {
		t.Fatalf("SaveCourse() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond) // distinct created_at for ordering
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
	if courses[0].ID != "c1" {
		t.Errorf("first course = %q, want c1", courses[0].ID)
	}
	if len(courses[0].Resources) != 2 {
		t.Fatalf("resources = %d, want 2", len(courses[0].Resources))
	}

	// Whole-list overwrite flips one flag, leaves the rest intact.
	updated := courses[0].CloneResources()
	updated[1].Completed = true
	if err := store.WriteResources(ctx, "user-1", "c1", updated); err != nil {
		t.Fatalf("WriteResources() error = %v", err)
	}

	courses, err = store.LoadCourses(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if courses[0].Resources[0].Completed {
		t.Error("unrelated resource flipped")
	}
	if !courses[0].Resources[1].Completed {
		t.Error("completed flag not persisted")
	}
	// Course metadata survives a resource-list overwrite.
	if courses[0].Goal == "" {
		t.Error("course metadata clobbered by resource write")
	}
}

func TestPostgresStore_AbsentIdentity(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	store, err := syncstore.NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	courses, err := store.LoadCourses(ctx, "nobody")
	if err != nil {
		t.Fatalf("LoadCourses() error = %v, want nil for absent identity", err)
	}
	if len(courses) != 0 {
		t.Errorf("LoadCourses() = %d courses, want 0", len(courses))
	}
}

func TestPostgresStore_WriteUnknownCourse(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	store, err := syncstore.NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	err = store.WriteResources(ctx, "user-1", "missing", nil)
	var wf *syncstore.WriteFailure
	if !errors.As(err, &wf) {
		t.Errorf("error = %v (%T), want *WriteFailure", err, err)
	}
}
