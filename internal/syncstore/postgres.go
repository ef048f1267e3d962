package syncstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps one jsonb document per (identity, course). The course
// document is the persisted unit; the resource list inside it is the unit of
// update, matching the gateway contract.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed course store and ensures the
// learning_paths table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS learning_paths (
			identity   text        NOT NULL,
			course_id  text        NOT NULL,
			doc        jsonb       NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (identity, course_id)
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure learning_paths table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) LoadCourses(ctx context.Context, identity string) ([]course.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM learning_paths WHERE identity = $1 ORDER BY created_at ASC`,
		identity,
	)
	if err != nil {
		return nil, &LoadFailure{Identity: identity, Err: err}
	}
	defer rows.Close()

	var courses []course.Course
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, &LoadFailure{Identity: identity, Err: err}
		}
		var c course.Course
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, &LoadFailure{Identity: identity, Err: fmt.Errorf("decode course document: %w", err)}
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadFailure{Identity: identity, Err: err}
	}
	return courses, nil
}

func (s *PostgresStore) WriteResources(ctx context.Context, identity, courseID string, resources []course.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	doc, err := json.Marshal(resources)
	if err != nil {
		return &WriteFailure{Identity: identity, CourseID: courseID, Err: fmt.Errorf("encode resources: %w", err)}
	}

	cmd, err := s.pool.Exec(ctx,
		`UPDATE learning_paths
		 SET doc = jsonb_set(doc, '{resources}', $3::jsonb), updated_at = now()
		 WHERE identity = $1 AND course_id = $2`,
		identity, courseID, string(doc),
	)
	if err != nil {
		return &WriteFailure{Identity: identity, CourseID: courseID, Err: err}
	}
	if cmd.RowsAffected() == 0 {
		return &WriteFailure{Identity: identity, CourseID: courseID, Err: fmt.Errorf("course not found")}
	}
	return nil
}

func (s *PostgresStore) SaveCourse(ctx context.Context, identity string, c course.Course) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode course document: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO learning_paths (identity, course_id, doc)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (identity, course_id)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		identity, c.ID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save course %q for %q: %w", c.ID, identity, err)
	}
	return nil
}
