// Package recommend handles intake of learning-path payloads produced by the
// upstream recommendation service. The payload is validated, normalized into
// the course model, and handed to the store; this package never generates
// recommendations itself.
package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
)

// Payload is the opaque shape the recommendation service produces.
type Payload struct {
	CareerSummary         string            `json:"career_summary,omitempty"`
	FutureScope           string            `json:"future_scope,omitempty"`
	JobSuccessProbability string            `json:"job_success_probability,omitempty"`
	Resources             []PayloadResource `json:"resources"`
}

// PayloadResource is one recommended learning item as delivered upstream.
// The completed flag is optional; intake defaults it to false.
type PayloadResource struct {
	Title               string `json:"title,omitempty"`
	Link                string `json:"link"`
	Summary             string `json:"summary,omitempty"`
	RecommendedNextStep string `json:"recommended_next_step,omitempty"`
	Duration            int    `json:"duration,omitempty"`
	Completed           bool   `json:"completed,omitempty"`
}

const payloadSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["resources"],
	"properties": {
		"career_summary": {"type": "string"},
		"future_scope": {"type": "string"},
		"job_success_probability": {"type": "string"},
		"resources": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["link"],
				"properties": {
					"title": {"type": "string"},
					"link": {"type": "string", "minLength": 1},
					"summary": {"type": "string"},
					"recommended_next_step": {"type": "string"},
					"duration": {"type": "integer", "minimum": 0},
					"completed": {"type": "boolean"}
				}
			}
		}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(payloadSchema)

// Validate checks a raw payload against the intake schema.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validating payload: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		first := "invalid payload"
		if len(errs) > 0 {
			first = errs[0].String()
		}
		return fmt.Errorf("payload schema violation: %s", first)
	}
	return nil
}

// Decode validates and unmarshals a raw payload.
func Decode(raw []byte) (Payload, error) {
	if err := Validate(raw); err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decoding payload: %w", err)
	}
	return p, nil
}

// Normalize turns a validated payload into a course document: resource ids
// derive from links, titles fall back to the recommended next step, order is
// preserved, and completion defaults to false where absent.
func Normalize(courseID, name, goal, skills string, p Payload) course.Course {
	c := course.Course{
		ID:     courseID,
		Name:   name,
		Goal:   goal,
		Skills: skills,
	}
	if c.ID == "" {
		c.ID = DeriveCourseID(goal, skills)
	}
	if c.Name == "" {
		c.Name = p.CareerSummary
	}

	for _, pr := range p.Resources {
		title := pr.Title
		if title == "" {
			title = pr.RecommendedNextStep
		}
		r := course.NewResource(title, pr.Link, pr.Summary, pr.Duration)
		r.Completed = pr.Completed
		c.Resources = append(c.Resources, r)
	}
	return c
}

// DeriveCourseID builds a stable course identity from the learner's goal and
// skills, so re-importing the same request overwrites rather than duplicates.
func DeriveCourseID(goal, skills string) string {
	sum := sha256.Sum256([]byte(goal + "\x00" + skills))
	return hex.EncodeToString(sum[:8])
}
