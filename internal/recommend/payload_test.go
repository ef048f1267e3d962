package recommend_test

import (
	"testing"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
	"github.com/ayonpaul8906/skillbite-engine/internal/recommend"
)

const validPayload = `{
	"career_summary": "Backend Engineer",
	"future_scope": "Strong demand for Go services.",
	"job_success_probability": "78%",
	"resources": [
		{
			"title": "Go Concurrency Patterns",
			"link": "https://www.youtube.com/watch?v=f6kdp27TYZs",
			"summary": "Talk on goroutines and channels.",
			"duration": 31
		},
		{
			"link": "https://go.dev/blog/context",
			"recommended_next_step": "Read the context blog post",
			"completed": true
		}
	]
}`

func TestDecode_ValidPayload(t *testing.T) {
	p, err := recommend.Decode([]byte(validPayload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if p.CareerSummary != "Backend Engineer" {
		t.Errorf("CareerSummary = %q", p.CareerSummary)
	}
	if len(p.Resources) != 2 {
		t.Fatalf("len(Resources) = %d, want 2", len(p.Resources))
	}
	if !p.Resources[1].Completed {
		t.Error("Resources[1].Completed = false, want true")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not JSON", `{"resources": [`},
		{"missing resources", `{"career_summary": "x"}`},
		{"empty resources", `{"resources": []}`},
		{"resource without link", `{"resources": [{"title": "no link"}]}`},
		{"empty link", `{"resources": [{"link": ""}]}`},
		{"negative duration", `{"resources": [{"link": "https://a.b", "duration": -1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := recommend.Validate([]byte(tt.raw)); err == nil {
				t.Errorf("Validate(%s) = nil, want error", tt.name)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	p, err := recommend.Decode([]byte(validPayload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	c := recommend.Normalize("", "", "become a backend engineer", "python, sql", p)

	if c.ID == "" {
		t.Error("Normalize() derived empty course ID")
	}
	if c.ID != recommend.DeriveCourseID("become a backend engineer", "python, sql") {
		t.Error("Normalize() course ID does not match DeriveCourseID")
	}
	if c.Name != "Backend Engineer" {
		t.Errorf("Name = %q, want career summary fallback", c.Name)
	}
	if len(c.Resources) != 2 {
		t.Fatalf("len(Resources) = %d, want 2", len(c.Resources))
	}

	first := c.Resources[0]
	if first.Kind() != course.KindVideo {
		t.Errorf("Resources[0].Kind() = %v, want KindVideo", first.Kind())
	}
	if first.Completed {
		t.Error("Resources[0].Completed = true, want false default")
	}
	if first.ID != course.ResourceID(first.Link) {
		t.Error("Resources[0].ID not derived from link")
	}

	second := c.Resources[1]
	if second.Title != "Read the context blog post" {
		t.Errorf("Resources[1].Title = %q, want recommended next step fallback", second.Title)
	}
	if !second.Completed {
		t.Error("Resources[1].Completed = false, want carried over")
	}
}

func TestNormalize_ExplicitIdentityWins(t *testing.T) {
	p, err := recommend.Decode([]byte(validPayload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	c := recommend.Normalize("go-path", "Go Path", "goal", "skills", p)
	if c.ID != "go-path" {
		t.Errorf("ID = %q, want go-path", c.ID)
	}
	if c.Name != "Go Path" {
		t.Errorf("Name = %q, want Go Path", c.Name)
	}
}

func TestDeriveCourseID_Stable(t *testing.T) {
	a := recommend.DeriveCourseID("goal", "skills")
	b := recommend.DeriveCourseID("goal", "skills")
	if a != b {
		t.Errorf("DeriveCourseID not stable: %q vs %q", a, b)
	}
	if a == recommend.DeriveCourseID("goals", "kills") {
		t.Error("DeriveCourseID should separate goal and skills")
	}
}
