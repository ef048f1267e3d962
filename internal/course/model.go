// Package course defines the learning-path data model: courses, resources,
// and the video/external link classification rules.
package course

import (
	"crypto/sha256"
	"encoding/hex"
)

// Kind classifies how a resource is consumed.
type Kind int

const (
	// KindExternal is any link opened outside the app (articles, docs).
	KindExternal Kind = iota
	// KindVideo is a link recognized as a hosted video with a playable embed.
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "external"
}

// Resource is a single learning unit inside a course. The JSON shape is the
// persisted shape: one stored entry carries exactly these fields.
type Resource struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Summary   string  `json:"summary,omitempty"`
	Duration  int     `json:"duration,omitempty"` // minutes, opaque metadata
	Completed bool    `json:"completed"`
	Progress  float64 `json:"progress,omitempty"` // last known playback fraction, hint only
}

// Kind classifies the resource by its link.
func (r Resource) Kind() Kind {
	return Classify(r.Link)
}

// NewResource builds a resource with its identity derived from the link.
func NewResource(title, link, summary string, duration int) Resource {
	return Resource{
		ID:       ResourceID(link),
		Title:    title,
		Link:     link,
		Summary:  summary,
		Duration: duration,
	}
}

// ResourceID derives a stable identity from a resource link. Two resources
// with the same link are the same resource.
func ResourceID(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:8])
}

// Course is an ordered, immutable-shape list of resources belonging to one
// learning path. The engine never adds, removes, or reorders resources; it
// only flips completion state and updates progress hints.
type Course struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Goal      string     `json:"goal,omitempty"`
	Skills    string     `json:"skills,omitempty"`
	Resources []Resource `json:"resources"`
}

// Completed reports whether every resource in the course is completed.
// An empty course is not considered completed.
func (c Course) Completed() bool {
	if len(c.Resources) == 0 {
		return false
	}
	for _, r := range c.Resources {
		if !r.Completed {
			return false
		}
	}
	return true
}

// CompletedCount returns how many resources are completed.
func (c Course) CompletedCount() int {
	n := 0
	for _, r := range c.Resources {
		if r.Completed {
			n++
		}
	}
	return n
}

// FirstIncomplete returns the index of the first resource with completed set
// to false, or 0 when every resource is completed or the course is empty.
func (c Course) FirstIncomplete() int {
	for i, r := range c.Resources {
		if !r.Completed {
			return i
		}
	}
	return 0
}

// IndexOfLink returns the position of the resource with the given link,
// or -1 when the course has no such resource.
func (c Course) IndexOfLink(link string) int {
	for i, r := range c.Resources {
		if r.Link == link {
			return i
		}
	}
	return -1
}

// CloneResources returns a copy of the resource list so callers can hand it
// across an API boundary without sharing the backing array.
func (c Course) CloneResources() []Resource {
	out := make([]Resource, len(c.Resources))
	copy(out, c.Resources)
	return out
}
