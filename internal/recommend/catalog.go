package recommend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
)

// Catalog loads and caches seed courses from YAML files on disk. Seed courses
// are imported for new identities that have no stored learning path yet.
type Catalog struct {
	rootDir string
	courses map[string]course.Course
	mu      sync.RWMutex
}

type catalogCourse struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Goal      string            `yaml:"goal"`
	Skills    string            `yaml:"skills"`
	Resources []catalogResource `yaml:"resources"`
}

type catalogResource struct {
	Title    string `yaml:"title"`
	Link     string `yaml:"link"`
	Summary  string `yaml:"summary"`
	Duration int    `yaml:"duration"`
}

// NewCatalog creates a catalog and loads all seed courses under rootDir.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		rootDir: rootDir,
		courses: make(map[string]course.Course),
	}

	if err := c.loadAll(); err != nil {
		return nil, fmt.Errorf("loading seed catalog: %w", err)
	}

	slog.Info("seed catalog loaded", "courses", len(c.courses))
	return c, nil
}

// Get returns a seed course by ID.
func (c *Catalog) Get(id string) (course.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.courses[id]
	return sc, ok
}

// Courses returns all seed courses, ordered by ID.
func (c *Catalog) Courses() []course.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]course.Course, 0, len(c.courses))
	for _, sc := range c.courses {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) loadAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return c.loadCourse(path)
		}
		return nil
	})
}

func (c *Catalog) loadCourse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cc catalogCourse
	if err := yaml.Unmarshal(data, &cc); err != nil {
		slog.Warn("skipping invalid course YAML", "path", path, "error", err)
		return nil
	}

	if cc.ID == "" {
		return nil // Not a course file
	}

	sc := course.Course{
		ID:     cc.ID,
		Name:   cc.Name,
		Goal:   cc.Goal,
		Skills: cc.Skills,
	}
	for _, cr := range cc.Resources {
		sc.Resources = append(sc.Resources, course.NewResource(cr.Title, cr.Link, cr.Summary, cr.Duration))
	}

	c.mu.Lock()
	c.courses[sc.ID] = sc
	c.mu.Unlock()

	return nil
}
