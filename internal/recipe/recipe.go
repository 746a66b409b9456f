// Package recipe stores an ordered list of table operations in a YAML file
// and replays them, cumulatively, against a session.
package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabula-cli/internal/utils"
)

// Recipe is a named sequence of steps persisted as YAML.
type Recipe struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Source      string    `yaml:"source,omitempty"`
	Steps       []*Step   `yaml:"steps"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`

	// Not serialized: on-disk location of the recipe file
	path string
}

// Step is one operation with its string arguments.
type Step struct {
	ID   string            `yaml:"id"`
	Op   string            `yaml:"op"`
	Args map[string]string `yaml:"args,omitempty"`
	Note string            `yaml:"note,omitempty"`
}

// New constructs an in-memory recipe. Call Save to persist.
func New(name, description, path string) *Recipe {
	now := time.Now()
	return &Recipe{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		path:        path,
	}
}

// Load reads a recipe file and checks its steps. A recipe without steps
// loads so steps can be added to it. Steps without an ID get one.
func Load(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("recipe not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	var r Recipe
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	r.path = path
	if r.Name == "" {
		r.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for _, s := range r.Steps {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
	}
	if err := r.validateSteps(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Path returns the on-disk location of the recipe.
func (r *Recipe) Path() string { return r.path }

// Save writes the recipe using an atomic write.
func (r *Recipe) Save() error {
	if r.path == "" {
		return errors.New("recipe path not set")
	}
	r.UpdatedAt = time.Now()
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	return utils.SafeWriteFile(r.path, data)
}

// AddStep validates and appends a step, returning it.
func (r *Recipe) AddStep(op string, args map[string]string) (*Step, error) {
	s := &Step{ID: uuid.NewString(), Op: strings.ToLower(strings.TrimSpace(op)), Args: args}
	if err := s.validate(); err != nil {
		return nil, err
	}
	r.Steps = append(r.Steps, s)
	r.UpdatedAt = time.Now()
	return s, nil
}

// Validate checks every step names a known operation with its required
// arguments.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return errors.New("recipe has no steps")
	}
	return r.validateSteps()
}

func (r *Recipe) validateSteps() error {
	for i, s := range r.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Step) validate() error {
	op, ok := operations[s.Op]
	if !ok {
		return fmt.Errorf("unknown operation %q (want %s)", s.Op, strings.Join(Operations(), ", "))
	}
	for _, a := range op.required {
		if strings.TrimSpace(s.Args[a]) == "" {
			return fmt.Errorf("%s: missing argument %q", s.Op, a)
		}
	}
	return nil
}

func (s *Step) arg(name, def string) string {
	if v, ok := s.Args[name]; ok {
		return v
	}
	return def
}
