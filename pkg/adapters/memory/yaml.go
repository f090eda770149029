package memory

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout: scenarios with their steps nested.
type catalogFile struct {
	Scenarios []scenarioFile `yaml:"scenarios"`
}

type scenarioFile struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Role        string            `yaml:"role"`
	Difficulty  domain.Difficulty `yaml:"difficulty"`
	Description string            `yaml:"description"`
	CreatedAt   time.Time         `yaml:"created_at"`
	Steps       []stepFile        `yaml:"steps"`
}

type stepFile struct {
	ID      string          `yaml:"id"`
	Root    bool            `yaml:"root"`
	Context string          `yaml:"context"`
	Options []domain.Option `yaml:"options"`
}

// LoadYAML decodes a catalog document.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	scenarios := make([]domain.Scenario, 0, len(f.Scenarios))
	var steps []domain.Step
	for _, s := range f.Scenarios {
		scenarios = append(scenarios, domain.Scenario{
			ID:          s.ID,
			Title:       s.Title,
			Role:        s.Role,
			Difficulty:  s.Difficulty,
			Description: s.Description,
			CreatedAt:   s.CreatedAt,
		})
		for _, st := range s.Steps {
			steps = append(steps, domain.Step{
				ID:         st.ID,
				ScenarioID: s.ID,
				Root:       st.Root,
				Context:    st.Context,
				Options:    st.Options,
			})
		}
	}
	return NewCatalog(scenarios, steps)
}

// LoadYAMLFile opens path and decodes it with LoadYAML.
func LoadYAMLFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
