// Package loam loads a scenario catalog from a Loam document repository
// (Markdown with frontmatter, JSON or YAML files).
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Open initializes a read-only Loam repository at dir and loads it.
func Open(ctx context.Context, dir string) (*memory.Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open loam repository %s: %w", absPath, err)
	}
	return Load(ctx, loam.NewTypedRepository[DocumentMetadata](repo))
}

// Load reads every document of the repository and builds an in-memory catalog.
func Load(ctx context.Context, repo *loam.TypedRepository[DocumentMetadata]) (*memory.Catalog, error) {
	docs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var (
		scenarios []domain.Scenario
		steps     []domain.Step
	)
	seen := make(map[string]string)

	for _, doc := range docs {
		meta := doc.Data
		path := trimExtension(doc.ID)

		id := trimExtension(meta.ID)
		if id == "" {
			id = filepath.Base(path)
		}
		kind := meta.Kind
		if kind == "" {
			kind = KindStep
			if id == KindScenario || filepath.Base(path) == KindScenario {
				kind = KindScenario
			}
		}

		switch kind {
		case KindScenario:
			if meta.ID == "" && filepath.Base(path) == KindScenario {
				id = filepath.Base(filepath.Dir(path))
			}
			if prev, dup := seen["scenario:"+id]; dup {
				return nil, fmt.Errorf("collision detected: scenario '%s' is defined in both '%s' and '%s'", id, prev, doc.ID)
			}
			seen["scenario:"+id] = doc.ID

			s, err := buildScenario(id, meta, doc.Content)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", doc.ID, err)
			}
			scenarios = append(scenarios, s)

		case KindStep:
			scenarioID := meta.Scenario
			if scenarioID == "" {
				scenarioID = filepath.Base(filepath.Dir(path))
			}
			if scenarioID == "" || scenarioID == "." {
				return nil, fmt.Errorf("%s: step has no scenario", doc.ID)
			}
			key := "step:" + scenarioID + "/" + id
			if prev, dup := seen[key]; dup {
				return nil, fmt.Errorf("collision detected: step '%s' is defined in both '%s' and '%s'", id, prev, doc.ID)
			}
			seen[key] = doc.ID

			st, err := buildStep(id, scenarioID, meta, doc.Content)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", doc.ID, err)
			}
			steps = append(steps, st)

		default:
			return nil, fmt.Errorf("%s: unknown document kind %q", doc.ID, kind)
		}
	}

	// Loam listing order is filesystem order; sort for stable step ordering.
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].ScenarioID != steps[j].ScenarioID {
			return steps[i].ScenarioID < steps[j].ScenarioID
		}
		return steps[i].ID < steps[j].ID
	})
	return memory.NewCatalog(scenarios, steps)
}

func buildScenario(id string, meta DocumentMetadata, body string) (domain.Scenario, error) {
	s := domain.Scenario{
		ID:          id,
		Title:       meta.Title,
		Role:        meta.Role,
		Difficulty:  domain.Difficulty(strings.ToLower(meta.Difficulty)),
		Description: strings.TrimSpace(body),
	}
	if s.Difficulty == "" {
		s.Difficulty = domain.DifficultyMedium
	}
	if !s.Difficulty.Valid() {
		return s, fmt.Errorf("invalid difficulty %q", meta.Difficulty)
	}
	if meta.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, meta.CreatedAt)
		if err != nil {
			return s, fmt.Errorf("invalid created_at: %w", err)
		}
		s.CreatedAt = t
	}
	return s, nil
}

func buildStep(id, scenarioID string, meta DocumentMetadata, body string) (domain.Step, error) {
	st := domain.Step{
		ID:         id,
		ScenarioID: scenarioID,
		Root:       meta.Root,
		Context:    strings.TrimSpace(body),
		Options:    make([]domain.Option, 0, len(meta.Options)),
	}
	for i, raw := range meta.Options {
		var om OptionMetadata
		if err := decodeOption(raw, &om); err != nil {
			return st, fmt.Errorf("option %d: %w", i, err)
		}
		if om.ID == "" {
			return st, fmt.Errorf("option %d missing id", i)
		}
		o := domain.Option{ID: om.ID, Text: om.Text, XPChange: om.XP}
		if next := trimExtension(om.Next); next != "" {
			o.NextStepID = &next
		}
		st.Options = append(st.Options, o)
	}
	return st, nil
}

func decodeOption(raw map[string]any, out *OptionMetadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
