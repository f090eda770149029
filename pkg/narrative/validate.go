package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// NarrativeSchema is the shape every model reply must satisfy.
var NarrativeSchema = &Schema{
	Name:        "scenario-analysis",
	Description: "Mentorship review of an incident response simulation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":           map[string]any{"type": "string"},
			"strengths":         stringArray(),
			"mistakes":          stringArray(),
			"recommendations":   stringArray(),
			"seniorPerspective": map[string]any{"type": "string"},
		},
		"required":             []any{"summary", "strengths", "mistakes", "recommendations", "seniorPerspective"},
		"additionalProperties": false,
	},
}

func stringArray() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// StripFences removes a surrounding ```json or ``` markdown fence.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseAndValidate decodes raw JSON and checks it against schema.
func parseAndValidate(schema *Schema, raw string) (map[string]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("expected a JSON object")}
	}
	return obj, nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants generic JSON values, not Go literals.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
