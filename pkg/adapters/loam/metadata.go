package loam

// Document kinds.
const (
	KindScenario = "scenario"
	KindStep     = "step"
)

// DocumentMetadata represents the frontmatter of a catalog document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
//
// A scenario document carries its description as the body; a step document
// carries the situation text as the body.
type DocumentMetadata struct {
	Kind string `json:"kind" mapstructure:"kind"`
	ID   string `json:"id" mapstructure:"id"`

	// Scenario fields.
	Title      string `json:"title" mapstructure:"title"`
	Role       string `json:"role" mapstructure:"role"`
	Difficulty string `json:"difficulty" mapstructure:"difficulty"`
	// CreatedAt is an RFC 3339 timestamp; quote it in YAML.
	CreatedAt string `json:"created_at" mapstructure:"created_at"`

	// Step fields.
	Scenario string           `json:"scenario" mapstructure:"scenario"`
	Root     bool             `json:"root" mapstructure:"root"`
	Options  []map[string]any `json:"options" mapstructure:"options"`
}

// OptionMetadata is one entry of a step's options list.
// XP is decoded weakly since serializers disagree on numeric types.
type OptionMetadata struct {
	ID   string `mapstructure:"id"`
	Text string `mapstructure:"text"`
	XP   int    `mapstructure:"xp"`
	Next string `mapstructure:"next"`
}
