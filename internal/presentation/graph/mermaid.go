package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
)

// endNode is the shared sink for terminal options.
const endNode = "__end"

// Overlay marks traversal state on top of the static graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromProgress builds an overlay from a stored traversal.
func OverlayFromProgress(p *domain.Progress) *Overlay {
	if p == nil {
		return nil
	}
	o := &Overlay{}
	for _, d := range p.Decisions {
		o.VisitedSteps = append(o.VisitedSteps, d.StepID)
	}
	if p.CurrentStepID != nil {
		o.CurrentStep = *p.CurrentStepID
	}
	return o
}

// GenerateMermaid renders the steps of a scenario as a Mermaid flowchart.
//
// Shapes: root ((circle)), final step ([stadium]), other steps [rectangle].
// Options are edges labelled with their ID and XP change; bad options are
// drawn dotted. Terminal options lead to a shared End node.
func GenerateMermaid(steps []domain.Step, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasEnd := false
	for _, st := range steps {
		id := sanitizeMermaidID(st.ID)

		opener, closer := "[", "]"
		switch {
		case st.Root:
			opener, closer = "((", "))"
		case st.IsFinal():
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, st.ID, closer)

		for _, o := range st.Options {
			target := endNode
			if o.NextStepID != nil {
				target = sanitizeMermaidID(*o.NextStepID)
			} else {
				hasEnd = true
			}

			label := escapeLabel(fmt.Sprintf("%s (%s)", o.ID, signedXP(o.XPChange)))
			arrow := fmt.Sprintf("-- \"%s\" -->", label)
			if domain.Evaluate(o.XPChange).IsBad() {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, target)
		}
	}

	if hasEnd {
		fmt.Fprintf(&sb, "    %s(((\"End\")))\n", endNode)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, stepID := range overlay.VisitedSteps {
			id := sanitizeMermaidID(stepID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func signedXP(xp int) string {
	if xp > 0 {
		return fmt.Sprintf("+%d", xp)
	}
	return fmt.Sprintf("%d", xp)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

var mermaidReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")

func sanitizeMermaidID(id string) string {
	return mermaidReplacer.Replace(id)
}
