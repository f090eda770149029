package narrative

import (
	"fmt"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
)

const systemPrompt = `You are a Staff-level Software Engineer providing mentorship feedback on an incident response simulation.
Use a calm, professional tone. Focus on learning and growth, not scoring.
Provide real-world engineering context and avoid mentioning XP, points or game mechanics.
Reply with a single JSON object and no additional text.`

const responseFormat = `Respond with valid JSON in this structure:
{
  "summary": "2-3 sentence high-level assessment of performance",
  "strengths": ["2-4 specific positive behaviors or good decisions"],
  "mistakes": ["2-4 risky or ineffective decisions with brief explanations"],
  "recommendations": ["3-5 concrete, actionable improvements"],
  "seniorPerspective": "A paragraph on how an experienced staff engineer would approach this type of incident"
}`

const emptyResponseFormat = `Respond with valid JSON in this structure:
{
  "summary": "Note that no decisions were recorded and suggest a retry",
  "strengths": ["At most one item"],
  "mistakes": ["No decision history available"],
  "recommendations": ["Retry the scenario to get a proper analysis"],
  "seniorPerspective": "A short note on why recording actions matters during real incidents"
}`

// BuildPrompt renders the user prompt for a finished traversal.
func BuildPrompt(in domain.AnalysisInput) string {
	var b strings.Builder

	writeHeader(&b, in)

	if len(in.Decisions) == 0 {
		b.WriteString("\nThe scenario ended without any recorded decisions. This is unusual.\n")
		b.WriteString("Give brief feedback that no decisions were recorded and suggest the user retry the scenario.\n\n")
		b.WriteString(emptyResponseFormat)
		return b.String()
	}

	b.WriteString("\nDecision sequence:\n")
	for i, d := range in.Decisions {
		fmt.Fprintf(&b, "\nDecision %d:\n", i+1)
		fmt.Fprintf(&b, "- Context: %s\n", d.StepContext)
		fmt.Fprintf(&b, "- Chosen option: %s\n", d.OptionText)
		fmt.Fprintf(&b, "- Impact: %s\n", signed(d.XPChange))
	}

	b.WriteString(`
Analyze this decision sequence from a real-world engineering perspective:
1. What this person did well
2. Where they made mistakes or took unnecessary risks
3. How a senior engineer would have approached these situations differently
4. Concrete recommendations for improvement

`)
	b.WriteString(responseFormat)
	return b.String()
}

func writeHeader(b *strings.Builder, in domain.AnalysisInput) {
	b.WriteString("Scenario details:\n")
	fmt.Fprintf(b, "- Title: %s\n", in.Scenario.Title)
	fmt.Fprintf(b, "- Role: %s\n", in.Scenario.Role)
	fmt.Fprintf(b, "- Difficulty: %s\n", in.Scenario.Difficulty)
	fmt.Fprintf(b, "- Description: %s\n", in.Scenario.Description)

	b.WriteString("\nUser performance:\n")
	fmt.Fprintf(b, "- Final outcome: %s\n", in.OutcomeStatus())
	fmt.Fprintf(b, "- Final score: %d\n", in.Summary.TotalScore)
	fmt.Fprintf(b, "- Poor decisions made: %d\n", in.Summary.BadDecisionCount)
	fmt.Fprintf(b, "- Total decisions: %d\n", len(in.Decisions))
}

// signed renders n with an explicit plus sign when positive.
func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}
