package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// ErrQuit is returned by Play when the player leaves before the end.
var ErrQuit = errors.New("player quit")

// Player walks one scenario in a terminal session.
type Player struct {
	engine  ports.Engine
	in      *bufio.Reader
	out     io.Writer
	render  Renderer
	userID  string
	analyze bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithRenderer overrides the markdown renderer.
func WithRenderer(r Renderer) PlayerOption {
	return func(p *Player) { p.render = r }
}

// WithUserID sets the identity progress is stored under.
func WithUserID(id string) PlayerOption {
	return func(p *Player) { p.userID = id }
}

// WithAnalysis requests a narrative review once the scenario ends.
func WithAnalysis(enabled bool) PlayerOption {
	return func(p *Player) { p.analyze = enabled }
}

// NewPlayer creates a Player reading choices from in and writing to out.
func NewPlayer(engine ports.Engine, in io.Reader, out io.Writer, opts ...PlayerOption) *Player {
	p := &Player{
		engine: engine,
		in:     bufio.NewReader(in),
		out:    out,
		render: PlainRenderer,
		userID: "local",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts (or restarts) the scenario and loops until it ends.
// It returns the final summary.
func (p *Player) Play(ctx context.Context, scenarioID string) (*domain.Summary, error) {
	scenario, err := p.engine.Scenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	p.markdown(fmt.Sprintf("# %s\n\n**Role:** %s · **Difficulty:** %s\n\n%s\n",
		scenario.Title, scenario.Role, scenario.Difficulty, scenario.Description))

	started, err := p.engine.Start(ctx, p.userID, scenarioID)
	if err != nil {
		return nil, err
	}
	step := started.Step

	for {
		p.markdown(stepMarkdown(step))

		optionID, err := p.choose(ctx, step)
		if err != nil {
			return nil, err
		}

		res, err := p.engine.SubmitAnswer(ctx, p.userID, scenarioID, step.StepID, optionID)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(p.out, "\n%s decision (%s). Score: %d, bad decisions: %d/%d\n",
			qualityLabel(res.Quality), signed(res.XPChange), res.Score, res.BadDecisionCount, domain.MaxBadDecisions)

		if res.Terminal() {
			fmt.Fprintf(p.out, "\n%s.\n", res.Reason)
			p.markdown(summaryMarkdown(res.Summary))
			if p.analyze {
				p.printAnalysis(ctx, scenarioID)
			}
			return res.Summary, nil
		}
		step = *res.NextStep
	}
}

// choose reads until the player names a valid option by number or ID.
func (p *Player) choose(ctx context.Context, step domain.StepView) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(p.out, "> ")

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		eof := err != nil
		if eof && strings.TrimSpace(line) == "" {
			return "", ErrQuit
		}

		text, serr := SanitizeInput(line)
		if serr != nil {
			fmt.Fprintf(p.out, "Error: %v. Please try again.\n", serr)
			if eof {
				return "", ErrQuit
			}
			continue
		}
		if text == "q" || text == "quit" {
			return "", ErrQuit
		}
		if id, ok := resolveChoice(step, text); ok {
			return id, nil
		}
		fmt.Fprintf(p.out, "Pick 1-%d or an option ID.\n", len(step.Options))
		if eof {
			return "", ErrQuit
		}
	}
}

func resolveChoice(step domain.StepView, text string) (string, bool) {
	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(step.Options) {
			return step.Options[n-1].ID, true
		}
		return "", false
	}
	for _, o := range step.Options {
		if strings.EqualFold(o.ID, text) {
			return o.ID, true
		}
	}
	return "", false
}

func (p *Player) printAnalysis(ctx context.Context, scenarioID string) {
	a, err := p.engine.Analyze(ctx, p.userID, scenarioID)
	if err != nil {
		fmt.Fprintf(p.out, "\nAnalysis unavailable: %v\n", err)
		return
	}
	p.markdown(narrativeMarkdown(a.Narrative))
}

func (p *Player) markdown(md string) {
	out, err := p.render(md)
	if err != nil {
		out = md
	}
	fmt.Fprintln(p.out, strings.TrimRight(out, "\n"))
}

func stepMarkdown(step domain.StepView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\n\n%s\n\n", step.Context)
	for i, o := range step.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, o.Text)
	}
	return b.String()
}

func summaryMarkdown(s *domain.Summary) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Final score: %d (%s)\n", s.TotalScore, s.Performance)
	fmt.Fprintf(&b, "- Decisions: %d (good %d, risky %d, bad %d)\n",
		s.TotalDecisions, s.GoodDecisions, s.RiskyDecisions, s.BadDecisions)
	return b.String()
}

func narrativeMarkdown(n *domain.Narrative) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Review\n\n%s\n", n.Summary)
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n### %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
	}
	section("Strengths", n.Strengths)
	section("Mistakes", n.Mistakes)
	section("Recommendations", n.Recommendations)
	fmt.Fprintf(&b, "\n### Senior perspective\n\n%s\n", n.SeniorPerspective)
	return b.String()
}

func qualityLabel(q domain.Quality) string {
	switch q {
	case domain.QualityGood:
		return "Good"
	case domain.QualityRisky:
		return "Risky"
	default:
		return "Bad"
	}
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
