/*
Package gambit is a scenario progression engine for decision-making drills.

A scenario is a directed graph of steps. Each step offers options that carry an XP delta and
either lead to another step or end the scenario. A user walks the graph, accumulates a score,
is failed after three bad choices, and finally receives a summary and an optional narrative
review produced by a language model.

# Concept

The engine is stateless between calls. Traversal state ("progress") lives in a ProgressStore
and every submission is an atomic read-modify-write guarded by a per-key lock and a
version-stamped compare-and-swap in the store. Adapters (HTTP, MCP, terminal) are thin layers
over the same core surface: Start, GetStep, SubmitAnswer and GetSummaryForAnalysis.

# Usage

	catalog := dsl.New()
	s := catalog.Scenario("db-outage").Title("Primary Database Outage").Difficulty(domain.DifficultyMedium)
	s.Step("alert").Root().
		Context("Write latency is climbing.").
		Option("dashboards", "Check the dashboards", 20).End()

	eng, err := gambit.New(gambit.WithCatalog(catalog.MustBuild()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	started, _ := eng.Start(ctx, "user-1", "db-outage")
	res, _ := eng.SubmitAnswer(ctx, "user-1", "db-outage", started.Step.StepID, "dashboards")
	fmt.Println(res.Outcome, res.Summary.TotalScore)

# Storage

Progress stores live under pkg/adapters: memory (default), redis, sqlite and postgres. The
redis package also provides a distributed locker for multi-instance deployments (WithLocker).

# Narrative

Analyze hands the enriched decision record to a ports.Narrator. The pkg/narrative package
implements one over Gemini, OpenAI and Anthropic models and validates the reply against a
strict JSON schema.
*/
package gambit
