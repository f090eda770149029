package gambit_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/dsl"
	"github.com/aretw0/gambit/pkg/narrative"
)

func outageCatalog() *dsl.Builder {
	b := dsl.New()
	s := b.Scenario("db-outage").
		Title("Primary Database Outage").
		Role("Backend Engineer").
		Difficulty(domain.DifficultyMedium)

	s.Step("alert").Root().
		Context("Write latency on the primary is climbing.").
		Option("dashboards", "Check the dashboards", 20).Go("diagnose").
		Option("restart", "Restart the primary right away", -10).Go("diagnose")

	s.Step("diagnose").
		Context("The data volume is 99% full.").
		Option("failover", "Fail over to the replica and expand the volume", 30).End().
		Option("delete", "Delete old WAL files by hand", -20).End()
	return b
}

// ExampleNew walks a scenario built in memory from the root to a terminal option.
func ExampleNew() {
	eng, err := gambit.New(gambit.WithCatalog(outageCatalog().MustBuild()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	started, err := eng.Start(ctx, "alice", "db-outage")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("root:", started.Step.StepID)

	res, err := eng.SubmitAnswer(ctx, "alice", "db-outage", "alert", "dashboards")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Outcome, res.Quality, res.NextStep.StepID)

	res, err = eng.SubmitAnswer(ctx, "alice", "db-outage", "diagnose", "failover")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Outcome, res.Summary.TotalScore, res.Summary.Performance)

	// Output:
	// root: alert
	// advanced good diagnose
	// completed 50 good
}

// ExampleEngine_Analyze shows the narrative review produced once a traversal ends.
func ExampleEngine_Analyze() {
	narrator := narrative.NewNarrator(narrative.NewStaticMockProvider(narrative.MockResponse{
		Content: narrative.DemoNarrative,
	}))

	eng, err := gambit.New(
		gambit.WithCatalog(outageCatalog().MustBuild()),
		gambit.WithNarrator(narrator),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := eng.Start(ctx, "bob", "db-outage"); err != nil {
		log.Fatal(err)
	}
	_, _ = eng.SubmitAnswer(ctx, "bob", "db-outage", "alert", "restart")
	_, _ = eng.SubmitAnswer(ctx, "bob", "db-outage", "diagnose", "delete")

	analysis, err := eng.Analyze(ctx, "bob", "db-outage")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(analysis.Metadata.FinalScore, analysis.Metadata.BadDecisions)
	fmt.Println(analysis.Narrative.Summary)

	// Output:
	// -30 2
	// You worked through the incident and reached a stable outcome.
}
