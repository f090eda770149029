/*
Package dsl provides a fluent Go builder for constructing Gambit scenario catalogs.

It allows developers to define scenarios programmatically instead of relying on
YAML or Markdown files. This is particularly useful for unit testing and for
generating scenarios dynamically.

Example usage:

	b := dsl.New()

	s := b.Scenario("db-outage").
		Title("Primary Database Outage").
		Role("Backend Engineer").
		Difficulty(domain.DifficultyMedium)

	s.Step("alert").Root().
		Context("Write latency is climbing.").
		Option("dashboards", "Check the dashboards", 20).Go("diagnose").
		Option("restart", "Restart the primary", -10).Go("diagnose")

	s.Step("diagnose").
		Context("The disk is full.").
		Option("failover", "Fail over to the replica", 30).End()

	catalog, err := b.Build()
	// ... pass catalog to gambit.New(gambit.WithCatalog(catalog))
*/
package dsl
