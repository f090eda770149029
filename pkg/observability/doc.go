/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks so they can be combined with
domain.ChainHooks and passed to the engine:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := domain.ChainHooks(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
