package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gambit/internal/runtime"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/dsl"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// newCatalog builds the two scenarios most tests run against.
//
//	incident: root --A(+20)--> stepB --ok(+30)--> end
//	          root --B(-5)---> end
//	          root --loop(-1)--> root
//	          stepB --bad(-10)--> end
//	broken:   start --go(+20)--> missing
func newCatalog(t *testing.T) *memory.Catalog {
	t.Helper()
	b := dsl.New()

	s := b.Scenario("incident").
		Title("Incident").
		Role("SRE").
		Difficulty(domain.DifficultyMedium).
		Description("Pager at 3am")
	s.Step("root").Root().
		Context("Something is on fire.").
		Option("A", "Investigate", 20).Go("stepB").
		Option("B", "Ignore it", -5).End().
		Option("loop", "Refresh the page", -1).Go("root")
	s.Step("stepB").
		Context("You found the cause.").
		Option("ok", "Fix it", 30).End().
		Option("bad", "Blame someone", -10).End()

	b.Scenario("broken").Step("start").Root().
		Context("Dangling edge ahead.").
		Option("go", "Go", 20).Go("missing")

	catalog, err := b.Build()
	require.NoError(t, err)
	return catalog
}

func newEngine(t *testing.T, store ports.ProgressStore, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	opts = append([]runtime.EngineOption{runtime.WithClock(func() time.Time { return fixedNow })}, opts...)
	return runtime.NewEngine(newCatalog(t), session.NewManager(store), opts...)
}

func runtimeWithConflictCounter(n *int) runtime.EngineOption {
	return runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnConflict: func(context.Context, *domain.ConflictEvent) { *n++ },
	})
}
