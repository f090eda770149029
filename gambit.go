package gambit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/internal/runtime"
	loamAdapter "github.com/aretw0/gambit/pkg/adapters/loam"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/session"
)

// Engine is the high-level entry point for the Gambit library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	catalog  ports.ScenarioCatalog
	store    ports.ProgressStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	narrator ports.Narrator
	hooks    []domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time

	catalogDir string
	// Name is the base name of the catalog directory, when one was loaded.
	Name string
}

var _ ports.Engine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog injects the scenario catalog.
func WithCatalog(c ports.ScenarioCatalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithCatalogDir loads the catalog from a loam directory of Markdown documents.
// It is ignored when WithCatalog is also given.
func WithCatalogDir(dir string) Option {
	return func(e *Engine) {
		e.catalogDir = dir
	}
}

// WithStore sets the progress store (default: in-memory).
func WithStore(s ports.ProgressStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker adds a distributed lock around submissions, for multi-instance deployments.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithNarrator enables Analyze.
func WithNarrator(n ports.Narrator) Option {
	return func(e *Engine) {
		e.narrator = n
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
// It may be given several times; hooks run in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithClock overrides the time source for decision timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes a new Gambit Engine.
// A catalog is required, either injected with WithCatalog or loaded with WithCatalogDir.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.catalog == nil {
		if eng.catalogDir == "" {
			return nil, fmt.Errorf("a catalog is required: use WithCatalog or WithCatalogDir")
		}
		absPath, err := filepath.Abs(eng.catalogDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		catalog, err := loamAdapter.Open(context.Background(), absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.catalog = catalog
		eng.Name = filepath.Base(absPath)
		eng.logger = eng.logger.With("catalog", eng.Name)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
		if eng.lockTTL > 0 {
			sessionOpts = append(sessionOpts, session.WithLockTTL(eng.lockTTL))
		}
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(domain.ChainHooks(eng.hooks...)),
	}
	if eng.narrator != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithNarrator(eng.narrator))
	}
	if eng.now != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(eng.now))
	}

	eng.runtime = runtime.NewEngine(
		eng.catalog,
		session.NewManager(eng.store, sessionOpts...),
		runtimeOpts...,
	)
	return eng, nil
}

// ListScenarios returns the scenarios matching filter, newest first.
func (e *Engine) ListScenarios(ctx context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, error) {
	return e.runtime.ListScenarios(ctx, filter)
}

// Scenario returns scenario metadata without its steps.
func (e *Engine) Scenario(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	return e.runtime.Scenario(ctx, scenarioID)
}

// Steps returns the step graph of a scenario, for visualization and validation tools.
func (e *Engine) Steps(ctx context.Context, scenarioID string) ([]domain.Step, error) {
	return e.runtime.Steps(ctx, scenarioID)
}

// Start begins, or restarts, a traversal at the root step.
func (e *Engine) Start(ctx context.Context, userID, scenarioID string) (*domain.StartResult, error) {
	return e.runtime.Start(ctx, userID, scenarioID)
}

// GetStep returns the current step of an active traversal.
func (e *Engine) GetStep(ctx context.Context, userID, scenarioID, stepID string) (*domain.StepResult, error) {
	return e.runtime.GetStep(ctx, userID, scenarioID, stepID)
}

// SubmitAnswer applies a choice to the current step.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, scenarioID, stepID, optionID string) (*domain.AnswerResult, error) {
	return e.runtime.SubmitAnswer(ctx, userID, scenarioID, stepID, optionID)
}

// Progress returns the traversal record joined with scenario metadata.
func (e *Engine) Progress(ctx context.Context, userID, scenarioID string) (*domain.ProgressView, error) {
	return e.runtime.Progress(ctx, userID, scenarioID)
}

// History lists every traversal of a user.
func (e *Engine) History(ctx context.Context, userID string) ([]*domain.Progress, error) {
	return e.runtime.History(ctx, userID)
}

// Summary returns the numeric report of a finished traversal.
func (e *Engine) Summary(ctx context.Context, userID, scenarioID string) (*domain.Summary, error) {
	return e.runtime.Summary(ctx, userID, scenarioID)
}

// GetSummaryForAnalysis returns the enriched record handed to the narrator.
func (e *Engine) GetSummaryForAnalysis(ctx context.Context, userID, scenarioID string) (*domain.AnalysisInput, error) {
	return e.runtime.GetSummaryForAnalysis(ctx, userID, scenarioID)
}

// Analyze produces the narrative review of a finished traversal.
func (e *Engine) Analyze(ctx context.Context, userID, scenarioID string) (*domain.Analysis, error) {
	return e.runtime.Analyze(ctx, userID, scenarioID)
}

// Catalog returns the scenario catalog used by the engine.
func (e *Engine) Catalog() ports.ScenarioCatalog {
	return e.catalog
}

// Store returns the progress store used by the engine.
func (e *Engine) Store() ports.ProgressStore {
	return e.store
}
