package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/internal/config"
	"github.com/aretw0/gambit/internal/logging"
	loamAdapter "github.com/aretw0/gambit/pkg/adapters/loam"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/adapters/postgres"
	redisAdapter "github.com/aretw0/gambit/pkg/adapters/redis"
	"github.com/aretw0/gambit/pkg/adapters/sqlite"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/narrative"
	"github.com/aretw0/gambit/pkg/observability"
	"github.com/aretw0/gambit/pkg/persistence/middleware"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "gambit",
	Short:        "Gambit runs branching decision scenarios",
	Long:         `Gambit walks users through scenario graphs, scores each decision and reviews the outcome with a language model.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags override the matching GAMBIT_* variables.
	rootCmd.PersistentFlags().String("catalog", "", "Scenario catalog: a YAML file or a loam directory (GAMBIT_CATALOG)")
	rootCmd.PersistentFlags().String("store", "", "Progress store: memory, redis, sqlite or postgres (GAMBIT_STORE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (GAMBIT_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (GAMBIT_LOG_FORMAT)")
}

// loadConfig reads the environment and applies any persistent flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogPath, _ = flags.GetString("catalog")
	}
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level), nil
	}
	return logging.New(level), nil
}

// app is the wired engine plus whatever must be closed on exit.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	engine   *gambit.Engine
	metrics  *observability.Metrics
	narrated bool
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// bootstrap builds the catalog, store, narrator and metrics from configuration.
// Extra hooks run after the built-in logging and metrics hooks.
func bootstrap(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	ctx := cmd.Context()

	opts := []gambit.Option{
		gambit.WithLogger(logger),
		gambit.WithLifecycleHooks(observability.LogHooks(logger)),
	}

	switch cfg.ResolveCatalogFormat() {
	case config.CatalogLoam:
		opts = append(opts, gambit.WithCatalogDir(cfg.CatalogPath))
	default:
		catalog, err := openCatalog(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, gambit.WithCatalog(catalog))
	}

	store, locker, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts = append(opts, gambit.WithStore(store))
	if locker != nil {
		opts = append(opts, gambit.WithLocker(locker, 0))
	}

	n, err := narrative.FromConfig(ctx, cfg.Narrative, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if n != nil {
		a.narrated = true
		opts = append(opts, gambit.WithNarrator(n))
		logger.Info("narrative provider enabled", "provider", cfg.Narrative.Provider, "model", n.Provider().ModelID())
	}

	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.metrics = observability.NewMetrics(reg)
		opts = append(opts, gambit.WithLifecycleHooks(a.metrics.Hooks()))
	}

	for _, h := range hooks {
		opts = append(opts, gambit.WithLifecycleHooks(h))
	}

	a.engine, err = gambit.New(opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openCatalog loads the configured catalog without building an engine.
func openCatalog(ctx context.Context, cfg config.Config) (ports.ScenarioCatalog, error) {
	var (
		catalog *memory.Catalog
		err     error
	)
	if cfg.ResolveCatalogFormat() == config.CatalogLoam {
		catalog, err = loamAdapter.Open(ctx, cfg.CatalogPath)
	} else {
		catalog, err = memory.LoadYAMLFile(cfg.CatalogPath)
	}
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// openStore connects the configured backend and wraps it with the store middleware.
// The locker is nil unless the backend can provide one.
func (a *app) openStore(ctx context.Context) (ports.ProgressStore, ports.DistributedLocker, error) {
	cfg := a.cfg

	var (
		store  ports.ProgressStore
		locker ports.DistributedLocker
	)
	switch cfg.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, client.Close)

		var storeOpts []redisAdapter.Option
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Redis.TTL))
		}
		store = redisAdapter.NewFromClient(client, storeOpts...)
		if cfg.Redis.Lock {
			locker = redisAdapter.NewLocker(client, "gambit:")
		}
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case config.StorePostgres:
		s, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		store = s
	default:
		store = memory.NewStore()
	}

	mws := []middleware.Middleware{middleware.NewTimeoutMiddleware(cfg.StoreTimeout)}
	if cfg.UserIDSecret != "" {
		mws = append(mws, middleware.NewPseudonymMiddleware([]byte(cfg.UserIDSecret)))
	}
	return middleware.Chain(store, mws...), locker, nil
}
