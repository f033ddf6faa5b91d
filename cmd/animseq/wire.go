package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/config"
	"github.com/nidhogg/animseq/internal/events"
	"github.com/nidhogg/animseq/internal/logging"
	"github.com/nidhogg/animseq/internal/provider"
	"github.com/nidhogg/animseq/internal/role"
	"github.com/nidhogg/animseq/internal/sequence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything a subcommand needs to run simulations.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	sim       *sequence.Simulator
	providers *provider.Router
	roles     []role.Role
	rng       *rand.Rand
	seed      int64
	publisher *events.Publisher
}

func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.logger.Sync()
}

// setup loads configuration and wires the simulator. Flags given on the
// command line override the config file.
func setup(cmd *cobra.Command, extra ...sequence.Observer) (*app, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.Server.LogLevel = lvl
	}

	logger, err := logging.New(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Info("config loaded", zap.String("path", path))
	} else {
		logger.Info("no config file, using defaults", zap.String("path", path))
	}

	if flags.Changed("max-steps") {
		cfg.Simulation.MaxSteps, _ = flags.GetInt("max-steps")
	}
	if flags.Changed("delay") {
		d, _ := flags.GetDuration("delay")
		cfg.Simulation.SetStepDelay(d)
	}

	cat := catalog.Default()
	if len(cfg.Simulation.Animations) > 0 {
		cat, err = catalog.FromStrings(cfg.Simulation.Animations, cfg.Simulation.Triggers)
		if err != nil {
			logger.Error("catalog rejected", zap.Error(err))
			return nil, err
		}
	}

	router, err := buildRouter(cfg, logger)
	if err != nil {
		logger.Error("provider setup failed", zap.Error(err))
		return nil, err
	}
	gw := provider.WithRetry(router, provider.RetryPolicy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: time.Duration(cfg.Retry.InitialIntervalMS) * time.Millisecond,
		MaxInterval:     time.Duration(cfg.Retry.MaxIntervalMS) * time.Millisecond,
	}, logger)
	logger.Info("model gateway ready",
		zap.String("default", router.DefaultID()),
		zap.Strings("fallbacks", cfg.Fallbacks),
		zap.Int("retry_attempts", cfg.Retry.MaxAttempts))

	var seed int64
	if flags.Changed("seed") {
		seed, _ = flags.GetInt64("seed")
	} else if seed, err = sequence.NewSeed(); err != nil {
		return nil, err
	}
	rng := sequence.NewRand(seed)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		providers: router,
		roles:     role.FromStrings(cfg.Simulation.Roles),
		rng:       rng,
		seed:      seed,
	}

	observers := append([]sequence.Observer(nil), extra...)
	if cfg.Redis.URL != "" {
		pub, err := events.NewPublisher(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, running without event stream", zap.Error(err))
		} else {
			a.publisher = pub
			observers = append(observers, pub)
		}
	}

	var pacer sequence.Pacer = sequence.NoDelay{}
	if d := cfg.Simulation.StepDelay(); d > 0 {
		pacer = sequence.FixedDelay(d)
	}

	a.sim, err = sequence.New(sequence.Options{
		Catalog:      cat,
		Gateway:      gw,
		Rand:         rng,
		Pacer:        pacer,
		MaxSteps:     cfg.Simulation.MaxSteps,
		Seed:         catalog.ActionID(cfg.Simulation.SeedAction),
		QueryTimeout: cfg.Simulation.QueryTimeout(),
		Observers:    observers,
		Logger:       logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// buildRouter registers every configured provider and sets the default and
// fallback chain.
func buildRouter(cfg *config.Config, logger *zap.Logger) (*provider.Router, error) {
	router := provider.NewRouter(logger)
	for _, pc := range cfg.Providers {
		p, err := provider.New(provider.Config{
			ID:       pc.ID,
			Type:     pc.Type,
			Name:     pc.Name,
			Endpoint: pc.Endpoint,
			APIKey:   pc.APIKey,
			Model:    pc.Model,
			Extra:    pc.Extra,
			Timeout:  time.Duration(pc.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", pc.ID, err)
		}
		router.Register(p)
	}
	if cfg.DefaultProvider != "" {
		if err := router.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, fmt.Errorf("default_provider: %w", err)
		}
	}
	for _, id := range cfg.Fallbacks {
		if _, ok := router.GetProvider(id); !ok {
			logger.Warn("fallback provider not configured", zap.String("id", id))
		}
	}
	router.SetFallbacks(cfg.Fallbacks)
	return router, nil
}

func addSimulationFlags(c *cobra.Command) {
	c.Flags().Int64("seed", 0, "Random seed for role and action selection (default: random)")
	c.Flags().Int("max-steps", 0, "Step budget override")
	c.Flags().Duration("delay", 0, "Pause between steps override, e.g. 500ms")
}
