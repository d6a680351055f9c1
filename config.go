package adept

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config aggregates every injected knob of the core. Nothing in the
// package hardcodes a threshold: callers inject this surface, typically
// parsed from a YAML or JSON document via ParseConfig.
type Config struct {
	Estimator EstimatorConfig `json:"estimator" yaml:"estimator"`
	Mastery   MasteryConfig   `json:"mastery" yaml:"mastery"`
	Scorer    ScorerConfig    `json:"scorer" yaml:"scorer"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	// SessionBudgetMinutes is the default retention-queue time budget.
	// Zero → 20.
	SessionBudgetMinutes float64 `json:"session_budget_minutes" yaml:"session_budget_minutes"`
}

// ParseConfig decodes a YAML (or JSON, which YAML subsumes) document into
// a Config and validates it by constructing every component.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the whole configuration surface. Defaults are applied
// the same way the component constructors apply them, so a zero Config is
// valid.
func (c Config) Validate() error {
	if _, err := NewEstimator(c.Estimator); err != nil {
		return err
	}
	if _, err := NewScorer(c.Scorer); err != nil {
		return err
	}
	if _, err := NewScheduler(c.Scheduler); err != nil {
		return err
	}
	if c.SessionBudgetMinutes < 0 {
		return fmt.Errorf("%w: session budget %f must not be negative",
			ErrInvalidConfig, c.SessionBudgetMinutes)
	}
	return nil
}

// Core bundles a fully constructed set of components sharing one logger.
type Core struct {
	Estimator *Estimator
	Scorer    *Scorer
	Scheduler *Scheduler

	Mastery              MasteryConfig
	SessionBudgetMinutes float64
}

// NewCore constructs every component from the config. logger may be nil;
// when set it overrides the per-component loggers.
func NewCore(cfg Config, logger *zap.Logger) (*Core, error) {
	if logger != nil {
		cfg.Estimator.Logger = logger
		cfg.Scheduler.Logger = logger
	}

	est, err := NewEstimator(cfg.Estimator)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(cfg.Scorer)
	if err != nil {
		return nil, err
	}
	sched, err := NewScheduler(cfg.Scheduler)
	if err != nil {
		return nil, err
	}

	budget := cfg.SessionBudgetMinutes
	if budget == 0 {
		budget = 20
	}
	if budget < 0 {
		return nil, fmt.Errorf("%w: session budget %f must not be negative",
			ErrInvalidConfig, budget)
	}

	return &Core{
		Estimator:            est,
		Scorer:               scorer,
		Scheduler:            sched,
		Mastery:              cfg.Mastery,
		SessionBudgetMinutes: budget,
	}, nil
}
