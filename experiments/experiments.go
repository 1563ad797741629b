package experiments

import (
	"bandit/env"
	"bandit/metrics"
	"bandit/policy"
	"bandit/simulation"
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type Option func(x *Experiment)

// WithWorkers bounds the number of trials run concurrently.
func WithWorkers(workers int) Option {
	return func(x *Experiment) {
		if workers > 0 {
			x.workers = workers
		}
	}
}

// WithTrialMetrics records timing and rounds of every trial.
func WithTrialMetrics() Option {
	return func(x *Experiment) {
		x.collect = true
	}
}

// WithProgress calls fn after each completed trial. fn may be called from
// several goroutines at once.
func WithProgress(fn func(label string, trial int)) Option {
	return func(x *Experiment) {
		x.progress = fn
	}
}

// PolicyResult holds the summary series of one policy.
type PolicyResult struct {
	Label   string
	Spec    policy.Spec
	Summary metrics.Summary
}

type Result struct {
	Config     Config
	Seed       int64
	Arms       []env.Arm
	OptimalArm int
	StartTime  time.Time
	EndTime    time.Time
	Policies   []PolicyResult
	Trials     []metrics.TrialMetric
	// Completed is false when the sweep stopped early. Policies then hold
	// summaries of the trials finished before stopping.
	Completed bool
}

// Experiment sweeps every configured policy over repeated independent trials.
type Experiment struct {
	cfg     Config
	specs   []policy.Spec
	workers  int
	collect  bool
	progress func(label string, trial int)
}

func New(cfg Config, options ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	x := &Experiment{ // Default values
		cfg:     cfg,
		specs:   cfg.Specs(),
		workers: runtime.GOMAXPROCS(0),
	}
	if cfg.Workers > 0 {
		x.workers = cfg.Workers
	}
	for _, option := range options {
		option(x)
	}
	return x, nil
}

// Run plays all trials of all policies. When ctx is cancelled no new trials
// start; the result then summarizes the completed trials and the context
// error is returned alongside it.
func (x *Experiment) Run(ctx context.Context) (*Result, error) {
	seed := time.Now().UnixNano()
	if x.cfg.RandomSeed != nil {
		seed = *x.cfg.RandomSeed
	}
	arms := x.cfg.Arms()
	reference, err := env.New(arms, rand.New(rand.NewSource(uint64(seed))), x.cfg.EnvOptions()...)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:     x.cfg,
		Seed:       seed,
		Arms:       reference.Arms(),
		OptimalArm: reference.OptimalArm(),
		StartTime:  time.Now(),
	}

	log.Info().Msgf("starting experiment with %d policies, %d trials of %d rounds, seed %d...",
		len(x.specs), x.cfg.NumTrials, x.cfg.Horizon, seed)

	var trialsMu sync.Mutex
	for pi, spec := range x.specs {
		label := spec.String()
		aggregator := metrics.NewAggregator(x.cfg.Horizon, len(arms))

		log.Info().Msgf("starting policy %d of %d: %s...", pi+1, len(x.specs), label)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(x.workers)
		for i := 0; i < x.cfg.NumTrials; i++ {
			if gctx.Err() != nil {
				break
			}
			trial := simulation.Trial{
				Index:      i,
				Arms:       arms,
				EnvOptions: x.cfg.EnvOptions(),
				Policy:     spec,
				Horizon:    x.cfg.Horizon,
				Seed:       trialSeed(seed, i),
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				var collector metrics.Collector
				if x.collect {
					collector = metrics.NewCollector()
					trial.Collector = collector
				}

				trace, e, err := trial.Run()
				if err != nil {
					return fmt.Errorf("trial %d of %s: %w", trial.Index, label, err)
				}
				series, err := metrics.Score(trace, e)
				if err != nil {
					return fmt.Errorf("trial %d of %s: %w", trial.Index, label, err)
				}
				if err := aggregator.Add(trial.Index, series); err != nil {
					return err
				}

				if collector != nil {
					trialsMu.Lock()
					result.Trials = append(result.Trials, collector.Complete())
					trialsMu.Unlock()
				}
				log.Debug().Msgf("completed %s trial %d with cumulative regret %.2f",
					label, trial.Index, series.CumulativeRegret[len(series.CumulativeRegret)-1])
				if x.progress != nil {
					x.progress(label, trial.Index)
				}
				return nil
			})
		}
		err := g.Wait()

		result.Policies = append(result.Policies, PolicyResult{
			Label:   label,
			Spec:    spec,
			Summary: aggregator.Summary(),
		})
		if err != nil {
			result.EndTime = time.Now()
			sortTrials(result.Trials, x.specs)
			log.Warn().Err(err).Msgf("stopped %s after %d of %d trials", label, aggregator.Trials(), x.cfg.NumTrials)
			return result, err
		}
		if err := ctx.Err(); err != nil {
			result.EndTime = time.Now()
			sortTrials(result.Trials, x.specs)
			return result, err
		}

		log.Info().Msgf("completed policy %d of %d: %s", pi+1, len(x.specs), label)
	}

	result.EndTime = time.Now()
	result.Completed = true
	sortTrials(result.Trials, x.specs)

	log.Info().Msgf("completed experiment in %s", result.EndTime.Sub(result.StartTime))
	return result, nil
}

// trialSeed derives independent per-trial seeds from the experiment seed with
// a splitmix64 step. Trial i of every policy shares the same seed.
func trialSeed(seed int64, trial int) uint64 {
	z := uint64(seed) + uint64(trial+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func sortTrials(trials []metrics.TrialMetric, specs []policy.Spec) {
	order := make(map[string]int, len(specs))
	for i, spec := range specs {
		order[spec.String()] = i
	}
	slices.SortStableFunc(trials, func(a, b metrics.TrialMetric) int {
		if order[a.Policy] != order[b.Policy] {
			return order[a.Policy] - order[b.Policy]
		}
		return a.Trial - b.Trial
	})
}
