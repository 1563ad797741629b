package simulation

import (
	"bandit/env"
	"bandit/meta"
	"bandit/metrics"
	"bandit/policy"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Option func(r *Runner)

func WithCollector(collector metrics.Collector) Option {
	return func(r *Runner) {
		if collector != nil {
			r.metrics = collector
		}
	}
}

// Runner plays one policy against one environment for a fixed horizon.
type Runner struct {
	horizon int
	metrics metrics.Collector
}

func NewRunner(horizon int, options ...Option) (*Runner, error) {
	if horizon <= 0 || horizon > meta.MAX_HORIZON {
		return nil, fmt.Errorf("%w: horizon %d not in [1,%d]", meta.ErrInvalidConfiguration, horizon, meta.MAX_HORIZON)
	}
	r := &Runner{ // Default values
		horizon: horizon,
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

func (r *Runner) Horizon() int {
	return r.horizon
}

// Run executes the rounds select, pull, update and returns the trace. On a
// contract violation it returns the rounds completed so far with the error.
func (r *Runner) Run(p policy.Policy, e *env.Environment) (metrics.Trace, error) {
	log.Debug().Msgf("running %s for %d rounds over %d arms", p.Name(), r.horizon, e.NumArms())

	trace := make(metrics.Trace, 0, r.horizon)
	for round := 1; round <= r.horizon; round++ {
		arm := p.SelectArm()
		reward, err := e.Pull(arm)
		if err != nil {
			return trace, fmt.Errorf("%s failed at round %d: %w", p.Name(), round, err)
		}
		p.Update(arm, reward)

		trace = append(trace, metrics.PullRecord{Round: round, Arm: arm, Reward: reward})
		r.metrics.AddRound()
	}
	return trace, nil
}
