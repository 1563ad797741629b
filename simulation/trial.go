package simulation

import (
	"bandit/env"
	"bandit/metrics"
	"bandit/policy"

	"golang.org/x/exp/rand"
)

// Trial is one independent replicate: a fresh environment and policy sharing
// a single random stream seeded by Seed.
type Trial struct {
	Index      int
	Arms       []env.Arm
	EnvOptions []env.Option
	Policy     policy.Spec
	Horizon    int
	Seed       uint64
	Collector  metrics.Collector
}

// Run plays the trial and returns its trace with the environment it ran
// against, for scoring.
func (t Trial) Run() (metrics.Trace, *env.Environment, error) {
	rng := rand.New(rand.NewSource(t.Seed))

	e, err := env.New(t.Arms, rng, t.EnvOptions...)
	if err != nil {
		return nil, nil, err
	}
	p, err := policy.New(t.Policy, e.NumArms(), rng)
	if err != nil {
		return nil, nil, err
	}
	collector := t.Collector
	if collector == nil {
		collector = metrics.NewDummyCollector()
	}
	runner, err := NewRunner(t.Horizon, WithCollector(collector))
	if err != nil {
		return nil, nil, err
	}

	collector.Start(t.Policy.String(), t.Index, t.Seed)
	trace, err := runner.Run(p, e)
	return trace, e, err
}
