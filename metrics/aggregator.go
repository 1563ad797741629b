package metrics

import (
	"bandit/meta"
	"fmt"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary reduces the trials of one policy to per-round statistics. Index t
// holds round t+1.
type Summary struct {
	Trials              int
	MeanReward          []float64
	StdReward           []float64
	MeanRegret          []float64
	StdRegret           []float64
	PullFractions       []float64 // per arm, averaged over trials
	FinalRewardPerTrial []float64
	FinalRegretPerTrial []float64
}

// Aggregator collects the series of independent trials. It is safe for
// concurrent use, and Summary only ever reflects fully added trials.
type Aggregator struct {
	mu      sync.Mutex
	horizon int
	arms    int
	trials  map[int]Series
}

func NewAggregator(horizon, arms int) *Aggregator {
	return &Aggregator{
		horizon: horizon,
		arms:    arms,
		trials:  make(map[int]Series),
	}
}

// Add records the series of the given trial index.
func (a *Aggregator) Add(trial int, s Series) error {
	if len(s.CumulativeReward) != a.horizon || len(s.CumulativeRegret) != a.horizon {
		return fmt.Errorf("%w: trial %d has %d rounds, expected %d", meta.ErrInvalidConfiguration, trial, len(s.CumulativeReward), a.horizon)
	}
	if len(s.PullCounts) != a.arms {
		return fmt.Errorf("%w: trial %d has %d arms, expected %d", meta.ErrInvalidConfiguration, trial, len(s.PullCounts), a.arms)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.trials[trial]; ok {
		return fmt.Errorf("trial %d already recorded", trial)
	}
	a.trials[trial] = s
	return nil
}

func (a *Aggregator) Trials() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.trials)
}

// Summary computes means and standard deviations over the trials added so far,
// visiting trials in index order so that results do not depend on the order
// trials completed in.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	indices := make([]int, 0, len(a.trials))
	for i := range a.trials {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	series := make([]Series, len(indices))
	for i, index := range indices {
		series[i] = a.trials[index]
	}
	a.mu.Unlock()

	n := len(series)
	s := Summary{
		Trials:              n,
		MeanReward:          make([]float64, a.horizon),
		StdReward:           make([]float64, a.horizon),
		MeanRegret:          make([]float64, a.horizon),
		StdRegret:           make([]float64, a.horizon),
		PullFractions:       make([]float64, a.arms),
		FinalRewardPerTrial: make([]float64, n),
		FinalRegretPerTrial: make([]float64, n),
	}
	if n == 0 || a.horizon == 0 {
		return s
	}

	rewards := make([]float64, n)
	regrets := make([]float64, n)
	for t := 0; t < a.horizon; t++ {
		for i, trial := range series {
			rewards[i] = trial.CumulativeReward[t]
			regrets[i] = trial.CumulativeRegret[t]
		}
		s.MeanReward[t], s.StdReward[t] = meanStdDev(rewards)
		s.MeanRegret[t], s.StdRegret[t] = meanStdDev(regrets)
	}

	fractions := make([]float64, a.arms)
	for i, trial := range series {
		for arm, count := range trial.PullCounts {
			fractions[arm] = float64(count) / float64(a.horizon)
		}
		floats.Add(s.PullFractions, fractions)
		s.FinalRewardPerTrial[i] = trial.CumulativeReward[a.horizon-1]
		s.FinalRegretPerTrial[i] = trial.CumulativeRegret[a.horizon-1]
	}
	floats.Scale(1/float64(n), s.PullFractions)
	return s
}

// meanStdDev reports a zero deviation for a single sample.
func meanStdDev(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
