package metrics

import (
	"bandit/env"
	"bandit/meta"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Series is the per-round scoring of one trial. Index t holds round t+1.
type Series struct {
	CumulativeReward []float64
	Regret           []float64
	CumulativeRegret []float64
	PullCounts       []int
}

// Score computes rewards and pseudo-regret of a trace. Regret of a round is
// the gap between the optimal true mean and the true mean of the chosen arm.
func Score(trace Trace, e *env.Environment) (Series, error) {
	k := e.NumArms()
	optimal := e.OptimalMean()
	s := Series{
		CumulativeReward: make([]float64, len(trace)),
		Regret:           make([]float64, len(trace)),
		CumulativeRegret: make([]float64, len(trace)),
		PullCounts:       make([]int, k),
	}

	rewards := make([]float64, len(trace))
	for t, record := range trace {
		if record.Arm < 0 || record.Arm >= k {
			return Series{}, fmt.Errorf("%w: round %d chose arm %d", meta.ErrArmIndexOutOfRange, record.Round, record.Arm)
		}
		rewards[t] = record.Reward
		s.Regret[t] = optimal - e.Mean(record.Arm)
		s.PullCounts[record.Arm]++
	}
	floats.CumSum(s.CumulativeReward, rewards)
	floats.CumSum(s.CumulativeRegret, s.Regret)
	return s, nil
}
