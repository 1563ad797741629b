package simulation

import (
	"bandit/env"
	"bandit/meta"
	"bandit/metrics"
	"bandit/policy"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type mockPolicy struct {
	arm     int
	updates int
}

func (m *mockPolicy) SelectArm() int            { return m.arm }
func (m *mockPolicy) Update(arm int, r float64) { m.updates++ }
func (m *mockPolicy) Name() policy.Name         { return "mock" }
func (m *mockPolicy) Counts() []int             { return nil }
func (m *mockPolicy) Estimates() []float64      { return nil }

func scenario(spec policy.Spec, horizon int, seed uint64) Trial {
	return Trial{
		Arms:    env.ArmsFromMeans([]float64{0.1, 0.5, 0.9}, nil),
		Policy:  spec,
		Horizon: horizon,
		Seed:    seed,
	}
}

var specs = []policy.Spec{
	{Name: policy.EpsilonGreedy, Epsilon: 0.1},
	{Name: policy.UCB1},
	{Name: policy.ThompsonSampling},
}

func TestNewRunner(t *testing.T) {
	t.Run("rejecting non-positive horizons", func(t *testing.T) {
		for _, horizon := range []int{0, -5, meta.MAX_HORIZON + 1} {
			_, err := NewRunner(horizon)

			require.ErrorIs(t, err, meta.ErrInvalidConfiguration)
		}
	})
}

func TestRunnerRun(t *testing.T) {
	t.Run("recording every round", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		e, err := env.New(env.ArmsFromMeans([]float64{0.2, 0.4, 0.6}, nil), rng)
		require.NoError(t, err)
		p := policy.NewUCB1(3, rng)
		collector := metrics.NewCollector()
		runner, err := NewRunner(100, WithCollector(collector))
		require.NoError(t, err)

		collector.Start("ucb1", 0, 1)
		trace, err := runner.Run(p, e)

		require.NoError(t, err)
		require.Len(t, trace, 100)
		for i, record := range trace {
			require.Equal(t, i+1, record.Round)
		}
		require.Equal(t, trace.PullCounts(3), p.Counts(), "Policy counts should match the trace")
		require.Equal(t, 100, collector.Complete().Rounds)
	})

	t.Run("aborting on an invalid arm", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		e, err := env.New(env.ArmsFromMeans([]float64{0.2, 0.4, 0.6}, nil), rng)
		require.NoError(t, err)
		p := &mockPolicy{arm: 7}
		runner, err := NewRunner(10)
		require.NoError(t, err)

		trace, err := runner.Run(p, e)

		require.ErrorIs(t, err, meta.ErrArmIndexOutOfRange)
		require.Empty(t, trace)
		require.Zero(t, p.updates, "Policy should not be updated after a failed pull")
	})
}

func TestTrialRun(t *testing.T) {
	t.Run("reproducing traces with the same seed", func(t *testing.T) {
		for _, spec := range specs {
			trace1, _, err := scenario(spec, 500, 42).Run()
			require.NoError(t, err)
			trace2, _, err := scenario(spec, 500, 42).Run()
			require.NoError(t, err)

			require.Equal(t, trace1, trace2, "%s should be deterministic under a fixed seed", spec)
		}
	})

	t.Run("varying traces across seeds", func(t *testing.T) {
		trace1, _, err := scenario(specs[2], 200, 1).Run()
		require.NoError(t, err)
		trace2, _, err := scenario(specs[2], 200, 2).Run()
		require.NoError(t, err)

		require.NotEqual(t, trace1, trace2)
	})

	t.Run("pulling every arm within the first K rounds", func(t *testing.T) {
		for _, spec := range specs[:2] {
			trace, _, err := scenario(spec, 3, 42).Run()
			require.NoError(t, err)

			require.Equal(t, []int{1, 1, 1}, trace.PullCounts(3), "%s should initialize round-robin", spec)
		}
	})

	t.Run("thompson sampling concentrates on the best arm", func(t *testing.T) {
		const horizon = 1000
		trace, e, err := scenario(specs[2], horizon, 42).Run()
		require.NoError(t, err)

		counts := trace.PullCounts(3)
		require.Greater(t, float64(counts[2])/horizon, 0.8)

		s, err := metrics.Score(trace, e)
		require.NoError(t, err)
		linear := horizon * (0.9 - 0.1)
		require.Less(t, s.CumulativeRegret[horizon-1], linear/4, "Regret should grow sub-linearly")
		for i := 1; i < horizon; i++ {
			require.GreaterOrEqual(t, s.CumulativeRegret[i], s.CumulativeRegret[i-1])
		}
	})

	t.Run("rejecting invalid setups", func(t *testing.T) {
		trial := scenario(policy.Spec{Name: policy.EpsilonGreedy, Epsilon: 2}, 10, 1)
		_, _, err := trial.Run()
		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)

		trial = scenario(specs[0], 0, 1)
		_, _, err = trial.Run()
		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)

		trial = scenario(specs[0], 10, 1)
		trial.Arms = nil
		_, _, err = trial.Run()
		require.ErrorIs(t, err, meta.ErrInvalidConfiguration)
	})

	t.Run("collecting trial metrics", func(t *testing.T) {
		collector := metrics.NewCollector()
		trial := scenario(specs[1], 50, 9)
		trial.Index = 4
		trial.Collector = collector

		_, _, err := trial.Run()
		require.NoError(t, err)

		got := collector.Complete()
		require.Equal(t, 50, got.Rounds)
		require.Equal(t, 4, got.Trial)
		require.Equal(t, uint64(9), got.Seed)
		require.Equal(t, "ucb1", got.Policy)
	})
}
