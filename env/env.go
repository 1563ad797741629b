package env

import (
	"bandit/meta"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// RewardModel is the distribution family arms draw rewards from.
type RewardModel string

const (
	Bernoulli RewardModel = "bernoulli"
	Gaussian  RewardModel = "gaussian"
)

// Arm is a single reward source with a hidden true mean.
type Arm struct {
	Name string
	Mean float64
}

type Option func(e *Environment)

// WithGaussianRewards switches arms to Normal(mean, stdDev) rewards.
func WithGaussianRewards(stdDev float64) Option {
	return func(e *Environment) {
		e.model = Gaussian
		e.stdDev = stdDev
	}
}

// Environment owns a fixed set of arms. It is immutable once built, except
// for the random stream its pulls consume.
type Environment struct {
	arms    []Arm
	model   RewardModel
	stdDev  float64
	optimal int
	rng     *rand.Rand
}

func New(arms []Arm, rng *rand.Rand, options ...Option) (*Environment, error) {
	if len(arms) == 0 {
		return nil, fmt.Errorf("%w: environment needs at least one arm", meta.ErrInvalidConfiguration)
	}
	if rng == nil {
		panic("rng cannot be nil")
	}

	e := &Environment{
		arms:  append([]Arm(nil), arms...),
		model: Bernoulli,
		rng:   rng,
	}
	for _, option := range options {
		option(e)
	}

	if e.model == Gaussian && (e.stdDev < 0 || math.IsNaN(e.stdDev)) {
		return nil, fmt.Errorf("%w: reward standard deviation %v is negative", meta.ErrInvalidConfiguration, e.stdDev)
	}
	for i, arm := range e.arms {
		if math.IsNaN(arm.Mean) || math.IsInf(arm.Mean, 0) {
			return nil, fmt.Errorf("%w: arm %d has mean %v", meta.ErrInvalidConfiguration, i, arm.Mean)
		}
		if e.model == Bernoulli && (arm.Mean < 0 || arm.Mean > 1) {
			return nil, fmt.Errorf("%w: arm %d has probability %v outside [0,1]", meta.ErrInvalidConfiguration, i, arm.Mean)
		}
		if arm.Name == "" {
			e.arms[i].Name = fmt.Sprintf("arm-%d", i)
		}
		if arm.Mean > e.arms[e.optimal].Mean {
			e.optimal = i
		}
	}
	return e, nil
}

// Pull draws one reward from arm i.
func (e *Environment) Pull(i int) (float64, error) {
	if i < 0 || i >= len(e.arms) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", meta.ErrArmIndexOutOfRange, i, len(e.arms))
	}
	mean := e.arms[i].Mean
	if e.model == Gaussian {
		return mean + e.stdDev*e.rng.NormFloat64(), nil
	}
	if e.rng.Float64() < mean {
		return 1, nil
	}
	return 0, nil
}

func (e *Environment) NumArms() int {
	return len(e.arms)
}

func (e *Environment) Model() RewardModel {
	return e.model
}

// Arms returns a copy of the arms, true means included. Only the scoring side
// of a simulation should call it.
func (e *Environment) Arms() []Arm {
	return append([]Arm(nil), e.arms...)
}

// Mean returns the true mean of arm i.
func (e *Environment) Mean(i int) float64 {
	return e.arms[i].Mean
}

// OptimalMean is the best true mean across arms.
func (e *Environment) OptimalMean() float64 {
	return e.arms[e.optimal].Mean
}

// OptimalArm is the lowest index holding OptimalMean.
func (e *Environment) OptimalArm() int {
	return e.optimal
}

// ArmsFromMeans names arms after their index unless names are given.
func ArmsFromMeans(means []float64, names []string) []Arm {
	arms := make([]Arm, len(means))
	for i, mean := range means {
		arms[i] = Arm{Mean: mean}
		if i < len(names) {
			arms[i].Name = names[i]
		}
	}
	return arms
}
