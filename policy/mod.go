package policy

import (
	"bandit/meta"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Policy chooses arms from the history of its own pulls and rewards. It never
// sees the arms' true means.
type Policy interface {
	SelectArm() int
	Update(arm int, reward float64)
	Name() Name
	// Counts and Estimates return snapshots of the per-arm state.
	Counts() []int
	Estimates() []float64
}

type Name string

const (
	EpsilonGreedy    Name = "epsilon-greedy"
	UCB1             Name = "ucb1"
	ThompsonSampling Name = "thompson-sampling"
)

var Names = []Name{EpsilonGreedy, UCB1, ThompsonSampling}

func ParseName(s string) (Name, error) {
	for _, name := range Names {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown policy %q", meta.ErrInvalidConfiguration, s)
}

// Spec describes a policy variant and its parameters. Zero parameters take
// their defaults.
type Spec struct {
	Name        Name
	Epsilon     float64
	Exploration float64 // UCB1 c^2
}

func (s Spec) String() string {
	switch s.Name {
	case EpsilonGreedy:
		return fmt.Sprintf("%s(%g)", s.Name, s.Epsilon)
	case UCB1:
		if s.Exploration != 0 && s.Exploration != meta.UCB_C_SQUARED {
			return fmt.Sprintf("%s(c2=%g)", s.Name, s.Exploration)
		}
	}
	return string(s.Name)
}

func (s Spec) Validate() error {
	switch s.Name {
	case EpsilonGreedy:
		if s.Epsilon < 0 || s.Epsilon > 1 || math.IsNaN(s.Epsilon) {
			return fmt.Errorf("%w: epsilon %v outside [0,1]", meta.ErrInvalidConfiguration, s.Epsilon)
		}
	case UCB1:
		if s.Exploration < 0 || math.IsNaN(s.Exploration) {
			return fmt.Errorf("%w: exploration constant %v is negative", meta.ErrInvalidConfiguration, s.Exploration)
		}
	case ThompsonSampling:
	default:
		return fmt.Errorf("%w: unknown policy %q", meta.ErrInvalidConfiguration, s.Name)
	}
	return nil
}

// New builds a fresh policy over k arms drawing its randomness from rng.
func New(spec Spec, k int, rng *rand.Rand) (Policy, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: policy needs at least one arm", meta.ErrInvalidConfiguration)
	}

	switch spec.Name {
	case EpsilonGreedy:
		return NewEpsilonGreedy(k, spec.Epsilon, rng), nil
	case UCB1:
		exploration := spec.Exploration
		if exploration == 0 {
			exploration = meta.UCB_C_SQUARED
		}
		return NewUCB1(k, rng, WithExploration(exploration)), nil
	default:
		return NewThompsonSampling(k, rng), nil
	}
}
