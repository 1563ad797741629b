package policy

import "golang.org/x/exp/rand"

// epsilonGreedy pulls every arm once, then explores uniformly with
// probability epsilon and otherwise exploits the best running mean.
type epsilonGreedy struct {
	state
	epsilon float64
}

func NewEpsilonGreedy(k int, epsilon float64, rng *rand.Rand) *epsilonGreedy {
	return &epsilonGreedy{
		state:   newState(k, rng),
		epsilon: epsilon,
	}
}

func (p *epsilonGreedy) SelectArm() int {
	if arm := p.unpulled(); arm >= 0 {
		return arm
	}
	if p.rng.Float64() < p.epsilon {
		return p.rng.Intn(len(p.counts))
	}
	return argmax(p.estimates, p.rng)
}

func (p *epsilonGreedy) Update(arm int, reward float64) {
	p.record(arm, reward)
}

func (p *epsilonGreedy) Name() Name {
	return EpsilonGreedy
}
