package policy

import (
	"bandit/meta"
	"math"

	"golang.org/x/exp/rand"
)

type UCB1Option func(p *ucb1Policy)

func WithExploration(cSquared float64) UCB1Option {
	return func(p *ucb1Policy) {
		if cSquared > 0 {
			p.cSquared = cSquared
		}
	}
}

// ucb1Policy pulls every arm once, then picks the arm with the highest upper
// confidence bound.
type ucb1Policy struct {
	state
	cSquared float64
	scores   []float64
}

func NewUCB1(k int, rng *rand.Rand, options ...UCB1Option) *ucb1Policy {
	p := &ucb1Policy{
		state:    newState(k, rng),
		cSquared: meta.UCB_C_SQUARED,
		scores:   make([]float64, k),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *ucb1Policy) SelectArm() int {
	if arm := p.unpulled(); arm >= 0 {
		return arm
	}
	bound := newUCB(p.cSquared, float64(p.rounds))
	for arm, count := range p.counts {
		p.scores[arm] = bound.evaluate(p.estimates[arm], float64(count))
	}
	return argmax(p.scores, p.rng)
}

func (p *ucb1Policy) Update(arm int, reward float64) {
	p.record(arm, reward)
}

func (p *ucb1Policy) Name() Name {
	return UCB1
}

type ucb struct {
	numerator float64
}

func newUCB(cSquared float64, N float64) *ucb {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &ucb{numerator: cSquared * math.Log(N)}
}

func (u ucb) evaluate(mean float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCB = mean + sqrt(c^2*ln(N)/n)
	return mean + math.Sqrt(u.numerator/n)
}
