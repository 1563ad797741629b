package policy

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// thompsonSampling keeps a Beta posterior per arm and plays the arm whose
// posterior draw is highest.
type thompsonSampling struct {
	state
	alpha   []float64
	beta    []float64
	samples []float64
}

func NewThompsonSampling(k int, rng *rand.Rand) *thompsonSampling {
	p := &thompsonSampling{
		state:   newState(k, rng),
		alpha:   make([]float64, k),
		beta:    make([]float64, k),
		samples: make([]float64, k),
	}
	// Uniform Beta(1,1) prior
	for arm := range p.alpha {
		p.alpha[arm] = 1
		p.beta[arm] = 1
	}
	return p
}

func (p *thompsonSampling) SelectArm() int {
	for arm := range p.samples {
		posterior := distuv.Beta{Alpha: p.alpha[arm], Beta: p.beta[arm], Src: p.rng}
		p.samples[arm] = posterior.Rand()
	}
	return argmax(p.samples, p.rng)
}

// Update counts a reward of 1 as a success and 0 as a failure. Rewards in
// between count fractionally.
func (p *thompsonSampling) Update(arm int, reward float64) {
	p.record(arm, reward)

	success := min(max(reward, 0), 1)
	p.alpha[arm] += success
	p.beta[arm] += 1 - success
}

func (p *thompsonSampling) Name() Name {
	return ThompsonSampling
}

// Posterior returns snapshots of the Beta parameters per arm.
func (p *thompsonSampling) Posterior() (alpha, beta []float64) {
	return append([]float64(nil), p.alpha...), append([]float64(nil), p.beta...)
}
