package policy

import "golang.org/x/exp/rand"

// state is the bookkeeping every policy shares: pull counts and running means.
type state struct {
	counts    []int
	estimates []float64
	rounds    int
	rng       *rand.Rand
}

func newState(k int, rng *rand.Rand) state {
	if rng == nil {
		panic("rng cannot be nil")
	}
	return state{
		counts:    make([]int, k),
		estimates: make([]float64, k),
		rng:       rng,
	}
}

// record applies the incremental mean update for one observed reward.
func (s *state) record(arm int, reward float64) {
	s.counts[arm]++
	s.rounds++
	s.estimates[arm] += (reward - s.estimates[arm]) / float64(s.counts[arm])
}

// unpulled returns the lowest arm index without any pull, or -1.
func (s *state) unpulled() int {
	for arm, count := range s.counts {
		if count == 0 {
			return arm
		}
	}
	return -1
}

func (s *state) Counts() []int {
	return append([]int(nil), s.counts...)
}

func (s *state) Estimates() []float64 {
	return append([]float64(nil), s.estimates...)
}

// argmax returns the index of the maximal value, choosing uniformly among ties.
func argmax(values []float64, rng *rand.Rand) int {
	if len(values) == 0 {
		panic("values cannot be empty")
	}
	best := []int{0}
	for i := 1; i < len(values); i++ {
		switch {
		case values[i] > values[best[0]]:
			best = append(best[:0], i)
		case values[i] == values[best[0]]:
			best = append(best, i)
		}
	}
	if len(best) == 1 {
		return best[0]
	}
	return best[rng.Intn(len(best))]
}
