package metrics

// PullRecord is one round of a simulation.
type PullRecord struct {
	Round  int // 1-based
	Arm    int
	Reward float64
}

// Trace is the append-only record of a trial, one entry per round.
type Trace []PullRecord

// PullCounts returns how many times each of k arms was chosen.
func (t Trace) PullCounts(k int) []int {
	counts := make([]int, k)
	for _, record := range t {
		counts[record.Arm]++
	}
	return counts
}
