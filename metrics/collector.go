package metrics

import (
	"sync/atomic"
	"time"
)

// TrialMetric describes how a single trial ran.
type TrialMetric struct {
	Policy    string
	Trial     int
	Seed      uint64
	StartTime time.Time
	Duration  time.Duration
	Rounds    int
}

type Collector interface {
	Start(policy string, trial int, seed uint64)
	AddRound()
	Complete() TrialMetric
}

type collector struct {
	policy    string
	trial     int
	seed      uint64
	startTime time.Time
	rounds    atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(policy string, trial int, seed uint64) {
	m.startTime = time.Now()
	m.policy = policy
	m.trial = trial
	m.seed = seed
	m.rounds.Store(0)
}

func (m *collector) AddRound() {
	m.rounds.Add(1)
}

func (m *collector) Complete() TrialMetric {
	return TrialMetric{
		Policy:    m.policy,
		Trial:     m.trial,
		Seed:      m.seed,
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
		Rounds:    int(m.rounds.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(policy string, trial int, seed uint64) {}
func (m *dummyCollector) AddRound()                                   {}
func (m *dummyCollector) Complete() TrialMetric                       { return TrialMetric{} }
