// meta/meta.go
package meta

import "errors"

// MIN_ARMS and MAX_ARMS bound the number of arms an experiment may configure.
const MIN_ARMS = 3
const MAX_ARMS = 5

// DEFAULT_HORIZON defines the number of rounds per trial.
const DEFAULT_HORIZON = 5000

// MAX_HORIZON caps the number of rounds per trial.
const MAX_HORIZON = 10_000_000

// DEFAULT_TRIALS defines the number of independent trials per policy.
const DEFAULT_TRIALS = 1

// DEFAULT_EPSILON defines the exploration rate of epsilon-greedy.
const DEFAULT_EPSILON = 0.1

// UCB_C_SQUARED defines the default UCB1 exploration constant c^2.
const UCB_C_SQUARED = 2.0

var (
	// ErrInvalidConfiguration is returned when an experiment is set up with
	// values outside their allowed ranges.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrArmIndexOutOfRange is returned when an arm index is not in [0, K).
	ErrArmIndexOutOfRange = errors.New("arm index out of range")
)
