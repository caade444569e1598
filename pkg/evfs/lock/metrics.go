package lock

import "time"

// Metrics receives lock manager observations. A nil Metrics is valid
// everywhere a Metrics is accepted; Manager checks for nil before calling
// out, so recording is zero overhead when metrics are disabled.
type Metrics interface {
	// ObserveTurnWait records how long a caller waited before a turn was
	// admitted, split by whether it requested a writer (exclusive) turn.
	ObserveTurnWait(exclusive bool, wait time.Duration)
}
