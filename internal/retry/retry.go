package retry

import "time"

// Policy describes a bounded retry loop. The same mechanism backs both
// the PTY-open and process-spawn paths, which differ only in how they
// classify errors and how long they back off.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff returns how long to sleep after a failed attempt
	// (1-based). A nil Backoff means no delay.
	Backoff func(attempt int, err error) time.Duration

	// Retryable decides whether the error from the given attempt is
	// worth another try. A nil Retryable retries every error until
	// MaxAttempts is exhausted.
	Retryable func(attempt int, err error) bool

	// Sleep is overridable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Do runs op until it succeeds, the error is classified as permanent,
// or MaxAttempts is exhausted. It returns the last error seen.
func (p Policy) Do(op func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if p.Retryable != nil && !p.Retryable(attempt, err) {
			break
		}
		if p.Backoff != nil {
			if d := p.Backoff(attempt, err); d > 0 {
				sleep(d)
			}
		}
	}
	return err
}
