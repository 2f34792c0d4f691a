package directory

import (
	"context"
	"time"
)

// Latency holds the artificial delays applied before directory calls, so the
// presentation layer behaves as if it talked to a remote service. A zero
// duration disables the delay for that group.
type Latency struct {
	// Auth applies to Register and Authenticate.
	Auth time.Duration
	// List applies to ListAccounts.
	List time.Duration
	// Mutate applies to DeleteAccount and ToggleActive.
	Mutate time.Duration
}

// wait blocks for d or until ctx is done. It returns ctx.Err() when the
// context ends first, and callers must not have touched the store yet.
func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
