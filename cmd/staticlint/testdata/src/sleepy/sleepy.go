package sleepy

import (
	"context"
	"time"
)

func wait(d time.Duration) {
	time.Sleep(d) // want "time.Sleep ignores cancellation"
}

func waitCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
