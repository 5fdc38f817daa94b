package remote

import (
	"context"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

// PushBatch pushes records one at a time, waiting delay between calls to
// stay under the remote's rate limits. A record the remote rejects is
// recorded and the batch continues. The batch stops early when ctx is done
// or the remote is unreachable; the remaining records are reported as
// failures and the cause is returned.
func PushBatch(ctx context.Context, s Store, ownerID string, records []models.UtmRecord, delay time.Duration) (models.BatchResult, error) {
	res := models.BatchResult{
		Total:   len(records),
		Results: make([]models.BatchItem, 0, len(records)),
	}

	for i, r := range records {
		err := ctx.Err()
		if err == nil && i > 0 {
			err = SleepWithContext(ctx, delay)
		}
		if err == nil {
			var result models.PushResult
			result, err = Push(ctx, s, ownerID, r)
			if err == nil {
				res.Results = append(res.Results, models.BatchItem{Index: i, Result: result.String()})
				switch result {
				case models.PushFailed:
					res.ErrorCount++
				case models.PushUnconfirmed:
					res.UnconfirmedCount++
					res.SuccessCount++
				default:
					res.SuccessCount++
				}
				continue
			}
		}

		for j := i; j < len(records); j++ {
			res.ErrorCount++
			res.Results = append(res.Results, models.BatchItem{Index: j, Result: models.PushFailed.String(), Error: err.Error()})
		}
		return res, err
	}

	return res, nil
}

// SleepWithContext waits for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
