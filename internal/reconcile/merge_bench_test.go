package reconcile

import (
	"testing"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

func records(n int, start time.Time, step time.Duration) []models.UtmRecord {
	out := make([]models.UtmRecord, n)
	for i := range out {
		out[i] = models.UtmRecord{
			Timestamp:   start.Add(time.Duration(i) * step).UTC().Format(time.RFC3339Nano),
			UtmCampaign: "bench",
		}
	}
	return out
}

func BenchmarkMergeRecords(b *testing.B) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	local := records(1000, base, time.Second)
	remote := records(1000, base.Add(500*time.Second), time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MergeRecords(local, remote)
	}
}

func BenchmarkMissing(b *testing.B) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	local := records(1000, base, time.Second)
	remote := records(100, base, time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Missing(local, remote)
	}
}
