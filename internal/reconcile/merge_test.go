package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/utm-manager/internal/models"
)

func rec(ts, campaign string) models.UtmRecord {
	return models.UtmRecord{Timestamp: ts, UtmCampaign: campaign, FinalURL: "https://example.com/?utm_campaign=" + campaign}
}

func timestamps(rs []models.UtmRecord) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Timestamp)
	}
	return out
}

func TestMergeRecords_Idempotent(t *testing.T) {
	r := []models.UtmRecord{
		rec("2025-03-01T10:00:00Z", "c"),
		rec("2025-02-01T10:00:00Z", "b"),
		rec("2025-01-01T10:00:00Z", "a"),
	}

	assert.Equal(t, r, MergeRecords(r, r))
}

func TestMergeRecords_UnionCount(t *testing.T) {
	local := []models.UtmRecord{rec("2025-01-03T00:00:00Z", "l3"), rec("2025-01-01T00:00:00Z", "l1")}
	remote := []models.UtmRecord{rec("2025-01-02T00:00:00Z", "r2"), rec("2025-01-01T00:00:00Z", "r1"), rec("2025-01-04T00:00:00Z", "r4")}

	merged := MergeRecords(local, remote)

	// |local| + |remote \ timestamps(local)|
	assert.Len(t, merged, 2+2)
	assert.Equal(t, []string{
		"2025-01-04T00:00:00Z",
		"2025-01-03T00:00:00Z",
		"2025-01-02T00:00:00Z",
		"2025-01-01T00:00:00Z",
	}, timestamps(merged))
}

func TestMergeRecords_LocalWinsCollision(t *testing.T) {
	local := []models.UtmRecord{rec("2025-01-01T00:00:00Z", "local")}
	remote := []models.UtmRecord{rec("2025-01-01T00:00:00Z", "remote")}

	merged := MergeRecords(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, local[0], merged[0])
}

func TestMergeRecords_NoLocalLoss(t *testing.T) {
	local := []models.UtmRecord{
		rec("2025-01-05T00:00:00Z", "a"),
		{Timestamp: "2025-01-02T00:00:00Z", UtmCampaign: "b", ShortURL: "https://tinyurl.com/x"},
	}
	remote := []models.UtmRecord{rec("2025-01-03T00:00:00Z", "c")}

	merged := MergeRecords(local, remote)
	for _, l := range local {
		assert.Contains(t, merged, l)
	}
}

func TestMergeRecords_StrictlyDescending(t *testing.T) {
	local := []models.UtmRecord{
		rec("2025-01-01T00:00:00Z", "a"),
		rec("2025-01-01T00:00:00.500Z", "b"),
		rec("not-a-time", "c"),
	}
	remote := []models.UtmRecord{
		rec("2025-01-01T00:00:01+02:00", "d"),
		rec("2024-12-31T23:59:59Z", "e"),
		rec("2024-12-31T23:59:59Z", "e-dup"),
	}

	merged := MergeRecords(local, remote)
	require.Len(t, merged, 5)

	for i := 1; i < len(merged); i++ {
		assert.True(t, Newer(merged[i-1], merged[i]), "%s should sort before %s", merged[i-1].Timestamp, merged[i].Timestamp)
		assert.NotEqual(t, merged[i-1].Timestamp, merged[i].Timestamp)
	}
	assert.Equal(t, "not-a-time", merged[len(merged)-1].Timestamp)
}

func TestMergeRecords_DoesNotMutateInputs(t *testing.T) {
	local := []models.UtmRecord{rec("2025-01-01T00:00:00Z", "a"), rec("2025-01-02T00:00:00Z", "b")}
	snapshot := append([]models.UtmRecord(nil), local...)

	_ = MergeRecords(local, nil)
	assert.Equal(t, snapshot, local)
}

func TestMergeRecords_Empty(t *testing.T) {
	assert.Empty(t, MergeRecords(nil, nil))
	assert.NotNil(t, MergeRecords(nil, nil))
}

func TestNewerThanAndMissing(t *testing.T) {
	mark := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	rs := []models.UtmRecord{
		rec("2025-01-03T00:00:00Z", "new"),
		rec("2025-01-02T00:00:00Z", "at-mark"),
		rec("2025-01-01T00:00:00Z", "old"),
		rec("garbled", "unknown"),
	}

	assert.Equal(t, []string{"2025-01-03T00:00:00Z", "garbled"}, timestamps(NewerThan(rs, mark)))
	assert.Equal(t, []string{"2025-01-02T00:00:00Z", "2025-01-01T00:00:00Z"}, timestamps(Missing(rs, []models.UtmRecord{rs[0], rs[3]})))
}

func TestMergeSettings(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name   string
		local  *models.UserSettings
		remote *models.UserSettings
		want   models.UserSettings
	}{
		{
			name:   "empty fields never override non-empty ones",
			local:  &models.UserSettings{AIKey: "A", SyncURL: "", LastUpdated: t1},
			remote: &models.UserSettings{AIKey: "", SyncURL: "U", LastUpdated: t2},
			want:   models.UserSettings{AIKey: "A", SyncURL: "U", LastUpdated: t2},
		},
		{
			name:   "newer side wins non-empty fields",
			local:  &models.UserSettings{AIKey: "old", SyncURL: "u1", LastUpdated: t1},
			remote: &models.UserSettings{AIKey: "new", SyncURL: "u2", LastUpdated: t2},
			want:   models.UserSettings{AIKey: "new", SyncURL: "u2", LastUpdated: t2},
		},
		{
			name:   "local newer",
			local:  &models.UserSettings{AIKey: "mine", LastUpdated: t2},
			remote: &models.UserSettings{AIKey: "theirs", SyncURL: "U", LastUpdated: t1},
			want:   models.UserSettings{AIKey: "mine", SyncURL: "U", LastUpdated: t2},
		},
		{
			name:   "remote absent",
			local:  &models.UserSettings{AIKey: "A", LastUpdated: t1},
			remote: nil,
			want:   models.UserSettings{AIKey: "A", LastUpdated: t1},
		},
		{
			name:   "local absent",
			local:  nil,
			remote: &models.UserSettings{SyncURL: "U", LastUpdated: t2},
			want:   models.UserSettings{SyncURL: "U", LastUpdated: t2},
		},
		{
			name: "both absent",
			want: models.UserSettings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSettings(tt.local, tt.remote)
			assert.Equal(t, tt.want.AIKey, got.AIKey)
			assert.Equal(t, tt.want.SyncURL, got.SyncURL)
			assert.True(t, tt.want.LastUpdated.Equal(got.LastUpdated))
		})
	}
}

func TestMergeSettings_Templates(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	local := &models.UserSettings{Templates: json.RawMessage(`[{"name":"newsletter"}]`), LastUpdated: t1}
	remote := &models.UserSettings{Templates: json.RawMessage(`[]`), AIKey: "K", LastUpdated: t2}

	got := MergeSettings(local, remote)
	assert.JSONEq(t, `[{"name":"newsletter"}]`, string(got.Templates))
	assert.Equal(t, "K", got.AIKey)

	remote.Templates = json.RawMessage(`[{"name":"promo"}]`)
	got = MergeSettings(local, remote)
	assert.JSONEq(t, `[{"name":"promo"}]`, string(got.Templates))

	// result does not alias the inputs
	got.Templates[2] = 'X'
	assert.JSONEq(t, `[{"name":"promo"}]`, string(remote.Templates))
}
