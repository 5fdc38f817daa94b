package sheet

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

type recordRow struct {
	userID string
	record models.UtmRecord
}

type MemorySheet struct {
	mu       sync.RWMutex
	settings map[string]models.WireSettings
	records  []recordRow
	now      func() time.Time
}

func NewMemorySheet() *MemorySheet {
	return &MemorySheet{
		settings: make(map[string]models.WireSettings),
		now:      time.Now,
	}
}

func (m *MemorySheet) SaveSettings(_ context.Context, userID string, s models.WireSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[userID] = mergeRow(m.settings[userID], s, m.now())
	return nil
}

func (m *MemorySheet) LoadSettings(_ context.Context, userID string) (*models.WireSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.settings[userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *MemorySheet) AppendRecord(_ context.Context, userID string, r models.UtmRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.records {
		if row.userID == userID && row.record.Timestamp == r.Timestamp {
			return nil
		}
	}

	r.OwnerID = ""
	m.records = append(m.records, recordRow{userID: userID, record: r})
	return nil
}

func (m *MemorySheet) Records(_ context.Context, userID string) ([]models.UtmRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.UtmRecord, 0)
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].userID == userID {
			out = append(out, m.records[i].record)
		}
	}
	return out, nil
}

func (m *MemorySheet) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make(map[string]struct{}, len(m.settings))
	for id := range m.settings {
		users[id] = struct{}{}
	}
	for _, row := range m.records {
		users[row.userID] = struct{}{}
	}

	return Stats{Users: len(users), Records: len(m.records)}, nil
}

func (m *MemorySheet) PingContext(context.Context) error {
	return nil
}
