// Package memory is an in-process TransactionMirror used when no spreadsheet
// is configured, and by tests.
package memory

import (
	"context"
	"sync"

	"finanzas/internal/sheets"
)

type Mirror struct {
	mu    sync.Mutex
	order []string
	rows  map[string]sheets.Row
}

var _ sheets.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[string]sheets.Row)}
}

// Upsert replaces the row with the same ID or appends a new one.
func (m *Mirror) Upsert(_ context.Context, row sheets.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[row.ID]; !ok {
		m.order = append(m.order, row.ID)
	}
	m.rows[row.ID] = row
	return nil
}

// Rows returns the rows in first-write order.
func (m *Mirror) Rows() []sheets.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sheets.Row, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.rows[id])
	}
	return out
}

func (m *Mirror) Get(id string) (sheets.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	return r, ok
}
