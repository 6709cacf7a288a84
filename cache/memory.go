package cache

import (
	"context"
	"sync"

	"github.com/nao1215/worklog/domain/model"
)

// Memory is an in-process cache. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	rows  []model.RawRow
	found bool
}

// NewMemory returns an empty memory cache.
func NewMemory() *Memory {
	return &Memory{}
}

// Put replaces the cached rows with a copy of rows.
func (m *Memory) Put(ctx context.Context, rows []model.RawRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]model.RawRow, len(rows))
	copy(cp, rows)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = cp
	m.found = true
	return nil
}

// Get returns the cached rows.
func (m *Memory) Get(ctx context.Context) ([]model.RawRow, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.found {
		return nil, false, nil
	}
	cp := make([]model.RawRow, len(m.rows))
	copy(cp, m.rows)
	return cp, true, nil
}

// Clear forgets the cached rows.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	m.found = false
	return nil
}
