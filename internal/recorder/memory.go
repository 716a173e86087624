package recorder

import (
	"sync"

	"DipSentinel/internal/model"
)

// MemoryRecorder is the in-process implementation used when SQLite is not configured.
type MemoryRecorder struct {
	mu   sync.RWMutex
	last *model.Snapshot
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{} }

func (m *MemoryRecorder) Record(snap *model.Snapshot) error {
	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()
	return nil
}

func (m *MemoryRecorder) Latest() (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil, ErrNoSnapshot
	}
	return m.last, nil
}

func (m *MemoryRecorder) Close() error { return nil }
