package memory

import (
	"context"
	"sync"

	"surgical-records/internal/domain/records"
)

// Slot guarda el blob del store en memoria (modo dev y tests).
type Slot struct {
	mu   sync.RWMutex
	blob []byte
}

func NewSlot() *Slot {
	return &Slot{}
}

var _ records.Medium = (*Slot)(nil)

func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.blob == nil {
		return nil, nil
	}
	out := make([]byte, len(s.blob))
	copy(out, s.blob)
	return out, nil
}

func (s *Slot) Write(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = make([]byte, len(blob))
	copy(s.blob, blob)
	return nil
}
