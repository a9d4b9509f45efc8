package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"surgical-records/internal/metrics"
	"surgical-records/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrAlreadyLoaded = errors.New("store already loaded")
	ErrNotLoaded     = errors.New("store not loaded")
)

// Store es la colección ordenada de registros confirmados (más reciente
// primero). Toda mutación se escribe en el Medium antes de devolver.
type Store struct {
	mu     sync.RWMutex
	medium Medium
	log    logger.Logger

	items  []PatientRecord
	loaded bool

	now   func() time.Time
	newID func() string
}

func NewStore(medium Medium, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		medium: medium,
		log:    log.With(map[string]any{"component": "record_store"}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load lee el slot una sola vez. Un blob ilegible o corrupto no es fatal: el
// store arranca vacío y se deja constancia en el log. Devuelve true en ese caso.
func (s *Store) Load(ctx context.Context) (recovered bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return false, ErrAlreadyLoaded
	}
	s.loaded = true
	s.items = nil

	blob, err := s.medium.Read(ctx)
	if err != nil {
		s.log.Warn("persisted store unreadable, starting empty", map[string]any{"error": err.Error()})
		metrics.CorruptLoads.Inc()
		return true, nil
	}

	items, err := decodeRecords(blob)
	if err != nil {
		s.log.Warn("persisted store corrupt, starting empty", map[string]any{
			"error": err.Error(),
			"bytes": len(blob),
		})
		metrics.CorruptLoads.Inc()
		return true, nil
	}

	s.items = items
	metrics.StoreSize.Set(float64(len(items)))
	s.log.Info("record store loaded", map[string]any{"records": len(items)})
	return false, nil
}

// Commit valida el borrador, le asigna id y createdAt, lo antepone y persiste.
// Si la escritura falla se revierte el cambio en memoria.
// Sin Load previo devuelve ErrNotLoaded: escribir pisaría el slot persistido.
func (s *Store) Commit(ctx context.Context, d Draft) (PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return PatientRecord{}, ErrNotLoaded
	}
	if err := ValidateForCommit(d); err != nil {
		metrics.ValidationFailures.Inc()
		return PatientRecord{}, err
	}

	now := s.now()
	d = withCommitDefaults(d, now)

	rec := PatientRecord{
		ID:                s.uniqueID(),
		PatientName:       d.PatientName,
		ClinicalHistoryID: d.ClinicalHistoryID,
		PhoneNumber:       d.PhoneNumber,
		Date:              d.Date,
		Intervention:      *d.Intervention,
		CreatedAt:         now,
	}

	next := make([]PatientRecord, 0, len(s.items)+1)
	next = append(next, rec)
	next = append(next, s.items...)

	if err := s.persist(ctx, next); err != nil {
		return PatientRecord{}, err
	}
	s.items = next

	metrics.RecordsCommitted.Inc()
	metrics.StoreSize.Set(float64(len(next)))
	s.log.Info("record committed", map[string]any{"record_id": rec.ID, "records": len(next)})
	return rec, nil
}

// Remove borra el registro si existe. Un id ausente es un no-op silencioso.
func (s *Store) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := make([]PatientRecord, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.items = next

	metrics.RecordsRemoved.Inc()
	metrics.StoreSize.Set(float64(len(next)))
	s.log.Info("record removed", map[string]any{"record_id": id, "records": len(next)})
	return nil
}

// List devuelve los registros en orden inverso de confirmación.
func (s *Store) List() []PatientRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PatientRecord, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Get(id string) (PatientRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(strings.TrimSpace(id))
	if idx < 0 {
		return PatientRecord{}, false
	}
	return s.items[idx], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) persist(ctx context.Context, items []PatientRecord) error {
	blob, err := encodeRecords(items)
	if err != nil {
		return err
	}
	if err := s.medium.Write(ctx, blob); err != nil {
		s.log.Error("persist failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// uniqueID se llama con mu tomado.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range s.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func encodeRecords(items []PatientRecord) ([]byte, error) {
	if items == nil {
		items = []PatientRecord{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}

// decodeRecords acepta slot vacío o "null" como store vacío. Ids vacíos o
// repetidos hacen que el blob se considere corrupto.
func decodeRecords(blob []byte) ([]PatientRecord, error) {
	if len(strings.TrimSpace(string(blob))) == 0 {
		return nil, nil
	}

	var items []PatientRecord
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, r := range items {
		if strings.TrimSpace(r.ID) == "" {
			return nil, errors.New("decode records: record without id")
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("decode records: duplicate id %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return items, nil
}
