package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iburimskiy/vfx-studio/internal/effect"
)

// MemStore is a Store backed by maps. It is safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	effects  map[string]EffectRecord
	order    []string
	sessions map[string]PerformanceSession
	sessSeq  []string
	now      func() time.Time
}

// NewMemStore returns a store holding the given seed records.
func NewMemStore(seed ...EffectRecord) *MemStore {
	m := &MemStore{
		effects:  make(map[string]EffectRecord),
		sessions: make(map[string]PerformanceSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, rec := range seed {
		if _, ok := m.effects[rec.ID]; ok {
			continue
		}
		m.effects[rec.ID] = rec
		m.order = append(m.order, rec.ID)
	}
	return m
}

func (m *MemStore) ListEffects() ([]EffectRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]EffectRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.effects[id])
	}
	return out, nil
}

func (m *MemStore) GetEffect(id string) (EffectRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.effects[id]
	if !ok {
		return EffectRecord{}, fmt.Errorf("effect %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (m *MemStore) CreateEffect(e NewEffect) (EffectRecord, error) {
	params := maps.Clone(e.Parameters)
	if params == nil {
		params = map[string]effect.Spec{}
	}
	rec := EffectRecord{
		ID:         uuid.NewString(),
		Name:       e.Name,
		Filename:   e.Filename,
		Code:       e.Code,
		Parameters: params,
		CreatedAt:  m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

func (m *MemStore) DeleteEffect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.effects[id]; !ok {
		return fmt.Errorf("effect %s: %w", id, ErrNotFound)
	}
	delete(m.effects, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })

	m.sessSeq = slices.DeleteFunc(m.sessSeq, func(sid string) bool {
		if m.sessions[sid].EffectID != id {
			return false
		}
		delete(m.sessions, sid)
		return true
	})
	return nil
}

// CreateSession stores s. The referenced effect must exist.
func (m *MemStore) CreateSession(s NewPerformanceSession) (PerformanceSession, error) {
	if err := s.Validate(); err != nil {
		return PerformanceSession{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.effects[s.EffectID]; !ok {
		return PerformanceSession{}, fmt.Errorf("%w: effect %s: %w", ErrInvalidSession, s.EffectID, ErrNotFound)
	}
	rec := PerformanceSession{
		ID:          uuid.NewString(),
		EffectID:    s.EffectID,
		SessionData: slices.Clone(s.SessionData),
		AvgFPS:      s.AvgFPS,
		AvgMemory:   s.AvgMemory,
		AvgCPU:      s.AvgCPU,
		Duration:    s.Duration,
		CreatedAt:   m.now(),
	}
	m.sessions[rec.ID] = rec
	m.sessSeq = append(m.sessSeq, rec.ID)
	return rec, nil
}

// SessionsByEffect lists sessions in creation order. An unknown effect
// yields an empty list.
func (m *MemStore) SessionsByEffect(effectID string) ([]PerformanceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []PerformanceSession{}
	for _, sid := range m.sessSeq {
		if s := m.sessions[sid]; s.EffectID == effectID {
			out = append(out, s)
		}
	}
	return out, nil
}
