// Package storage keeps uploaded effect files and performance-session
// records for the HTTP backend. Records live in memory only.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iburimskiy/vfx-studio/internal/effect"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidEffectFile = errors.New("invalid effect file")
	ErrUnsupportedType   = errors.New("unsupported effect file type")
	ErrInvalidSession    = errors.New("invalid session data")
)

// EffectRecord is a stored effect file.
type EffectRecord struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Filename   string                 `json:"filename"`
	Code       string                 `json:"code"`
	Parameters map[string]effect.Spec `json:"parameters"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// NewEffect is the input to CreateEffect.
type NewEffect struct {
	Name       string
	Filename   string
	Code       string
	Parameters map[string]effect.Spec
}

// PerformanceSession is a stored metrics summary for one effect.
type PerformanceSession struct {
	ID          string          `json:"id"`
	EffectID    string          `json:"effectId"`
	SessionData json.RawMessage `json:"sessionData"`
	AvgFPS      int             `json:"avgFps"`
	AvgMemory   int             `json:"avgMemory"`
	AvgCPU      int             `json:"avgCpu"`
	Duration    int             `json:"duration"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewPerformanceSession is the input to CreateSession. Omitted numbers
// are stored as 0.
type NewPerformanceSession struct {
	EffectID    string          `json:"effectId"`
	SessionData json.RawMessage `json:"sessionData"`
	AvgFPS      int             `json:"avgFps"`
	AvgMemory   int             `json:"avgMemory"`
	AvgCPU      int             `json:"avgCpu"`
	Duration    int             `json:"duration"`
}

// Validate checks required fields and number ranges.
func (s NewPerformanceSession) Validate() error {
	if s.EffectID == "" {
		return fmt.Errorf("%w: effectId is required", ErrInvalidSession)
	}
	if len(s.SessionData) == 0 || string(s.SessionData) == "null" || !json.Valid(s.SessionData) {
		return fmt.Errorf("%w: sessionData is required", ErrInvalidSession)
	}
	if s.AvgFPS < 0 || s.AvgMemory < 0 || s.AvgCPU < 0 || s.Duration < 0 {
		return fmt.Errorf("%w: negative metric", ErrInvalidSession)
	}
	return nil
}

// Store is the persistence boundary of the HTTP backend.
type Store interface {
	ListEffects() ([]EffectRecord, error)
	GetEffect(id string) (EffectRecord, error)
	CreateEffect(e NewEffect) (EffectRecord, error)
	// DeleteEffect removes the effect and every session recorded for it.
	DeleteEffect(id string) error
	CreateSession(s NewPerformanceSession) (PerformanceSession, error)
	SessionsByEffect(effectID string) ([]PerformanceSession, error)
}

// BuiltinRecord describes a compiled-in effect so it is listed alongside
// uploads.
func BuiltinRecord(info effect.Info, schema *effect.Schema) EffectRecord {
	return EffectRecord{
		ID:         info.ID,
		Name:       info.Name,
		Filename:   info.ID + ".go",
		Parameters: schema.Specs(),
		CreatedAt:  time.Now().UTC(),
	}
}
