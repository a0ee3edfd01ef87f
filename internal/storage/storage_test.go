package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iburimskiy/vfx-studio/internal/effect"
)

func seeded(t *testing.T) *MemStore {
	t.Helper()
	schema := effect.MustSchema(effect.Range("vitesse", 0.1, 3, 1))
	return NewMemStore(BuiltinRecord(effect.Info{ID: "builtin", Name: "Builtin"}, schema))
}

func TestSeededEffect(t *testing.T) {
	m := seeded(t)
	list, err := m.ListEffects()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "builtin" {
		t.Fatalf("ListEffects() = %+v", list)
	}
	if spec := list[0].Parameters["vitesse"]; spec.Type != "range" || spec.Max == nil || *spec.Max != 3 {
		t.Errorf("seed parameters = %+v", list[0].Parameters)
	}
}

func TestCreateGetDelete(t *testing.T) {
	m := seeded(t)
	rec, err := m.CreateEffect(NewEffect{Name: "glow", Filename: "glow.lua", Code: "function render() end"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() || rec.Parameters == nil {
		t.Errorf("CreateEffect() = %+v", rec)
	}

	got, err := m.GetEffect(rec.ID)
	if err != nil || got.Name != "glow" {
		t.Errorf("GetEffect() = %+v, %v", got, err)
	}

	list, _ := m.ListEffects()
	if len(list) != 2 || list[1].ID != rec.ID {
		t.Errorf("ListEffects() order = %+v", list)
	}

	if err := m.DeleteEffect(rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetEffect(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEffect after delete error = %v, want ErrNotFound", err)
	}
	if err := m.DeleteEffect(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteEffect error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascadesSessions(t *testing.T) {
	m := seeded(t)
	other, _ := m.CreateEffect(NewEffect{Name: "other", Filename: "other.js"})
	data := json.RawMessage(`{"avgFps":58}`)

	for _, id := range []string{"builtin", "builtin", other.ID} {
		if _, err := m.CreateSession(NewPerformanceSession{EffectID: id, SessionData: data, AvgFPS: 58}); err != nil {
			t.Fatalf("CreateSession(%s): %v", id, err)
		}
	}

	if got, _ := m.SessionsByEffect("builtin"); len(got) != 2 {
		t.Fatalf("sessions before delete = %d, want 2", len(got))
	}
	if err := m.DeleteEffect("builtin"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.SessionsByEffect("builtin"); len(got) != 0 {
		t.Errorf("sessions after delete = %d, want 0", len(got))
	}
	if got, _ := m.SessionsByEffect(other.ID); len(got) != 1 {
		t.Errorf("unrelated sessions = %d, want 1", len(got))
	}
}

func TestCreateSessionValidation(t *testing.T) {
	m := seeded(t)
	data := json.RawMessage(`{"x":1}`)

	tests := []struct {
		name string
		in   NewPerformanceSession
	}{
		{"missing effect id", NewPerformanceSession{SessionData: data}},
		{"missing data", NewPerformanceSession{EffectID: "builtin"}},
		{"null data", NewPerformanceSession{EffectID: "builtin", SessionData: json.RawMessage("null")}},
		{"negative fps", NewPerformanceSession{EffectID: "builtin", SessionData: data, AvgFPS: -1}},
		{"unknown effect", NewPerformanceSession{EffectID: "nope", SessionData: data}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.CreateSession(tc.in)
			if !errors.Is(err, ErrInvalidSession) {
				t.Errorf("CreateSession() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestSessionsByUnknownEffect(t *testing.T) {
	got, err := seeded(t).SessionsByEffect("missing")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("SessionsByEffect(missing) = %v, %v; want empty list", got, err)
	}
}

func TestValidateEffectFile(t *testing.T) {
	tests := []struct {
		filename string
		code     string
		wantName string
		wantKind string
		wantErr  error
	}{
		{"my-cool_effect.js", "class A { render() {} }", "my cool effect", KindJS, nil},
		{"Pulse.JS", "class P { render(){} }", "Pulse", KindJS, nil},
		{"noclass.js", "function render() {}", "", "", ErrInvalidEffectFile},
		{"norender.js", "class A {}", "", "", ErrInvalidEffectFile},
		{"orbit.lua", "function render(dt, w, h) end", "orbit", KindLua, nil},
		{"broken.lua", "print('hi')", "", "", ErrInvalidEffectFile},
		{"shader.glsl", "void main() {}", "", "", ErrUnsupportedType},
		{"noext", "class render", "", "", ErrUnsupportedType},
	}
	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			name, kind, err := ValidateEffectFile(tc.filename, []byte(tc.code))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateEffectFile(%q) error = %v, want %v", tc.filename, err, tc.wantErr)
			}
			if name != tc.wantName || kind != tc.wantKind {
				t.Errorf("ValidateEffectFile(%q) = %q, %q; want %q, %q", tc.filename, name, kind, tc.wantName, tc.wantKind)
			}
		})
	}
}
