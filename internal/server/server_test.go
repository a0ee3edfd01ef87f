package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *effect.Registry) {
	t.Helper()
	schema := effect.MustSchema(effect.Range("vitesse", 0.1, 3, 1))
	store := storage.NewMemStore(storage.BuiltinRecord(effect.Info{ID: "builtin", Name: "Builtin"}, schema))
	reg := effect.NewRegistry()
	return New(store, WithRegistry(reg)), reg
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("effectFile", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(body)
	} else {
		mw.WriteField("other", "x")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/effects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body.Message
}

func TestListAndGetEffects(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/effects = %d", w.Code)
	}
	var list []storage.EffectRecord
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s, %v", w.Body.String(), err)
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects/builtin", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"vitesse"`) {
		t.Errorf("GET builtin = %d %s", w.Code, w.Body.String())
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects/missing", nil))
	if w.Code != http.StatusNotFound || decodeMessage(t, w) != "Effect not found" {
		t.Errorf("GET missing = %d %s", w.Code, w.Body.String())
	}
}

func TestUploadEffect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		status   int
		message  string
	}{
		{"no file", "", "", http.StatusBadRequest, "No file uploaded"},
		{"wrong type", "fx.txt", "class A { render() {} }", http.StatusBadRequest, "Only .js or .lua effect files are allowed"},
		{"missing class", "fx.js", "function render() {}", http.StatusBadRequest, "Invalid effect file: must contain a class with render method"},
		{"broken lua", "fx.lua", "function render(", http.StatusBadRequest, ""},
		{"javascript", "heart-beat_v2.js", "class Heart { render() {} }", http.StatusCreated, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			w := do(t, s, upload(t, tc.filename, []byte(tc.body)))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if tc.message != "" {
				if got := decodeMessage(t, w); got != tc.message {
					t.Errorf("message = %q, want %q", got, tc.message)
				}
			}
		})
	}
}

func TestUploadNamesEffect(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, upload(t, "heart-beat_v2.js", []byte("class Heart { render() {} }")))

	var rec storage.EffectRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Name != "heart beat v2" || rec.Filename != "heart-beat_v2.js" || rec.ID == "" {
		t.Errorf("record = %+v", rec)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s, _ := newTestServer(t)
	big := bytes.Repeat([]byte("a"), config.MaxUploadBytes+10)
	copy(big, "class A { render() {} }")

	w := do(t, s, upload(t, "big.js", big))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadLuaRegistersEffect(t *testing.T) {
	s, reg := newTestServer(t)
	src := `params = { { key = "size", type = "range", min = 1, max = 9, default = 3 } }
function render(dt, w, h, t) fill_circle(w / 2, h / 2, param("size"), "#ffffff") end`

	w := do(t, s, upload(t, "dot.lua", []byte(src)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	var rec storage.EffectRecord
	json.Unmarshal(w.Body.Bytes(), &rec)

	if spec, ok := rec.Parameters["size"]; !ok || spec.Type != "range" {
		t.Errorf("parameters = %+v", rec.Parameters)
	}
	if !reg.Has(rec.ID) {
		t.Fatal("script not registered")
	}

	w = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/effects/"+rec.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", w.Code)
	}
	if reg.Has(rec.ID) {
		t.Error("script still registered after delete")
	}
}

func TestDeleteEffect(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/effects/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE missing = %d, want 404", w.Code)
	}

	w = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/effects/builtin", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("DELETE builtin = %d %q", w.Code, w.Body.String())
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects/builtin", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", w.Code)
	}
}

func TestPerformanceSessions(t *testing.T) {
	s, _ := newTestServer(t)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/performance-sessions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, s, req)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"effectId":"builtin","sessionData":{"fps":[60,58]},"avgFps":59,"duration":12}`, http.StatusCreated},
		{"malformed json", `{"effectId":`, http.StatusBadRequest},
		{"missing data", `{"effectId":"builtin"}`, http.StatusBadRequest},
		{"missing effect", `{"sessionData":{}}`, http.StatusBadRequest},
		{"negative", `{"effectId":"builtin","sessionData":{},"avgCpu":-4}`, http.StatusBadRequest},
		{"wrong type", `{"effectId":"builtin","sessionData":{},"avgFps":"fast"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := post(tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if tc.status == http.StatusBadRequest && decodeMessage(t, w) != "Invalid session data" {
				t.Errorf("message = %s", w.Body.String())
			}
		})
	}

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects/builtin/performance-sessions", nil))
	var list []storage.PerformanceSession
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || len(list) != 1 || list[0].AvgFPS != 59 {
		t.Errorf("sessions = %d %s", w.Code, w.Body.String())
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/effects/other/performance-sessions", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("sessions for unknown effect = %d %s", w.Code, w.Body.String())
	}
}
