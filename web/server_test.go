package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woxer/ueport/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	config.SetTemplatesFolder(t.TempDir())
	return NewServer(config.Default(), "", nil)
}

func TestHandlerSettingsRoundtrip(t *testing.T) {
	s := testServer(t)
	h := s.router()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/json/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /json/settings code=%v", w.Code)
	}

	var props config.Properties
	if err := json.Unmarshal(w.Body.Bytes(), &props); err != nil {
		t.Fatalf("Failed to unmarshal settings: %v", err)
	}
	if props.LodRegex != s.props.LodRegex {
		t.Errorf("LodRegex=%q; expected %q", props.LodRegex, s.props.LodRegex)
	}

	props.ImportLods = true
	body, _ := json.Marshal(&props)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/json/settings", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /json/settings code=%v", w.Code)
	}
	if !s.props.ImportLods {
		t.Errorf("ImportLods not applied by POST")
	}
}

func TestHandlerTemplates(t *testing.T) {
	s := testServer(t)
	h := s.router()

	body, _ := json.Marshal(&struct {
		Name string `json:"name"`
	}{Name: "chairs"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/json/templates", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /json/templates code=%v body=%v", w.Code, w.Body.String())
	}

	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatalf("Failed to unmarshal template list: %v", err)
	}
	if len(names) != 1 || names[0] != "chairs" {
		t.Errorf("templates=%v; expected [chairs]", names)
	}

	s.props.ImportGrooms = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/json/templates/chairs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /json/templates/chairs code=%v", w.Code)
	}
	if s.props.ImportGrooms {
		t.Errorf("applying template did not reset ImportGrooms")
	}
}

func TestHandlerSceneWithoutSnapshot(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, httptest.NewRequest("GET", "/json/scene", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("GET /json/scene code=%v; expected 500 without a snapshot", w.Code)
	}
}
