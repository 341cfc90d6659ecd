package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apilab/apilab/internal/handler/dto"
)

func TestHandler_Index_WelcomeWithoutDashboard(t *testing.T) {
	t.Parallel()

	h := New(t.TempDir())

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["message"] != "Welcome to API Lab" {
		t.Errorf("unexpected message: %s", response["message"])
	}
	if response["version"] != Version {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestHandler_Index_ServesDashboard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>API Lab</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := New(dir)

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>API Lab</h1>") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Static(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := New(dir)

	rec := httptest.NewRecorder()
	h.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing asset, got %d", rec.Code)
	}
}

func TestHandler_NotFound(t *testing.T) {
	t.Parallel()

	h := New("")

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Code != "NOT_FOUND" {
		t.Errorf("unexpected code: %s", response.Code)
	}
}

func TestHandler_Postman(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		wantBaseURL string
	}{
		{"derived_from_host", "/api/postman/collection", "http://lab.example"},
		{"query_override", "/api/postman/collection?base_url=https://api.test", "https://api.test"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			req.Host = "lab.example"
			rec := httptest.NewRecorder()

			New("").Postman(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=API_Lab_Collection.json" {
				t.Errorf("unexpected Content-Disposition: %s", cd)
			}

			var response struct {
				Variable []struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"variable"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Variable[0].Value != tc.wantBaseURL {
				t.Errorf("base_url = %q, want %q", response.Variable[0].Value, tc.wantBaseURL)
			}
		})
	}
}

func TestScenarioHandler(t *testing.T) {
	t.Parallel()

	r := newScenarioRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Data  []map[string]any `json:"data"`
		Count int              `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Count == 0 || list.Count != len(list.Data) {
		t.Errorf("count = %d, data = %d", list.Count, len(list.Data))
	}
	if _, hasSteps := list.Data[0]["steps"]; hasSteps {
		t.Error("summaries must not include steps")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios/task-management", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown: expected 404, got %d", rec.Code)
	}
	var errResp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Code != "SCENARIO_NOT_FOUND" {
		t.Errorf("unexpected code %s", errResp.Code)
	}
}
