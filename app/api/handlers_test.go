package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
	"github.com/pancak3lullz/SECurityTr8Ker/app/monitor"
	"github.com/pancak3lullz/SECurityTr8Ker/app/notify"
	"github.com/pancak3lullz/SECurityTr8Ker/app/sec"
	"github.com/pancak3lullz/SECurityTr8Ker/app/store"
)

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	c := &cfg.Cfg{
		UserAgent:             "SECurityTr8Ker test@example.com",
		CacheDir:              t.TempDir(),
		RequestInterval:       0.001,
		MaxRetries:            1,
		MaxConcurrentRequests: 1,
		CheckInterval:         600,
	}

	client := sec.NewClient(c, nil)
	analyzer := filing.NewAnalyzer(filing.NewSectionExtractor(), filing.DefaultTerms())
	st := store.New(filepath.Join(t.TempDir(), "disclosures.json"))
	notifier := notify.NewService(c)

	mon := monitor.New(c, client, analyzer, st, notifier, nil)
	sched := monitor.NewScheduler(c, mon, notifier)

	handler := NewHandler(st, mon, sched, client, "test")
	return NewServer(handler), st
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got: %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("Expected version 'test', got: %v", body["version"])
	}
}

func TestGetStats(t *testing.T) {
	r, _ := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/stats")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}

	for _, key := range []string{"monitor", "sec_client", "total_disclosures", "sec_open"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Expected key %q in stats response", key)
		}
	}
}

func TestGetDisclosures(t *testing.T) {
	r, st := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/disclosures")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body struct {
		Count       int             `json:"count"`
		Disclosures []filing.Record `json:"disclosures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body.Count != 0 {
		t.Errorf("Expected empty store, got count: %d", body.Count)
	}

	st.AddDisclosure(&filing.Filing{
		FormType:    "8-K",
		CompanyName: "Acme Corp",
		CIK:         "0000123456",
		FilingHREF:  "https://www.sec.gov/Archives/edgar/data/123456/acme-8k.htm",
		FilingDate:  "2024-02-15",
	})

	w = doRequest(r, http.MethodGet, "/disclosures")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("Expected 1 disclosure, got: %d", body.Count)
	}
	if body.Disclosures[0].CompanyName != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got: %q", body.Disclosures[0].CompanyName)
	}
}

func TestGetDisclosuresLimitValidation(t *testing.T) {
	r, _ := newTestServer(t)

	for _, limit := range []string{"abc", "-1", "1.5"} {
		w := doRequest(r, http.MethodGet, "/disclosures?limit="+limit)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for limit %q, got: %d", limit, w.Code)
		}
	}

	w := doRequest(r, http.MethodGet, "/disclosures?limit=5")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for valid limit, got: %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	w := doRequest(r, http.MethodGet, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body["service"] != "SECurityTr8Ker" {
		t.Errorf("Expected service name, got: %v", body["service"])
	}
}

func TestFaviconNoContent(t *testing.T) {
	r, _ := newTestServer(t)

	if w := doRequest(r, http.MethodGet, "/favicon.ico"); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got: %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	if w := doRequest(r, http.MethodGet, "/metrics"); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got: %d", w.Code)
	}
}
