package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinedigest/cinedigest/internal/adapters/memorybus"
	"github.com/cinedigest/cinedigest/internal/app"
	"github.com/cinedigest/cinedigest/internal/ports"
)

// stubRunner remplace le pipeline: résultats et erreurs scriptés.
type stubRunner struct {
	runResult *app.RunResult
	runErr    error
	last      *app.RunResult
}

func (s *stubRunner) Run(ctx context.Context) (*app.RunResult, error) {
	return s.runResult, s.runErr
}

func (s *stubRunner) LastResult() (*app.RunResult, error) {
	if s.last == nil {
		return nil, ports.ErrNotFound
	}
	return s.last, nil
}

func newTestServer(runner Runner) *httptest.Server {
	srv := NewServer(zerolog.Nop(), runner, memorybus.New())
	return httptest.NewServer(srv.Router())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(&stubRunner{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDigest_NotFoundBeforeFirstRun(t *testing.T) {
	ts := newTestServer(&stubRunner{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/digest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any run, got %d", resp.StatusCode)
	}
}

func TestDigest_ServesLastRunHTML(t *testing.T) {
	ts := newTestServer(&stubRunner{last: &app.RunResult{ID: "r1", HTML: "<html><h1>digest</h1></html>"}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/digest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type: %q", ct)
	}
}

func TestLastRun(t *testing.T) {
	ts := newTestServer(&stubRunner{last: &app.RunResult{ID: "r1", Movies: 3}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/runs/last")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		ID     string `json:"id"`
		Movies int    `json:"movies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "r1" || body.Movies != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRun_ConflictWhileRunning(t *testing.T) {
	ts := newTestServer(&stubRunner{runErr: app.ErrRunInProgress})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/run", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 while a run is in progress, got %d", resp.StatusCode)
	}
}

func TestRun_ImmediateCompletion(t *testing.T) {
	ts := newTestServer(&stubRunner{runResult: &app.RunResult{ID: "r2"}})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/run", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "completed" {
		t.Fatalf("unexpected body: %v", body)
	}
}
