package net

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/diegofer25/neon-siege-sub003/internal/slices"
)

func TestHealthEndpoint(t *testing.T) {
	hub, _ := newTestHub(t)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{TickRate: 60})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != 200 || rec.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDiagnosticsReportsRuntime(t *testing.T) {
	hub, _ := newTestHub(t)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{TickRate: 60})
	hub.Frame(1.0 / 60)
	hub.Frame(1.0 / 60)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/diagnostics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
	if payload["tick"] != float64(2) {
		t.Fatalf("expected tick 2, got %v", payload["tick"])
	}
	if payload["tickRate"] != float64(60) {
		t.Fatalf("expected tickRate 60, got %v", payload["tickRate"])
	}
}

func TestStateEndpointDumpsEverySlice(t *testing.T) {
	hub, _ := newTestHub(t)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/state", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Slices map[string]map[string]any `json:"slices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Slices) != len(slices.Names()) {
		t.Fatalf("expected %d slices, got %d", len(slices.Names()), len(payload.Slices))
	}
}

func TestStateEndpointRefusesPost(t *testing.T) {
	hub, _ := newTestHub(t)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/state", nil))
	if rec.Code != 405 {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
