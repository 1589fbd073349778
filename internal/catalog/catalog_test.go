// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ShragaAI/shraga-ui/internal/cache"
	"github.com/ShragaAI/shraga-ui/internal/model"
)

// fakeBackend serves a canned flow list and counts calls.
type fakeBackend struct {
	flows []model.Flow
	err   error
	calls atomic.Int64
}

func (f *fakeBackend) ListFlows(ctx context.Context) ([]model.Flow, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.flows, nil
}

func testFlows() []model.Flow {
	return []model.Flow{
		{
			ID: "faq",
			Preferences: map[string]any{
				"temperature":    map[string]any{"default_value": 0.2, "label": "Temperature"},
				"history_window": map[string]any{"default_value": float64(5)},
				"internal_note":  map[string]any{"label": "no default here"},
			},
		},
		{ID: "support", Preferences: map[string]any{}},
	}
}

func TestCatalog_Flows_CachedAcrossCalls(t *testing.T) {
	backend := &fakeBackend{flows: testFlows()}
	cat := New(backend, cache.NewStore())

	for i := 0; i < 3; i++ {
		flows, err := cat.Flows(context.Background())
		if err != nil {
			t.Fatalf("Flows() error = %v", err)
		}
		if len(flows) != 2 {
			t.Fatalf("got %d flows, want 2", len(flows))
		}
	}

	if got := backend.calls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

func TestCatalog_Find(t *testing.T) {
	cat := New(&fakeBackend{flows: testFlows()}, cache.NewStore())

	flow, ok, err := cat.Find(context.Background(), "support")
	if err != nil || !ok {
		t.Fatalf("Find(support) = %v, %v, %v", flow, ok, err)
	}
	if flow.ID != "support" {
		t.Errorf("flow.ID = %q", flow.ID)
	}

	_, ok, err = cat.Find(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Find(missing) error = %v", err)
	}
	if ok {
		t.Error("Find(missing) should report not found")
	}
}

func TestCatalog_ResolvePreferences(t *testing.T) {
	cat := New(&fakeBackend{flows: testFlows()}, cache.NewStore())

	prefs := cat.ResolvePreferences(context.Background(), "faq")
	if prefs["temperature"] != 0.2 {
		t.Errorf("temperature = %v, want 0.2", prefs["temperature"])
	}
	if _, ok := prefs["internal_note"]; ok {
		t.Error("specs without a default_value must be dropped")
	}
	if model.HistoryWindow(prefs) != 5 {
		t.Errorf("history_window = %d, want 5", model.HistoryWindow(prefs))
	}
}

func TestCatalog_ResolvePreferences_UnknownFlow(t *testing.T) {
	cat := New(&fakeBackend{flows: testFlows()}, cache.NewStore())

	prefs := cat.ResolvePreferences(context.Background(), "n/a")
	if prefs == nil || len(prefs) != 0 {
		t.Errorf("unknown flow should resolve to an empty map, got %v", prefs)
	}
}

func TestCatalog_ResolvePreferences_BackendDown(t *testing.T) {
	cat := New(&fakeBackend{err: errors.New("connection refused")}, cache.NewStore())

	prefs := cat.ResolvePreferences(context.Background(), "faq")
	if len(prefs) != 0 {
		t.Errorf("fetch failure should resolve to an empty map, got %v", prefs)
	}
}

func TestCatalog_Refresh(t *testing.T) {
	backend := &fakeBackend{flows: testFlows()}
	cat := New(backend, cache.NewStore())

	if _, err := cat.Flows(context.Background()); err != nil {
		t.Fatalf("Flows() error = %v", err)
	}

	// Flow definitions change server side; Refresh picks them up.
	backend.flows = []model.Flow{{ID: "faq", Preferences: map[string]any{
		"temperature": map[string]any{"default_value": 0.9},
	}}}
	cat.Refresh()

	prefs := cat.ResolvePreferences(context.Background(), "faq")
	if prefs["temperature"] != 0.9 {
		t.Errorf("temperature after refresh = %v, want 0.9", prefs["temperature"])
	}
	if got := backend.calls.Load(); got != 2 {
		t.Errorf("backend called %d times, want 2", got)
	}
}

func TestCatalog_Flows_ErrorNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("boom")}
	cat := New(backend, cache.NewStore())

	if _, err := cat.Flows(context.Background()); err == nil {
		t.Fatal("expected error from failing backend")
	}

	backend.err = nil
	backend.flows = testFlows()
	flows, err := cat.Flows(context.Background())
	if err != nil {
		t.Fatalf("Flows() after recovery error = %v", err)
	}
	if len(flows) != 2 {
		t.Errorf("got %d flows after recovery, want 2", len(flows))
	}
}
