// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"

	"github.com/ShragaAI/shraga-ui/internal/cache"
	"github.com/ShragaAI/shraga-ui/internal/model"
)

// flowsQuery is the cache key under which the flow list lives.
const flowsQuery = "flows"

// Backend is the slice of the API client the catalog needs.
type Backend interface {
	ListFlows(ctx context.Context) ([]model.Flow, error)
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog serves flow definitions from the cache, fetching them from the
// backend on first use. Safe for concurrent use.
type Catalog struct {
	backend Backend
	store   *cache.Store
}

// New creates a catalog over the given backend and cache store.
func New(backend Backend, store *cache.Store) *Catalog {
	return &Catalog{backend: backend, store: store}
}

// Flows returns the full flow list, fetching it on first call.
// Concurrent first calls share a single backend request.
func (c *Catalog) Flows(ctx context.Context) ([]model.Flow, error) {
	result := c.store.Request(ctx, cache.NewKey(flowsQuery), func(ctx context.Context) (any, error) {
		return c.backend.ListFlows(ctx)
	})
	if result.Err != nil {
		return nil, result.Err
	}
	flows, _ := result.Data.([]model.Flow)
	return flows, nil
}

// Find returns the flow with the given id from the cached catalog.
func (c *Catalog) Find(ctx context.Context, id string) (model.Flow, bool, error) {
	flows, err := c.Flows(ctx)
	if err != nil {
		return model.Flow{}, false, err
	}
	for _, flow := range flows {
		if flow.ID == id {
			return flow, true, nil
		}
	}
	return model.Flow{}, false, nil
}

// ResolvePreferences computes the effective preferences for a flow from
// the latest cached catalog. Unknown flows, and flows whose definition
// cannot be fetched, resolve to an empty map rather than an error: a
// chat with no resolvable preferences still works, the run request just
// carries none.
func (c *Catalog) ResolvePreferences(ctx context.Context, flowID string) map[string]any {
	flow, ok, err := c.Find(ctx, flowID)
	if err != nil || !ok {
		return map[string]any{}
	}
	return model.TransformPreferences(flow.Preferences)
}

// Refresh drops the cached flow list so the next access refetches it.
func (c *Catalog) Refresh() {
	c.store.Invalidate(cache.NewKey(flowsQuery))
}
