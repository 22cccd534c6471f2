// internal/facets/resolver.go
package facets

import (
	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Facet-based availability resolution.
 *
 * Computes, from the actual valid product combinations, which option ids
 * remain reachable per field for the current partial selection.
 *
 * Per field: scope is the line's active products filtered by the field's
 * upstream dependency selections only (the graph never includes a field in
 * its own upstream set, so a facet is never narrowed by its own value).
 * The facet is the set of distinct values the field takes across that
 * scope; a value absent from every in-scope product is unavailable, not
 * merely unknown.
 *
 * Override replacement: when the selection narrows a field's scope to at
 * most OverrideScopeLimit products and those products carry overrides for
 * the collection, the override set replaces the default-derived facet
 * outright. Replacement, never union.
 *
 * disabled = defaults - available, except for fields on the never-disable
 * exemption list. An empty scope is a legitimate all-disabled state, not
 * an error.
 *
 * Pure function of (snapshot, selection); no memoization across calls, so
 * a stale-but-consistent snapshot can never leak derived state forward.
 */

// Policy carries the resolver's tunables from configuration.
type Policy struct {
	// OverrideScopeLimit is the largest scope size at which per-product
	// overrides replace the computed facet.
	OverrideScopeLimit int

	// NeverDisable lists fields exempt from automatic disabling.
	NeverDisable []string
}

// Result is the per-field availability picture for one selection.
type Result struct {
	// Available maps field to the option ids still reachable.
	Available map[string][]string

	// Disabled maps field to the default-membership ids no longer
	// reachable.
	Disabled map[string][]string

	// Hidden maps field to ids flagged hide-in-configurator; the
	// presentation layer keeps these out of view entirely.
	Hidden map[string][]string

	// MatchCount is the number of products matching the full selection.
	MatchCount int
}

// ComputeAvailability resolves availability for every field in the graph.
func ComputeAvailability(snap *types.Snapshot, g *Graph, policy Policy, productLineID string, sel types.Selection) Result {
	lineProducts := make([]*types.Product, 0)
	for i := range snap.Products {
		p := &snap.Products[i]
		if p.Active && p.ProductLineID == productLineID {
			lineProducts = append(lineProducts, p)
		}
	}

	exempt := make(map[string]bool, len(policy.NeverDisable))
	for _, f := range policy.NeverDisable {
		exempt[f] = true
	}

	res := Result{
		Available: make(map[string][]string),
		Disabled:  make(map[string][]string),
		Hidden:    make(map[string][]string),
	}

	for _, field := range g.Fields() {
		scope := filterScope(lineProducts, g.Upstream(field), sel)
		available := facetValues(scope, field)

		if ids, replaced := overrideFacet(snap, scope, field, policy.OverrideScopeLimit); replaced {
			available = ids
		}

		res.Available[field] = available

		if exempt[field] {
			res.Disabled[field] = []string{}
		} else {
			res.Disabled[field] = subtract(snap.DefaultIDs(productLineID, field), available)
		}

		res.Hidden[field] = hiddenIDs(snap, field)
	}

	res.MatchCount = len(filterScope(lineProducts, g.Fields(), sel))
	return res
}

// filterScope keeps the products whose field values agree with the
// selection on every listed field. Fields without a selection value do not
// filter.
func filterScope(products []*types.Product, fields []string, sel types.Selection) []*types.Product {
	scope := products
	for _, field := range fields {
		want := types.CanonicalID(sel[field])
		if want == "" {
			continue
		}
		narrowed := make([]*types.Product, 0, len(scope))
		for _, p := range scope {
			if p.FieldValue(field) == want {
				narrowed = append(narrowed, p)
			}
		}
		scope = narrowed
	}
	return scope
}

// facetValues returns the distinct, sorted values a field takes across the
// scope. Products without a value for the field contribute nothing.
func facetValues(scope []*types.Product, field string) []string {
	set := types.IDSet{}
	for _, p := range scope {
		if v := p.FieldValue(field); v != "" {
			set[v] = struct{}{}
		}
	}
	return set.Sorted()
}

// overrideFacet returns the union of the scope products' override sets for
// the collection when the scope is small enough and at least one override
// exists. The boolean reports whether replacement applies.
func overrideFacet(snap *types.Snapshot, scope []*types.Product, collection string, limit int) ([]string, bool) {
	if len(scope) == 0 || len(scope) > limit {
		return nil, false
	}
	set := types.IDSet{}
	found := false
	for _, p := range scope {
		ids := snap.OverrideIDs(p.ID, collection)
		if ids == nil {
			continue
		}
		found = true
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	if !found {
		return nil, false
	}
	return set.Sorted(), true
}

// subtract returns the members of base absent from remove, sorted,
// deduplicated.
func subtract(base, remove []string) []string {
	removeSet := types.NewIDSet(remove...)
	out := types.IDSet{}
	for _, id := range base {
		if !removeSet.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out.Sorted()
}

// hiddenIDs lists a collection's active options flagged away from the
// configurator view.
func hiddenIDs(snap *types.Snapshot, collection string) []string {
	ids := types.IDSet{}
	for _, opt := range snap.OptionsIn(collection) {
		if opt.Active && opt.HideInConfigurator {
			ids[opt.ID] = struct{}{}
		}
	}
	return ids.Sorted()
}
