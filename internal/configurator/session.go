// Package configurator ties the engine components together for one
// selection session.
//
// A Session owns a compiled snapshot and the caller's partial selection,
// and recomputes the full presentation state from scratch on every
// Resolve. Nothing is memoized across calls or snapshots; identical
// (snapshot, selection) inputs always produce identical outputs, and a
// replaced snapshot can never leak stale derived state forward.
//
// Sessions assume exclusive, sequential access: callers must serialize
// selection changes (a single-writer queue is enough) so the engine never
// observes a half-updated selection. The session performs no locking
// itself.
package configurator

import (
	"sort"

	"github.com/pixelsock/mtxconfig/internal/core/config"
	"github.com/pixelsock/mtxconfig/internal/facets"
	"github.com/pixelsock/mtxconfig/internal/rules"
	"github.com/pixelsock/mtxconfig/internal/sku"
	"github.com/pixelsock/mtxconfig/internal/types"
)

// State is the full presentation picture for the current selection: plain
// data, no callbacks, nothing owned by the engine after return.
type State struct {
	// Available, Disabled, Hidden are the per-field id sets from the
	// availability resolver.
	Available map[string][]string `json:"available"`
	Disabled  map[string][]string `json:"disabled"`
	Hidden    map[string][]string `json:"hidden"`

	// SetValues and DisabledOptions come from the rule binder; rules
	// disable and force, they never hide.
	SetValues       map[string]any      `json:"setValues"`
	DisabledOptions map[string][]string `json:"disabledOptions"`

	// MatchCount is the number of products matching the full selection.
	MatchCount int `json:"matchCount"`

	// SKU is the composed code for the current selection; empty until a
	// product is unambiguously selected.
	SKU string `json:"sku"`

	// Warnings lists soft issues accumulated during resolution.
	Warnings []string `json:"warnings,omitempty"`
}

// Session resolves presentation state for one product line over one
// snapshot.
type Session struct {
	id       types.SessionID
	snap     *types.Snapshot
	compiled []*rules.CompiledRule
	graph    *facets.Graph
	policy   facets.Policy
	lineID   string

	selection     types.Selection
	compileIssues []string
}

// NewSession compiles the snapshot's rules and dependency graph once and
// starts with an empty selection.
func NewSession(snap *types.Snapshot, cfg *config.ResolverConfig, productLineID string) (*Session, error) {
	compiled, skipped := rules.CompileAll(snap.Rules)

	fieldOrder := make([]string, 0, len(snap.SkuFields))
	for _, f := range sortedByOrder(snap.SkuFields) {
		if f.Order == 0 {
			continue
		}
		fieldOrder = append(fieldOrder, f.Collection)
	}
	graph := facets.NewGraph(fieldOrder)
	for _, entry := range cfg.FieldDependencies {
		field, deps, err := config.ParseDependency(entry)
		if err != nil {
			return nil, err
		}
		if err := graph.Restrict(field, deps...); err != nil {
			return nil, err
		}
	}

	var issues []string
	for _, name := range skipped {
		issues = append(issues, "rule skipped during compilation: "+name)
	}

	return &Session{
		id:       types.NewSessionID(),
		snap:     snap,
		compiled: compiled,
		graph:    graph,
		policy: facets.Policy{
			OverrideScopeLimit: cfg.OverrideScopeLimit,
			NeverDisable:       cfg.NeverDisable,
		},
		lineID:        productLineID,
		selection:     types.Selection{},
		compileIssues: issues,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() types.SessionID {
	return s.id
}

// Select sets one field of the selection.
func (s *Session) Select(field string, value any) {
	s.selection[field] = value
}

// Clear removes one field from the selection.
func (s *Session) Clear(field string) {
	delete(s.selection, field)
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() types.Selection {
	return s.selection.Clone()
}

// Resolve recomputes the full presentation state for the current
// selection.
func (s *Session) Resolve() State {
	sel := s.selection.Clone()

	availability := facets.ComputeAvailability(s.snap, s.graph, s.policy, s.lineID, sel)
	effects := rules.ApplyRules(s.compiled, sel, s.snap.OptionIDs)

	state := State{
		Available:       availability.Available,
		Disabled:        availability.Disabled,
		Hidden:          availability.Hidden,
		SetValues:       effects.SetValues,
		DisabledOptions: effects.DisabledOptions,
		MatchCount:      availability.MatchCount,
		Warnings:        append([]string(nil), s.compileIssues...),
	}

	if product := s.matchedProduct(sel); product != nil {
		state.SKU = sku.Compose(product.SKUCode, s.snap.SkuFields, sel, s.snap)
	}

	return state
}

// ChoosableIDs applies the matching rules' allow/deny constraints on top
// of the availability sets, yielding the ids a caller may actually submit
// per field. Deny always wins over allow.
func (s *Session) ChoosableIDs() map[string][]string {
	sel := s.selection.Clone()
	availability := facets.ComputeAvailability(s.snap, s.graph, s.policy, s.lineID, sel)
	cons := rules.BuildRuleConstraints(s.compiled, sel)
	return rules.ApplyConstraints(availability.Available, cons, s.snap.OptionIDs)
}

// matchedProduct returns the single product matching the full selection,
// or nil when the selection is still ambiguous or empty.
func (s *Session) matchedProduct(sel types.Selection) *types.Product {
	var match *types.Product
	for i := range s.snap.Products {
		p := &s.snap.Products[i]
		if !p.Active || p.ProductLineID != s.lineID {
			continue
		}
		if !productMatches(p, sel) {
			continue
		}
		if match != nil {
			return nil
		}
		match = p
	}
	return match
}

func productMatches(p *types.Product, sel types.Selection) bool {
	for field, value := range sel {
		want := types.CanonicalID(value)
		if want == "" {
			continue
		}
		if got := p.FieldValue(field); got != "" && got != want {
			return false
		}
	}
	return true
}

func sortedByOrder(fields []types.SkuField) []types.SkuField {
	out := append([]types.SkuField(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
