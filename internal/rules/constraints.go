// internal/rules/constraints.go
package rules

import (
	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Constraint extraction and merging.
 *
 * Walks a compiled action tree into per-field allow/deny sets and merges
 * them across combinators and across rules. Merging is an explicit
 * immutable left-fold: MergeConstraints(acc, next, mode) returns a fresh
 * accumulator, so there is no order-dependent mutation.
 *
 * Merge semantics:
 *   - and: allow sets intersect, deny sets union
 *   - or:  allow sets union,     deny sets union
 *   - a nil allow set means "unconstrained", never "empty"; under and it
 *     passes the other side through, under or it contributes nothing
 *
 * Leaves: eq -> allow={v}; in -> allow=set; neq -> deny={v}; nin -> deny=set.
 * Every other operator in an action is malformed and skipped; one bad
 * subtree never aborts the rest of the rule.
 *
 * Deny always wins: ApplyConstraints filters by allow first, then removes
 * denied ids unconditionally.
 */

// MergeMode selects combinator semantics for constraint merging.
type MergeMode int

const (
	MergeAnd MergeMode = iota
	MergeOr
)

// ConstraintSet holds the allow/deny sets derived for one field.
// A nil Allow means the field's candidates are unconstrained.
type ConstraintSet struct {
	Allow types.IDSet
	Deny  types.IDSet
}

// Constraints maps field name to its derived constraint set.
type Constraints map[string]ConstraintSet

// CollectConstraints extracts per-field constraint sets from an action
// tree. And children merge into one accumulator; each Or child is
// collected independently (internally with and semantics) and merged into
// the parent with or semantics.
func CollectConstraints(action Node, mode MergeMode) Constraints {
	switch action.Kind {
	case NodeAnd:
		acc := Constraints{}
		for _, child := range action.Children {
			acc = MergeConstraints(acc, CollectConstraints(child, MergeAnd), MergeAnd)
		}
		return acc
	case NodeOr:
		acc := Constraints{}
		for i, child := range action.Children {
			collected := CollectConstraints(child, MergeAnd)
			if i == 0 {
				acc = collected
				continue
			}
			acc = MergeConstraints(acc, collected, MergeOr)
		}
		return acc
	case NodeLeaf:
		return leafConstraints(action)
	default:
		return Constraints{}
	}
}

// leafConstraints maps one action leaf to its constraint set. Operators
// with no set semantics are skipped.
func leafConstraints(leaf Node) Constraints {
	switch leaf.Op {
	case OpEq:
		id := types.CanonicalID(leaf.Value)
		if id == "" {
			return Constraints{}
		}
		return Constraints{leaf.Field: {Allow: types.NewIDSet(id)}}
	case OpIn:
		allow := idSetFromValue(leaf.Value)
		if allow == nil {
			return Constraints{}
		}
		return Constraints{leaf.Field: {Allow: allow}}
	case OpNeq:
		id := types.CanonicalID(leaf.Value)
		if id == "" {
			return Constraints{}
		}
		return Constraints{leaf.Field: {Deny: types.NewIDSet(id)}}
	case OpNin:
		deny := idSetFromValue(leaf.Value)
		if deny == nil {
			return Constraints{}
		}
		return Constraints{leaf.Field: {Deny: deny}}
	default:
		return Constraints{}
	}
}

// idSetFromValue builds a set from a list operand, tolerating a bare scalar.
func idSetFromValue(v any) types.IDSet {
	items, ok := asList(v)
	if !ok {
		items = []any{v}
	}
	set := types.IDSet{}
	for _, item := range items {
		if id := types.CanonicalID(item); id != "" {
			set[id] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// MergeConstraints folds next into acc under the given mode and returns a
// new accumulator; neither input is mutated.
func MergeConstraints(acc, next Constraints, mode MergeMode) Constraints {
	out := make(Constraints, len(acc)+len(next))
	for field, cs := range acc {
		out[field] = cs
	}
	for field, cs := range next {
		existing, ok := out[field]
		if !ok {
			out[field] = ConstraintSet{Allow: copySet(cs.Allow), Deny: copySet(cs.Deny)}
			continue
		}
		out[field] = ConstraintSet{
			Allow: mergeAllow(existing.Allow, cs.Allow, mode),
			Deny:  unionSets(existing.Deny, cs.Deny),
		}
	}
	return out
}

// mergeAllow combines two allow sets. nil means unconstrained: under and it
// defers to the other side; under or the union applies to whatever both
// sides actually constrain.
func mergeAllow(a, b types.IDSet, mode MergeMode) types.IDSet {
	if a == nil {
		return copySet(b)
	}
	if b == nil {
		return copySet(a)
	}
	if mode == MergeOr {
		return unionSets(a, b)
	}
	out := types.IDSet{}
	for id := range a {
		if b.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

func unionSets(a, b types.IDSet) types.IDSet {
	if a == nil && b == nil {
		return nil
	}
	out := make(types.IDSet, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

func copySet(s types.IDSet) types.IDSet {
	if s == nil {
		return nil
	}
	out := make(types.IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// BuildRuleConstraints folds the constraints of every matching rule,
// ascending by priority, with and semantics. Non-matching rules contribute
// nothing.
func BuildRuleConstraints(rules []*CompiledRule, ctx types.Selection) Constraints {
	acc := Constraints{}
	for _, r := range rules {
		if !Evaluate(r.Condition, ctx) {
			continue
		}
		acc = MergeConstraints(acc, CollectConstraints(r.Action, MergeAnd), MergeAnd)
	}
	return acc
}

// ApplyConstraints filters per-field candidate ids. For each constrained
// field the candidates start from base, or from the field's universe when
// base has none; allow filtering runs first and denied ids are removed
// last. Unconstrained fields pass through untouched.
func ApplyConstraints(base map[string][]string, cons Constraints, universe func(field string) []string) map[string][]string {
	out := make(map[string][]string, len(base)+len(cons))
	for field, ids := range base {
		out[field] = ids
	}
	for field, cs := range cons {
		candidates := out[field]
		if len(candidates) == 0 && universe != nil {
			candidates = universe(field)
		}
		filtered := make([]string, 0, len(candidates))
		for _, id := range candidates {
			if cs.Allow != nil && !cs.Allow.Has(id) {
				continue
			}
			if cs.Deny.Has(id) {
				continue
			}
			filtered = append(filtered, id)
		}
		out[field] = filtered
	}
	return out
}
