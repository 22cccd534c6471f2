// internal/rules/apply.go
package rules

import (
	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Rule-to-presentation binding.
 *
 * Runs every matching rule's action against the option universe to produce
 * the forced values and disabled id lists the presentation layer consumes.
 *
 * Policy: rules disable, never hide. The output only marks options as
 * disabled or forced; removing ids from view belongs to the availability
 * resolver, not here.
 *
 * Accumulation across matching rules (evaluated ascending by priority):
 *   - eq forces the field's value and implies disabling every sibling id;
 *     a later eq on the same field replaces both the forced value and the
 *     implied sibling set, so the highest-priority rule wins
 *   - neq/nin disables union across rules and are never displaced by a
 *     subsequent eq
 */

// Effects is the binder's output for one context.
type Effects struct {
	// SetValues maps field to the value the rules force it to.
	SetValues map[string]any

	// DisabledOptions maps field to the option ids the rules disable,
	// sorted for deterministic presentation.
	DisabledOptions map[string][]string
}

// OptionUniverse supplies every option id for a field. Typically
// (*types.Snapshot).OptionIDs.
type OptionUniverse func(field string) []string

// ApplyRules evaluates every rule against the context and folds the
// actions of the matches into presentation effects.
func ApplyRules(rules []*CompiledRule, ctx types.Selection, universe OptionUniverse) Effects {
	setValues := make(map[string]any)
	implied := make(map[string]types.IDSet)  // sibling disables from the winning eq
	excluded := make(map[string]types.IDSet) // neq/nin disables, union only

	for _, r := range rules {
		if !Evaluate(r.Condition, ctx) {
			continue
		}
		applyAction(r.Action, setValues, implied, excluded, universe)
	}

	disabled := make(map[string][]string, len(implied)+len(excluded))
	for field, set := range implied {
		merged := unionSets(set, excluded[field])
		disabled[field] = merged.Sorted()
	}
	for field, set := range excluded {
		if _, done := implied[field]; done {
			continue
		}
		disabled[field] = set.Sorted()
	}

	return Effects{SetValues: setValues, DisabledOptions: disabled}
}

// applyAction walks an action tree leaf by leaf. Both combinators traverse
// all children: actions are declarative assignments, not alternatives.
func applyAction(action Node, setValues map[string]any, implied, excluded map[string]types.IDSet, universe OptionUniverse) {
	switch action.Kind {
	case NodeAnd, NodeOr:
		for _, child := range action.Children {
			applyAction(child, setValues, implied, excluded, universe)
		}
	case NodeLeaf:
		applyActionLeaf(action, setValues, implied, excluded, universe)
	}
}

func applyActionLeaf(leaf Node, setValues map[string]any, implied, excluded map[string]types.IDSet, universe OptionUniverse) {
	switch leaf.Op {
	case OpEq:
		forced := types.CanonicalID(leaf.Value)
		if forced == "" {
			return
		}
		setValues[leaf.Field] = leaf.Value
		// Forcing a value excludes every sibling; replace, don't union, so
		// the latest eq fully displaces the previous one's implied set.
		siblings := types.IDSet{}
		if universe != nil {
			for _, id := range universe(leaf.Field) {
				if id != forced {
					siblings[id] = struct{}{}
				}
			}
		}
		implied[leaf.Field] = siblings
	case OpNeq:
		id := types.CanonicalID(leaf.Value)
		if id == "" {
			return
		}
		addExcluded(excluded, leaf.Field, id)
	case OpNin:
		items, ok := asList(leaf.Value)
		if !ok {
			items = []any{leaf.Value}
		}
		for _, item := range items {
			if id := types.CanonicalID(item); id != "" {
				addExcluded(excluded, leaf.Field, id)
			}
		}
	}
	// Any other operator in an action is malformed; skip the leaf.
}

func addExcluded(excluded map[string]types.IDSet, field, id string) {
	set := excluded[field]
	if set == nil {
		set = types.IDSet{}
		excluded[field] = set
	}
	set[id] = struct{}{}
}
