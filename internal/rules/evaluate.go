// internal/rules/evaluate.go
package rules

import (
	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Condition evaluation.
 *
 * Evaluates a compiled Node against a selection context. Pure and
 * deterministic: same tree, same context, same answer, no I/O.
 *
 * Combinator identities:
 *   - And with no children is true (a rule without conditions always fires)
 *   - Or with no children is false
 *
 * Evaluation never returns an error. Unresolvable fields and operand type
 * mismatches fail the comparison silently; callers diagnose through
 * logging, not exceptions. One malformed leaf therefore never blocks the
 * rest of a rule set.
 */

// Evaluate reports whether the condition tree matches the context.
func Evaluate(node Node, ctx types.Selection) bool {
	switch node.Kind {
	case NodeAnd:
		for _, child := range node.Children {
			if !Evaluate(child, ctx) {
				return false
			}
		}
		return true
	case NodeOr:
		for _, child := range node.Children {
			if Evaluate(child, ctx) {
				return true
			}
		}
		return false
	case NodeLeaf:
		value, found := ResolveField(ctx, node.Field)
		return Compare(node.Op, value, found, node.Value)
	default:
		return false
	}
}

// Matching returns the compiled rules whose condition matches the context,
// preserving ascending priority order from CompileAll.
func Matching(rules []*CompiledRule, ctx types.Selection) []*CompiledRule {
	var out []*CompiledRule
	for _, r := range rules {
		if Evaluate(r.Condition, ctx) {
			out = append(out, r)
		}
	}
	return out
}
