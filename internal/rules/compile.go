// internal/rules/compile.go
package rules

import (
	"sort"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Rule compilation.
 *
 * Compiles the raw wire-shape condition/action JSON into the tagged Node
 * variant exactly once, so evaluation never re-interprets loose maps.
 *
 * Wire shape (the external contract):
 *   {"and": [<node>, ...]}                combinator
 *   {"or":  [<node>, ...]}                combinator
 *   {"<field>": {"<op>": <value>, ...}}   leaf group
 *   {"<field>": {"<nested>": {...}}}      dotted path ("field.nested")
 *   {"<field>": <scalar>}                 shorthand for {"eq": <scalar>}
 *
 * Multiple keys in one object combine with AND. Object keys are walked in
 * sorted order so compilation is deterministic regardless of map iteration.
 *
 * Graceful degradation: unknown operators and structurally malformed
 * fragments are dropped rather than failing the rule; one bad fragment must
 * not block the rest. Hard errors are reserved for resource limits (depth,
 * in-list size). Lint surfaces the dropped fragments for batch validation.
 */

// NodeKind discriminates the Node variant.
type NodeKind int

const (
	NodeAnd NodeKind = iota
	NodeOr
	NodeLeaf
)

// Node is a compiled condition or action tree.
// And with no children is vacuously true; Or with no children is false.
type Node struct {
	Kind     NodeKind
	Children []Node // for NodeAnd / NodeOr

	Field string // for NodeLeaf
	Op    Operator
	Value any
}

// And builds an AND node over children.
func And(children ...Node) Node {
	return Node{Kind: NodeAnd, Children: children}
}

// Or builds an OR node over children.
func Or(children ...Node) Node {
	return Node{Kind: NodeOr, Children: children}
}

// Leaf builds a single comparison node.
func Leaf(field string, op Operator, value any) Node {
	return Node{Kind: NodeLeaf, Field: field, Op: op, Value: value}
}

// CompiledRule is a rule with both trees parsed, ready for evaluation.
type CompiledRule struct {
	ID        types.RuleID
	Name      string
	Priority  int
	Condition Node
	Action    Node
}

// Compile parses a rule's condition and action trees.
// Returns ErrConditionTooDeep / ErrTooManyInValues for limit violations;
// malformed fragments inside either tree are dropped silently.
func Compile(rule *types.Rule) (*CompiledRule, error) {
	cond, err := CompileNode(rule.IfThis)
	if err != nil {
		return nil, err
	}
	action, err := CompileNode(rule.ThenThat)
	if err != nil {
		return nil, err
	}
	return &CompiledRule{
		ID:        rule.ID,
		Name:      rule.Name,
		Priority:  rule.Priority,
		Condition: cond,
		Action:    action,
	}, nil
}

// CompileAll compiles every rule, skipping ones that violate resource
// limits, and returns the survivors sorted ascending by priority. The
// second return lists the names of skipped rules for diagnostics.
func CompileAll(rules []types.Rule) ([]*CompiledRule, []string) {
	compiled := make([]*CompiledRule, 0, len(rules))
	var skipped []string
	for i := range rules {
		cr, err := Compile(&rules[i])
		if err != nil {
			skipped = append(skipped, rules[i].Name)
			continue
		}
		compiled = append(compiled, cr)
	}
	// Stable sort: equal-priority rules keep catalog order so conflicting
	// forced values resolve the same way on every call.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority < compiled[j].Priority
	})
	return compiled, skipped
}

// CompileNode parses one raw tree. A nil or empty map compiles to And()
// which evaluates to true, matching the "no condition" convention.
func CompileNode(raw map[string]any) (Node, error) {
	return compileObject(raw, "", 0)
}

// compileObject turns one wire object into a node. prefix carries the
// dotted path accumulated from enclosing field keys.
func compileObject(raw map[string]any, prefix string, depth int) (Node, error) {
	if depth > types.MaxConditionDepth {
		return Node{}, types.ErrConditionTooDeep
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var children []Node
	for _, key := range keys {
		val := raw[key]

		switch key {
		case "and", "or":
			items, ok := val.([]any)
			if !ok {
				continue
			}
			var sub []Node
			for _, item := range items {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				node, err := compileObject(obj, prefix, depth+1)
				if err != nil {
					return Node{}, err
				}
				sub = append(sub, node)
			}
			if key == "and" {
				children = append(children, And(sub...))
			} else {
				children = append(children, Or(sub...))
			}

		default:
			field := key
			if prefix != "" {
				field = prefix + "." + key
			}
			node, err := compileField(field, val, depth+1)
			if err != nil {
				return Node{}, err
			}
			if node != nil {
				children = append(children, *node)
			}
		}
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return And(children...), nil
}

// compileField parses the value under a field key: an operator group, a
// nested object extending the dotted path, or a bare scalar (eq shorthand).
// Returns nil when the fragment contributes nothing usable.
func compileField(field string, val any, depth int) (*Node, error) {
	if depth > types.MaxConditionDepth {
		return nil, types.ErrConditionTooDeep
	}

	obj, ok := val.(map[string]any)
	if !ok {
		// Bare scalar shorthand: {"field": 5} reads as {"field": {"eq": 5}}
		if val == nil {
			return nil, nil
		}
		leaf := Leaf(field, OpEq, val)
		return &leaf, nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var children []Node
	for _, key := range keys {
		opVal := obj[key]

		if op, ok := ParseOperator(key); ok {
			if op == OpIn || op == OpNin {
				if list, isList := opVal.([]any); isList && len(list) > types.MaxInOperatorValues {
					return nil, types.ErrTooManyInValues
				}
			}
			children = append(children, Leaf(field, op, opVal))
			continue
		}

		// Non-operator key: nested object extends the dotted path.
		if nested, isObj := opVal.(map[string]any); isObj {
			node, err := compileField(field+"."+key, nested, depth+1)
			if err != nil {
				return nil, err
			}
			if node != nil {
				children = append(children, *node)
			}
		}
		// Anything else is malformed; drop the fragment.
	}

	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return &children[0], nil
	default:
		node := And(children...)
		return &node, nil
	}
}

// Lint reports human-readable problems in a raw tree without failing
// compilation: unknown operator keys, non-list and/or values, fragments the
// compiler would drop. Used by batch rule validation.
func Lint(raw map[string]any) []string {
	var problems []string
	lintObject(raw, "", &problems)
	return problems
}

func lintObject(raw map[string]any, path string, problems *[]string) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := raw[key]
		at := key
		if path != "" {
			at = path + "." + key
		}

		switch key {
		case "and", "or":
			items, ok := val.([]any)
			if !ok {
				*problems = append(*problems, at+": combinator value is not a list")
				continue
			}
			for i, item := range items {
				obj, ok := item.(map[string]any)
				if !ok {
					*problems = append(*problems, at+": combinator child is not an object")
					continue
				}
				_ = i
				lintObject(obj, at, problems)
			}
		default:
			obj, ok := val.(map[string]any)
			if !ok {
				continue // bare scalar shorthand is valid
			}
			lintFieldObject(obj, at, problems)
		}
	}
}

func lintFieldObject(obj map[string]any, path string, problems *[]string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := obj[key]
		at := path + "." + key

		if op, ok := ParseOperator(key); ok {
			if op == OpIn || op == OpNin {
				if _, isList := val.([]any); !isList {
					*problems = append(*problems, at+": in/nin value is not a list")
				}
			}
			continue
		}
		if nested, isObj := val.(map[string]any); isObj {
			lintFieldObject(nested, at, problems)
			continue
		}
		*problems = append(*problems, at+": unknown operator")
	}
}
