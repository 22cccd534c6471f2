// internal/rules/fieldpath.go
package rules

import (
	"strings"
)

/*
 * Field resolution against a selection context.
 *
 * Conditions address fields by dotted path ("product.category"). Contexts
 * are partial selections whose values may be scalars, lists, or id-bearing
 * composites, and historically mix two layouts: nested objects and
 * flattened keys with underscores ("product_category"). Resolution walks
 * the nested layout first and falls back to the flattened key when the
 * traversal comes up empty.
 *
 * Id unwrapping: a resolved composite carrying an "id" entry compares by
 * that id, so {"id": 5, "name": "Round"} and 5 are the same value to every
 * operator.
 */

// ResolveField reads a dotted path from the context. found=false means the
// path does not exist at all; a present-but-nil value resolves found=true
// with a nil value so empty/nempty can distinguish the two.
func ResolveField(ctx map[string]any, field string) (any, bool) {
	if ctx == nil {
		return nil, false
	}

	// Fast path: exact key, dotted or not.
	if v, ok := ctx[field]; ok {
		return unwrapID(v), true
	}

	if strings.Contains(field, ".") {
		if v, ok := resolveDotted(ctx, field); ok {
			return unwrapID(v), true
		}
		// Flattened-key fallback: "a.b" stored as "a_b".
		flat := strings.ReplaceAll(field, ".", "_")
		if v, ok := ctx[flat]; ok {
			return unwrapID(v), true
		}
	}

	return nil, false
}

// resolveDotted traverses nested objects one dotted segment at a time.
func resolveDotted(ctx map[string]any, field string) (any, bool) {
	segments := strings.Split(field, ".")
	var current any = ctx
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// unwrapID collapses an id-bearing composite to its id; other values pass
// through unchanged.
func unwrapID(v any) any {
	if obj, ok := v.(map[string]any); ok {
		if id, ok := obj["id"]; ok {
			return id
		}
	}
	return v
}
