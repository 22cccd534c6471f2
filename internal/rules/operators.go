// internal/rules/operators.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the twelve condition operators with type-aware comparison.
 *
 * Operators:
 *   - eq/neq: loose equality (numeric tolerance, id normalization)
 *   - in/nin: membership with equality semantics
 *   - gt/gte/lt/lte: numeric comparison only
 *   - contains/ncontains: substring match, string operands only
 *   - empty/nempty: nil / "" / empty-array / zero-key-object checks
 *
 * Numeric comparison handles float64/int/int64 mixing plus numeric strings:
 * rule JSON carries option ids as numbers while selections carry them as
 * text, and both must compare equal.
 *
 * Type mismatches fail the comparison (false) rather than erroring; the
 * evaluator never throws.
 */

// Operator enumerates the condition/action leaf operators.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpIn
	OpNin
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpNcontains
	OpEmpty
	OpNempty
)

var operatorNames = map[string]Operator{
	"eq":        OpEq,
	"neq":       OpNeq,
	"in":        OpIn,
	"nin":       OpNin,
	"gt":        OpGt,
	"gte":       OpGte,
	"lt":        OpLt,
	"lte":       OpLte,
	"contains":  OpContains,
	"ncontains": OpNcontains,
	"empty":     OpEmpty,
	"nempty":    OpNempty,
}

// ParseOperator maps a wire-shape key to its operator.
func ParseOperator(key string) (Operator, bool) {
	op, ok := operatorNames[key]
	return op, ok
}

// String returns the wire-shape name of the operator.
func (op Operator) String() string {
	for name, o := range operatorNames {
		if o == op {
			return name
		}
	}
	return "unspecified"
}

// Compare applies the operator to a resolved context value and the leaf's
// comparison value. found=false marks an unresolved field, which fails
// every operator except empty with a true (or absent) operand.
func Compare(op Operator, value any, found bool, target any) bool {
	if !found {
		return op == OpEmpty && emptyOperand(target)
	}

	switch op {
	case OpEq:
		return compareEqual(value, target)
	case OpNeq:
		return !compareEqual(value, target)
	case OpIn:
		return compareIn(value, target)
	case OpNin:
		return !compareIn(value, target)
	case OpGt:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp > 0
	case OpGte:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp >= 0
	case OpLt:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp < 0
	case OpLte:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp <= 0
	case OpContains:
		return compareContains(value, target)
	case OpNcontains:
		vs, ok1 := value.(string)
		ts, ok2 := target.(string)
		if !ok1 || !ok2 {
			return false
		}
		return !strings.Contains(vs, ts)
	case OpEmpty:
		if emptyOperand(target) {
			return isEmpty(value)
		}
		return !isEmpty(value)
	case OpNempty:
		if emptyOperand(target) {
			return !isEmpty(value)
		}
		return isEmpty(value)
	default:
		return false
	}
}

// compareEqual performs loose equality: numeric when both sides parse as
// numbers, canonical id string comparison otherwise. List-valued context
// values use membership semantics per the multi-valued field contract.
func compareEqual(a, b any) bool {
	if items, ok := asList(a); ok {
		for _, item := range items {
			if compareEqual(item, b) {
				return true
			}
		}
		return false
	}
	if na, oka := toNumber(a); oka {
		if nb, okb := toNumber(b); okb {
			return na == nb
		}
	}
	return canonicalValue(a) == canonicalValue(b)
}

// compareIn checks membership of the context value in the operator's list.
// A list-valued context value matches when any element is in the list; a
// scalar target is treated as a single-element list.
func compareIn(value, target any) bool {
	list, ok := asList(target)
	if !ok {
		list = []any{target}
	}
	if items, isList := asList(value); isList {
		for _, item := range items {
			for _, elem := range list {
				if compareEqual(item, elem) {
					return true
				}
			}
		}
		return false
	}
	for _, elem := range list {
		if compareEqual(value, elem) {
			return true
		}
	}
	return false
}

// compareNumeric performs three-way numeric comparison.
// ok=false when either side is non-numeric; ordering operators then fail.
func compareNumeric(a, b any) (int, bool) {
	na, oka := toNumber(a)
	nb, okb := toNumber(b)
	if !oka || !okb {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

// compareContains checks substring containment; both operands must be strings.
func compareContains(value, target any) bool {
	vs, ok1 := value.(string)
	ts, ok2 := target.(string)
	if !ok1 || !ok2 {
		return false
	}
	return strings.Contains(vs, ts)
}

// toNumber converts numeric types and numeric strings to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// canonicalValue maps a scalar to its canonical string form for equality.
// Falls back to fmt for shapes CanonicalID does not cover, keeping distinct
// composites from colliding on the empty string.
func canonicalValue(v any) string {
	if c := types.CanonicalID(v); c != "" {
		return c
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// asList normalizes slice shapes from decoded JSON and native callers.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// isEmpty reports whether a value counts as empty: nil, empty string,
// empty array, or zero-key object. Zero numbers are not empty.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// emptyOperand reports whether an empty/nempty operand asks for the
// affirmative test. Absent and true operands both do; only an explicit
// false inverts.
func emptyOperand(target any) bool {
	if b, ok := target.(bool); ok {
		return b
	}
	return true
}
