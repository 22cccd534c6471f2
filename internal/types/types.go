// Package types provides domain models shared across configurator components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so the core engine packages stay free of transitive weight. ID
// utilities in ids.go import uuid but are isolated for selective inclusion.
//
// Everything here describes the read-only catalog snapshot the engine
// operates on. The core never mutates Options, Products, Memberships,
// Overrides or Rules after construction; Selection and every derived
// structure are ephemeral and recomputed on each change.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Option is one selectable value within a configuration collection.
// Identity is (Collection, ID); ids are unique within a collection.
type Option struct {
	ID                 string
	Collection         string
	SKUCode            string
	DisplayName        string
	Active             bool
	SortOrder          int
	HideInConfigurator bool

	// Width/Height carry the dimension strings used to derive the size
	// field from scalar width/height selections. Empty for non-size options.
	Width  string
	Height string
}

// DefaultMembership places an option in the baseline in-scope set for a
// product line. Many-to-many: one option may belong to several lines.
type DefaultMembership struct {
	ProductLineID string
	Collection    string
	ItemID        string
}

// Override replaces (never merges with) the default membership set for one
// (product, collection) pair.
type Override struct {
	ProductID  string
	Collection string
	ItemID     string
}

// Product is a concrete, orderable combination of option values. Fields maps
// collection name to the chosen option id; a missing or empty entry means
// the product carries no value for that collection.
type Product struct {
	ID            string
	ProductLineID string
	SKUCode       string
	Active        bool
	Fields        map[string]string
}

// FieldValue returns the product's option id for a collection, or "" when
// the product carries no value there.
func (p *Product) FieldValue(collection string) string {
	if p.Fields == nil {
		return ""
	}
	return p.Fields[collection]
}

// Selection is a partial user configuration, mutated by the caller one
// field at a time. Values may be scalars, lists, or id-bearing composites
// (maps with an "id" key); the evaluator normalizes on read.
type Selection map[string]any

// Clone returns a shallow copy so derived computations never observe a
// half-updated selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SkuField is one entry of the ordered SKU field list. Order 0 is the base
// code itself; EmbeddedInBase marks fields whose code the base already
// carries, which the composer and parser both skip.
type SkuField struct {
	Collection     string
	Order          int
	EmbeddedInBase bool
}

// IDSet is a set of canonical option ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from canonical ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports set membership. Safe on a nil set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the set's members in ascending order for deterministic
// output. Numeric ids sort numerically ahead of non-numeric ids.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	SortIDs(out)
	return out
}

// SortIDs orders ids numerically when both parse as integers, falling back
// to lexicographic order. Keeps "9" ahead of "12" in presentation output.
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return ids[i] < ids[j]
	})
}

// CanonicalID normalizes a scalar from rule data or a selection into the
// string form used for option ids throughout the engine. Rule JSON carries
// ids as numbers while catalogs store them as text; both must land on the
// same key. Composites with an "id" entry collapse to that id.
func CanonicalID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any:
		if id, ok := t["id"]; ok {
			return CanonicalID(id)
		}
		return ""
	default:
		return ""
	}
}

// Resource limits enforced during rule compilation to keep evaluation
// bounded by the data's own nesting depth.
const (
	// MaxConditionDepth caps and/or nesting in a single rule expression.
	// Catalog rules in practice nest two or three levels; 16 leaves ample
	// headroom while preventing runaway recursion on malformed data.
	MaxConditionDepth = 16

	// MaxInOperatorValues limits in/nin list size so membership checks stay
	// linear in a small constant.
	MaxInOperatorValues = 256
)
