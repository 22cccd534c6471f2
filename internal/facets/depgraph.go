// internal/facets/depgraph.go
package facets

import (
	"fmt"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Field dependency graph.
 *
 * Which field may filter which is an explicit, testable structure instead
 * of conditionals scattered through the resolver. The declared field order
 * is the topological order: an edge B -> A ("B is filtered by A") is legal
 * only when A precedes B, which rules out cycles by construction and
 * prevents the circular narrowing the resolver must avoid.
 *
 * NewGraph starts from the common case (every field depends on all fields
 * before it); Restrict narrows a field to an explicit dependency list when
 * the catalog says so. A field never appears in its own upstream set, so a
 * facet is never filtered by its own selection.
 */

// Graph holds the per-field upstream dependency sets.
type Graph struct {
	fields   []string
	position map[string]int
	upstream map[string][]string
}

// NewGraph builds the precedence-closure graph over the ordered field
// list: each field's upstream set is every field declared before it.
func NewGraph(orderedFields []string) *Graph {
	g := &Graph{
		fields:   append([]string(nil), orderedFields...),
		position: make(map[string]int, len(orderedFields)),
		upstream: make(map[string][]string, len(orderedFields)),
	}
	for i, f := range g.fields {
		g.position[f] = i
		g.upstream[f] = append([]string(nil), g.fields[:i]...)
	}
	return g
}

// Restrict replaces a field's upstream set with an explicit list. Every
// dependency must be a known field declared before the dependent one.
func (g *Graph) Restrict(field string, deps ...string) error {
	pos, ok := g.position[field]
	if !ok {
		return fmt.Errorf("restrict %q: %w", field, types.ErrUnknownField)
	}
	for _, dep := range deps {
		depPos, ok := g.position[dep]
		if !ok {
			return fmt.Errorf("restrict %q on %q: %w", field, dep, types.ErrUnknownField)
		}
		if depPos >= pos {
			return fmt.Errorf("restrict %q on %q: %w", field, dep, types.ErrDependencyCycle)
		}
	}
	g.upstream[field] = append([]string(nil), deps...)
	return nil
}

// Fields returns the declared field order.
func (g *Graph) Fields() []string {
	return g.fields
}

// Upstream returns the fields allowed to filter the given field's facet.
func (g *Graph) Upstream(field string) []string {
	return g.upstream[field]
}

// Contains reports whether the field is part of the graph.
func (g *Graph) Contains(field string) bool {
	_, ok := g.position[field]
	return ok
}
