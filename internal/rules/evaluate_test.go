// internal/rules/evaluate_test.go
package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pixelsock/mtxconfig/internal/types"
)

func TestEvaluate_CombinatorIdentities(t *testing.T) {
	ctx := types.Selection{"anything": float64(1)}

	if !Evaluate(And(), ctx) {
		t.Errorf("And() = false, want true")
	}
	if Evaluate(Or(), ctx) {
		t.Errorf("Or() = true, want false")
	}
}

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		name string
		node Node
		ctx  types.Selection
		want bool
	}{
		{
			name: "eq numeric match",
			node: Leaf("mirror_style", OpEq, float64(5)),
			ctx:  types.Selection{"mirror_style": float64(5)},
			want: true,
		},
		{
			name: "eq number against numeric string",
			node: Leaf("mirror_style", OpEq, float64(5)),
			ctx:  types.Selection{"mirror_style": "5"},
			want: true,
		},
		{
			name: "eq composite compares by id",
			node: Leaf("frame_color", OpEq, float64(3)),
			ctx:  types.Selection{"frame_color": map[string]any{"id": float64(3)}},
			want: true,
		},
		{
			name: "neq",
			node: Leaf("mirror_style", OpNeq, float64(5)),
			ctx:  types.Selection{"mirror_style": float64(4)},
			want: true,
		},
		{
			name: "in membership",
			node: Leaf("mounting", OpIn, []any{float64(1), float64(2)}),
			ctx:  types.Selection{"mounting": float64(2)},
			want: true,
		},
		{
			name: "nin membership",
			node: Leaf("mounting", OpNin, []any{float64(1), float64(2)}),
			ctx:  types.Selection{"mounting": float64(3)},
			want: true,
		},
		{
			name: "eq against list is membership",
			node: Leaf("accessories", OpEq, float64(7)),
			ctx:  types.Selection{"accessories": []any{float64(6), float64(7)}},
			want: true,
		},
		{
			name: "neq against list is non-membership",
			node: Leaf("accessories", OpNeq, float64(7)),
			ctx:  types.Selection{"accessories": []any{float64(6), float64(7)}},
			want: false,
		},
		{
			name: "in against list checks overlap",
			node: Leaf("accessories", OpIn, []any{float64(9), float64(7)}),
			ctx:  types.Selection{"accessories": []any{float64(6), float64(7)}},
			want: true,
		},
		{
			name: "gt numeric",
			node: Leaf("width", OpGt, float64(20)),
			ctx:  types.Selection{"width": float64(24)},
			want: true,
		},
		{
			name: "gt rejects non-numeric operand",
			node: Leaf("width", OpGt, float64(20)),
			ctx:  types.Selection{"width": "wide"},
			want: false,
		},
		{
			name: "lte boundary",
			node: Leaf("width", OpLte, float64(24)),
			ctx:  types.Selection{"width": float64(24)},
			want: true,
		},
		{
			name: "contains",
			node: Leaf("notes", OpContains, "LED"),
			ctx:  types.Selection{"notes": "has LED strip"},
			want: true,
		},
		{
			name: "contains rejects non-string",
			node: Leaf("notes", OpContains, "LED"),
			ctx:  types.Selection{"notes": float64(5)},
			want: false,
		},
		{
			name: "ncontains",
			node: Leaf("notes", OpNcontains, "LED"),
			ctx:  types.Selection{"notes": "plain"},
			want: true,
		},
		{
			name: "empty on empty string",
			node: Leaf("notes", OpEmpty, true),
			ctx:  types.Selection{"notes": ""},
			want: true,
		},
		{
			name: "empty on empty list",
			node: Leaf("accessories", OpEmpty, true),
			ctx:  types.Selection{"accessories": []any{}},
			want: true,
		},
		{
			name: "empty on zero key object",
			node: Leaf("meta", OpEmpty, true),
			ctx:  types.Selection{"meta": map[string]any{}},
			want: true,
		},
		{
			name: "zero number is not empty",
			node: Leaf("width", OpEmpty, true),
			ctx:  types.Selection{"width": float64(0)},
			want: false,
		},
		{
			name: "empty false inverts",
			node: Leaf("notes", OpEmpty, false),
			ctx:  types.Selection{"notes": "x"},
			want: true,
		},
		{
			name: "nempty",
			node: Leaf("notes", OpNempty, true),
			ctx:  types.Selection{"notes": "x"},
			want: true,
		},
		{
			name: "missing field fails eq",
			node: Leaf("ghost", OpEq, float64(1)),
			ctx:  types.Selection{},
			want: false,
		},
		{
			name: "missing field fails neq",
			node: Leaf("ghost", OpNeq, float64(1)),
			ctx:  types.Selection{},
			want: false,
		},
		{
			name: "missing field fails nempty",
			node: Leaf("ghost", OpNempty, true),
			ctx:  types.Selection{},
			want: false,
		},
		{
			name: "missing field passes empty true",
			node: Leaf("ghost", OpEmpty, true),
			ctx:  types.Selection{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.node, tt.ctx); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_NestedCombinators(t *testing.T) {
	node := And(
		Leaf("mirror_style", OpEq, float64(5)),
		Or(
			Leaf("frame_color", OpEq, float64(1)),
			Leaf("frame_color", OpEq, float64(2)),
		),
	)

	if !Evaluate(node, types.Selection{"mirror_style": float64(5), "frame_color": float64(2)}) {
		t.Errorf("matching context = false, want true")
	}
	if Evaluate(node, types.Selection{"mirror_style": float64(5), "frame_color": float64(3)}) {
		t.Errorf("non-matching or branch = true, want false")
	}
}

func TestMatching_PreservesPriorityOrder(t *testing.T) {
	rules := []types.Rule{
		{Name: "high", Priority: 20, IfThis: map[string]any{"a": map[string]any{"eq": float64(1)}}},
		{Name: "low", Priority: 1, IfThis: map[string]any{"a": map[string]any{"eq": float64(1)}}},
		{Name: "never", Priority: 5, IfThis: map[string]any{"a": map[string]any{"eq": float64(9)}}},
	}
	compiled, _ := CompileAll(rules)

	matched := Matching(compiled, types.Selection{"a": float64(1)})
	if len(matched) != 2 {
		t.Fatalf("len(matched) = %d, want 2", len(matched))
	}
	if matched[0].Name != "low" || matched[1].Name != "high" {
		t.Errorf("order = [%s, %s], want [low, high]", matched[0].Name, matched[1].Name)
	}
}

// Property: evaluation is referentially transparent. The same tree and
// context give the same answer on every call.
func TestEvaluate_ReferentialTransparency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	fields := []string{"mirror_style", "frame_color", "light_output", "accessories"}
	ops := []Operator{OpEq, OpNeq, OpIn, OpNin, OpGt, OpLt, OpEmpty, OpNempty, OpContains}

	properties.Property("repeated evaluation agrees", prop.ForAll(
		func(fieldIdx, opIdx int, leafVal, ctxVal float64) bool {
			node := Leaf(fields[fieldIdx], ops[opIdx], leafVal)
			ctx := types.Selection{fields[(fieldIdx+1)%len(fields)]: ctxVal, fields[fieldIdx]: ctxVal}

			first := Evaluate(node, ctx)
			for i := 0; i < 5; i++ {
				if Evaluate(node, ctx) != first {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(fields)-1),
		gen.IntRange(0, len(ops)-1),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.Property("and of two leaves equals both leaves", prop.ForAll(
		func(a, b float64) bool {
			la := Leaf("x", OpGt, a)
			lb := Leaf("x", OpLt, b)
			ctx := types.Selection{"x": (a + b) / 2}
			return Evaluate(And(la, lb), ctx) == (Evaluate(la, ctx) && Evaluate(lb, ctx))
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}
