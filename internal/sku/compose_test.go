// internal/sku/compose_test.go
package sku

import (
	"testing"

	"github.com/pixelsock/mtxconfig/internal/types"
)

func skuSnapshot() *types.Snapshot {
	options := []types.Option{
		{ID: "1", Collection: "mirror_style", SKUCode: "L1", Active: true},
		{ID: "2", Collection: "mirror_style", SKUCode: "L2", Active: true},
		{ID: "30", Collection: "frame_thickness", SKUCode: "T", Active: true},
		{ID: "20", Collection: "light_direction", SKUCode: "D", Active: true},
		{ID: "21", Collection: "light_direction", SKUCode: "I", Active: true},
		{ID: "10", Collection: "size", SKUCode: "2436", Active: true, Width: "24", Height: "36"},
		{ID: "11", Collection: "size", SKUCode: "3036", Active: true, Width: "30", Height: "36"},
	}
	products := []types.Product{
		{ID: "p1", ProductLineID: "deco", SKUCode: "D01D", Active: true, Fields: map[string]string{"mirror_style": "1"}},
		{ID: "p2", ProductLineID: "deco", SKUCode: "D01", Active: true, Fields: map[string]string{"mirror_style": "2"}},
		// Inactive products never match a base code.
		{ID: "p3", ProductLineID: "deco", SKUCode: "D01D", Active: false},
	}
	memberships := []types.DefaultMembership{
		{ProductLineID: "deco", Collection: "mirror_style", ItemID: "1"},
		{ProductLineID: "deco", Collection: "mirror_style", ItemID: "2"},
		{ProductLineID: "deco", Collection: "frame_thickness", ItemID: "30"},
		{ProductLineID: "deco", Collection: "light_direction", ItemID: "20"},
		{ProductLineID: "deco", Collection: "light_direction", ItemID: "21"},
		{ProductLineID: "deco", Collection: "size", ItemID: "10"},
		{ProductLineID: "deco", Collection: "size", ItemID: "11"},
	}
	return types.NewSnapshot(options, products, memberships, nil, nil, nil)
}

func skuFields() []types.SkuField {
	return []types.SkuField{
		{Collection: "base", Order: 0},
		{Collection: "mirror_style", Order: 1},
		{Collection: "frame_thickness", Order: 2, EmbeddedInBase: true},
		{Collection: "light_direction", Order: 3},
		{Collection: "size", Order: 4},
	}
}

func TestCompose(t *testing.T) {
	snap := skuSnapshot()

	tests := []struct {
		name string
		sel  types.Selection
		want string
	}{
		{
			name: "empty selection yields bare base",
			sel:  types.Selection{},
			want: "D01D",
		},
		{
			name: "segments follow field order",
			sel:  types.Selection{"light_direction": float64(20), "mirror_style": float64(1)},
			want: "D01D-L1-D",
		},
		{
			name: "embedded field contributes no segment",
			sel:  types.Selection{"mirror_style": float64(1), "frame_thickness": float64(30)},
			want: "D01D-L1",
		},
		{
			name: "size selected directly",
			sel:  types.Selection{"mirror_style": float64(1), "size": float64(11)},
			want: "D01D-L1-3036",
		},
		{
			name: "size derived from width and height",
			sel:  types.Selection{"mirror_style": float64(1), "width": float64(24), "height": float64(36)},
			want: "D01D-L1-2436",
		},
		{
			name: "unknown dimensions contribute no segment",
			sel:  types.Selection{"mirror_style": float64(1), "width": float64(99), "height": float64(36)},
			want: "D01D-L1",
		},
		{
			name: "unknown option id skipped",
			sel:  types.Selection{"mirror_style": float64(99), "light_direction": float64(20)},
			want: "D01D-D",
		},
		{
			name: "composite selection values resolve by id",
			sel:  types.Selection{"mirror_style": map[string]any{"id": float64(2)}},
			want: "D01D-L2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose("D01D", skuFields(), tt.sel, snap); got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_UnorderedFieldList(t *testing.T) {
	snap := skuSnapshot()
	shuffled := []types.SkuField{
		{Collection: "light_direction", Order: 3},
		{Collection: "base", Order: 0},
		{Collection: "mirror_style", Order: 1},
	}
	sel := types.Selection{"mirror_style": float64(1), "light_direction": float64(21)}
	if got := Compose("D01D", shuffled, sel, snap); got != "D01D-L1-I" {
		t.Errorf("Compose() = %q, want %q", got, "D01D-L1-I")
	}
	// The caller's slice order is preserved.
	if shuffled[0].Collection != "light_direction" {
		t.Errorf("input field slice reordered")
	}
}
