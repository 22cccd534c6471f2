package rules

import (
	"testing"
)

func TestResolveField(t *testing.T) {
	tests := []struct {
		name      string
		ctx       map[string]any
		field     string
		want      any
		wantFound bool
	}{
		{
			name:      "top level key",
			ctx:       map[string]any{"mirror_style": float64(5)},
			field:     "mirror_style",
			want:      float64(5),
			wantFound: true,
		},
		{
			name:      "dotted path traversal",
			ctx:       map[string]any{"product": map[string]any{"category": "mirrors"}},
			field:     "product.category",
			want:      "mirrors",
			wantFound: true,
		},
		{
			name:      "flattened key fallback",
			ctx:       map[string]any{"product_category": "mirrors"},
			field:     "product.category",
			want:      "mirrors",
			wantFound: true,
		},
		{
			name:      "nested wins over flattened",
			ctx:       map[string]any{"product": map[string]any{"category": "nested"}, "product_category": "flat"},
			field:     "product.category",
			want:      "nested",
			wantFound: true,
		},
		{
			name:      "composite compares by id",
			ctx:       map[string]any{"frame_color": map[string]any{"id": float64(3), "name": "Black"}},
			field:     "frame_color",
			want:      float64(3),
			wantFound: true,
		},
		{
			name:      "missing field",
			ctx:       map[string]any{"mirror_style": float64(5)},
			field:     "light_output",
			want:      nil,
			wantFound: false,
		},
		{
			name:      "present nil is found",
			ctx:       map[string]any{"mirror_style": nil},
			field:     "mirror_style",
			want:      nil,
			wantFound: true,
		},
		{
			name:      "path through scalar fails",
			ctx:       map[string]any{"product": "not-an-object"},
			field:     "product.category",
			want:      nil,
			wantFound: false,
		},
		{
			name:      "nil context",
			ctx:       nil,
			field:     "anything",
			want:      nil,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ResolveField(tt.ctx, tt.field)
			if found != tt.wantFound {
				t.Fatalf("ResolveField() found = %v, want %v", found, tt.wantFound)
			}
			if got != tt.want {
				t.Errorf("ResolveField() = %v, want %v", got, tt.want)
			}
		})
	}
}
