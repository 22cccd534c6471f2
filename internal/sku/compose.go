// internal/sku/compose.go

// Package sku assembles and parses the human-readable configuration codes.
// Both directions are pure functions over the catalog snapshot; the
// composer tolerates partial selections and the parser returns best-effort
// ranked candidates for everything short of an unknown base code.
package sku

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pixelsock/mtxconfig/internal/types"
)

// Separator joins SKU segments. The parser splits on the same constant.
const Separator = "-"

// SizeCollection is the field whose segment is derived from width/height
// scalars instead of a direct option selection.
const SizeCollection = "size"

/*
 * Composition walks the ordered field list ascending, skipping order 0
 * (the base code) and fields whose code the base already embeds, and
 * appends the chosen option's code per selected field. Missing codes are
 * logged and skipped, never fatal, so a partial selection yields a valid
 * shorter code.
 */

// Compose assembles the code string for a selection on top of a base code.
func Compose(baseCode string, fields []types.SkuField, sel types.Selection, snap *types.Snapshot) string {
	ordered := sortedFields(fields)

	parts := []string{baseCode}
	for _, f := range ordered {
		if f.Order == 0 || f.EmbeddedInBase {
			continue
		}

		code := segmentCode(f.Collection, sel, snap)
		if code == "" {
			continue
		}
		parts = append(parts, code)
	}

	return strings.Join(parts, Separator)
}

// segmentCode resolves the SKU code for one field of the selection, or ""
// when the field contributes no segment.
func segmentCode(collection string, sel types.Selection, snap *types.Snapshot) string {
	if collection == SizeCollection {
		if id := types.CanonicalID(sel[collection]); id == "" {
			return sizeCode(sel, snap)
		}
	}

	id := types.CanonicalID(sel[collection])
	if id == "" {
		return ""
	}

	opt := snap.Option(collection, id)
	if opt == nil {
		log.Debug().Str("collection", collection).Str("id", id).
			Msg("sku compose: selected option not in snapshot, skipping segment")
		return ""
	}
	if opt.SKUCode == "" {
		log.Debug().Str("collection", collection).Str("id", id).
			Msg("sku compose: option has no code, skipping segment")
		return ""
	}
	return opt.SKUCode
}

// sizeCode derives the size segment from width/height scalars by exact
// string match against the size options' dimension fields.
func sizeCode(sel types.Selection, snap *types.Snapshot) string {
	width := types.CanonicalID(sel["width"])
	height := types.CanonicalID(sel["height"])
	if width == "" || height == "" {
		return ""
	}

	for _, opt := range snap.OptionsIn(SizeCollection) {
		if !opt.Active {
			continue
		}
		if opt.Width == width && opt.Height == height {
			return opt.SKUCode
		}
	}

	log.Debug().Str("width", width).Str("height", height).
		Msg("sku compose: no size option for dimensions, skipping segment")
	return ""
}

// sortedFields returns the fields ascending by declared order without
// mutating the input.
func sortedFields(fields []types.SkuField) []types.SkuField {
	out := append([]types.SkuField(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
