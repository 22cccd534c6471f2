// internal/sku/parse.go
package sku

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * SKU parsing with confidence ranking.
 *
 * Splits the input on the composer's separator, matches the mandatory base
 * segment against product codes, then walks the remaining ordered fields
 * per surviving base candidate, consuming one segment per field and
 * classifying each match.
 *
 * Specificity wins: a single exact match beats any number of prefix
 * matches, at the base and at every segment.
 *
 * Failure model: an unknown base code is the sole hard failure (error, no
 * candidates). Everything else downgrades the candidate's confidence, so
 * callers always get best-effort candidates with per-segment diagnostics.
 */

// SegmentStatus classifies one segment match.
type SegmentStatus string

const (
	StatusExact     SegmentStatus = "exact"
	StatusPartial   SegmentStatus = "partial"
	StatusAmbiguous SegmentStatus = "ambiguous"
	StatusMissing   SegmentStatus = "missing"
	StatusSkipped   SegmentStatus = "skipped"
	StatusNotFound  SegmentStatus = "not_found"
)

// badness ranks statuses for confidence scoring: exact < partial <
// ambiguous < not_found. missing and skipped are expected for partial
// selections and leave confidence untouched.
func badness(s SegmentStatus) int {
	switch s {
	case StatusExact:
		return 0
	case StatusPartial:
		return 1
	case StatusAmbiguous:
		return 2
	case StatusNotFound:
		return 3
	default:
		return -1
	}
}

// SegmentMatch is the diagnostic record for one consumed segment.
type SegmentMatch struct {
	Order      int
	Field      string
	Input      string
	Status     SegmentStatus
	Candidates []string // option ids still in play for ambiguous matches
	Message    string
}

// Candidate is one plausible interpretation of the input.
type Candidate struct {
	ProductID  string
	BaseCode   string
	Selection  map[string]string // collection -> option id, applied segments only
	Segments   []SegmentMatch
	Confidence SegmentStatus
	Invalid    bool
}

// Result carries the parsed segments, ranked candidates, and soft
// diagnostics.
type Result struct {
	Segments   []string
	Candidates []Candidate
	Warnings   []string
}

// Parse interprets a code string against the snapshot's inventory.
// productLineID optionally scopes base matching to one line; empty means
// all lines.
func Parse(input string, fields []types.SkuField, snap *types.Snapshot, productLineID string) (Result, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Result{}, types.ErrEmptySKU
	}
	segments := strings.Split(trimmed, Separator)

	res := Result{Segments: segments}

	bases, baseStatus := matchBase(segments[0], snap, productLineID)
	if len(bases) == 0 {
		return res, fmt.Errorf("%q: %w", segments[0], types.ErrBaseCodeNotFound)
	}

	ordered := sortedFields(fields)
	for _, p := range bases {
		cand := walkCandidate(p, baseStatus, segments, ordered, snap, &res)
		res.Candidates = append(res.Candidates, cand)
	}

	rankCandidates(res.Candidates)
	return res, nil
}

// matchBase resolves the base segment to products, case-insensitively,
// exact or prefix. Single exact wins outright even among several prefix
// matches; multiple exacts, or multiple prefixes with no exact, are
// ambiguous and every match survives as a candidate.
func matchBase(segment string, snap *types.Snapshot, productLineID string) ([]*types.Product, SegmentStatus) {
	needle := strings.ToUpper(segment)

	var exact, prefix []*types.Product
	for i := range snap.Products {
		p := &snap.Products[i]
		if !p.Active || p.SKUCode == "" {
			continue
		}
		if productLineID != "" && p.ProductLineID != productLineID {
			continue
		}
		code := strings.ToUpper(p.SKUCode)
		switch {
		case code == needle:
			exact = append(exact, p)
		case strings.HasPrefix(code, needle):
			prefix = append(prefix, p)
		}
	}

	switch {
	case len(exact) == 1:
		return exact, StatusExact
	case len(exact) > 1:
		return exact, StatusAmbiguous
	case len(prefix) == 1:
		return prefix, StatusPartial
	case len(prefix) > 1:
		return prefix, StatusAmbiguous
	default:
		return nil, StatusNotFound
	}
}

// walkCandidate consumes the remaining segments for one base product.
func walkCandidate(p *types.Product, baseStatus SegmentStatus, segments []string, ordered []types.SkuField, snap *types.Snapshot, res *Result) Candidate {
	cand := Candidate{
		ProductID: p.ID,
		BaseCode:  p.SKUCode,
		Selection: make(map[string]string),
		Segments: []SegmentMatch{{
			Order:  0,
			Field:  "base",
			Input:  segments[0],
			Status: baseStatus,
		}},
	}

	next := 1 // index of the next unconsumed input segment
	for _, f := range ordered {
		if f.Order == 0 || f.EmbeddedInBase {
			continue
		}

		if next >= len(segments) {
			// Nothing left to consume; a shorter code is a valid partial
			// configuration, not an error.
			cand.Segments = append(cand.Segments, SegmentMatch{
				Order:  f.Order,
				Field:  f.Collection,
				Status: StatusMissing,
			})
			break
		}

		opts := scopedOptions(snap, p, f.Collection)
		if len(opts) == 0 {
			// The product offers nothing for this field, so the composer
			// emitted no segment; do not consume one.
			cand.Segments = append(cand.Segments, SegmentMatch{
				Order:  f.Order,
				Field:  f.Collection,
				Status: StatusSkipped,
			})
			continue
		}

		segment := segments[next]
		next++
		cand.Segments = append(cand.Segments, matchSegment(f, segment, opts, &cand))
	}

	if next < len(segments) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"product %s: %d trailing segment(s) beyond the field list", p.ID, len(segments)-next))
	}

	cand.Confidence = confidence(cand.Segments)
	for _, m := range cand.Segments {
		if m.Status == StatusNotFound {
			cand.Invalid = true
			break
		}
	}
	return cand
}

// matchSegment classifies one segment against the field's in-scope
// options and applies the resolved id to the candidate selection when the
// match is certain enough.
func matchSegment(f types.SkuField, segment string, opts []*types.Option, cand *Candidate) SegmentMatch {
	match := SegmentMatch{
		Order: f.Order,
		Field: f.Collection,
		Input: segment,
	}

	needle := strings.ToUpper(segment)
	var exact, prefix []*types.Option
	for _, opt := range opts {
		if opt.SKUCode == "" {
			continue
		}
		code := strings.ToUpper(opt.SKUCode)
		switch {
		case code == needle:
			exact = append(exact, opt)
		case strings.HasPrefix(code, needle):
			prefix = append(prefix, opt)
		}
	}

	switch {
	case len(exact) == 1:
		match.Status = StatusExact
		cand.Selection[f.Collection] = exact[0].ID
	case len(exact) > 1:
		match.Status = StatusAmbiguous
		match.Candidates = optionIDs(exact)
		match.Message = "multiple exact code matches"
	case len(prefix) == 1:
		match.Status = StatusPartial
		cand.Selection[f.Collection] = prefix[0].ID
		match.Message = "prefix match only, review before ordering"
	case len(prefix) > 1:
		match.Status = StatusAmbiguous
		match.Candidates = optionIDs(prefix)
		match.Message = "multiple prefix matches"
	default:
		// Keep consuming the rest for diagnostics; the candidate is
		// marked invalid afterwards.
		match.Status = StatusNotFound
		match.Message = "no option code matches segment"
	}

	return match
}

// scopedOptions resolves the active, codable options in scope for a
// (product, collection) pair: the override set when one exists, otherwise
// the line's default membership.
func scopedOptions(snap *types.Snapshot, p *types.Product, collection string) []*types.Option {
	ids := snap.ScopeIDs(p, collection)
	opts := make([]*types.Option, 0, len(ids))
	for _, id := range ids {
		if opt := snap.Option(collection, id); opt != nil && opt.Active {
			opts = append(opts, opt)
		}
	}
	return opts
}

// confidence is the worst status across a candidate's segments, with
// exact as the floor when no segment downgrades it.
func confidence(segments []SegmentMatch) SegmentStatus {
	worst := StatusExact
	for _, m := range segments {
		if badness(m.Status) > badness(worst) {
			worst = m.Status
		}
	}
	return worst
}

// rankCandidates orders by ascending badness, then product id, so the most
// certain interpretation always leads.
func rankCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		bi, bj := badness(cands[i].Confidence), badness(cands[j].Confidence)
		if bi != bj {
			return bi < bj
		}
		return cands[i].ProductID < cands[j].ProductID
	})
}

func optionIDs(opts []*types.Option) []string {
	ids := make([]string, 0, len(opts))
	for _, o := range opts {
		ids = append(ids, o.ID)
	}
	types.SortIDs(ids)
	return ids
}
