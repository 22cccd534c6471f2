// internal/types/rules.go
package types

/*
 * Domain types for constraint rules.
 *
 * A Rule pairs a condition tree (IfThis) with an action tree (ThenThat),
 * both in the raw wire shape: nested objects keyed by field name plus the
 * "and"/"or" combinators, with leaves keyed by operator name. The shapes
 * stay untyped here; internal/rules compiles them into a tagged node
 * variant exactly once before any evaluation.
 *
 * Rules are read-only catalog data. Malformed condition or action trees
 * degrade gracefully during compilation rather than being rejected at the
 * type level.
 */

// Rule is a condition/action pair from the catalog. Priority orders rule
// evaluation ascending; the highest priority matching rule wins conflicting
// forced values.
type Rule struct {
	ID       RuleID
	Name     string
	Priority int
	IfThis   map[string]any
	ThenThat map[string]any
}

// Snapshot is the consistent, read-only data bundle the engine computes
// over: options per collection, products, memberships, overrides, rules and
// the ordered SKU field list. It is supplied whole by the catalog boundary;
// the core never fetches, caches, or mutates it.
type Snapshot struct {
	Options            []Option
	Products           []Product
	DefaultMemberships []DefaultMembership
	Overrides          []Override
	Rules              []Rule
	SkuFields          []SkuField

	optionsByCollection map[string][]*Option
	optionByKey         map[string]*Option
	productByID         map[string]*Product
	defaultsByLine      map[string]map[string][]string
	overridesByProduct  map[string]map[string][]string
}

// NewSnapshot indexes the catalog data for lookup. The input slices are
// retained; callers must not mutate them afterwards.
func NewSnapshot(
	options []Option,
	products []Product,
	memberships []DefaultMembership,
	overrides []Override,
	rules []Rule,
	skuFields []SkuField,
) *Snapshot {
	s := &Snapshot{
		Options:            options,
		Products:           products,
		DefaultMemberships: memberships,
		Overrides:          overrides,
		Rules:              rules,
		SkuFields:          skuFields,

		optionsByCollection: make(map[string][]*Option),
		optionByKey:         make(map[string]*Option),
		productByID:         make(map[string]*Product, len(products)),
		defaultsByLine:      make(map[string]map[string][]string),
		overridesByProduct:  make(map[string]map[string][]string),
	}

	for i := range s.Options {
		opt := &s.Options[i]
		s.optionsByCollection[opt.Collection] = append(s.optionsByCollection[opt.Collection], opt)
		s.optionByKey[opt.Collection+"\x00"+opt.ID] = opt
	}
	for i := range s.Products {
		p := &s.Products[i]
		s.productByID[p.ID] = p
	}
	for _, m := range s.DefaultMemberships {
		byColl := s.defaultsByLine[m.ProductLineID]
		if byColl == nil {
			byColl = make(map[string][]string)
			s.defaultsByLine[m.ProductLineID] = byColl
		}
		byColl[m.Collection] = append(byColl[m.Collection], m.ItemID)
	}
	for _, o := range s.Overrides {
		byColl := s.overridesByProduct[o.ProductID]
		if byColl == nil {
			byColl = make(map[string][]string)
			s.overridesByProduct[o.ProductID] = byColl
		}
		byColl[o.Collection] = append(byColl[o.Collection], o.ItemID)
	}

	return s
}

// Option returns the option with the given id in a collection, or nil.
func (s *Snapshot) Option(collection, id string) *Option {
	return s.optionByKey[collection+"\x00"+id]
}

// OptionsIn returns all options of a collection in catalog order.
func (s *Snapshot) OptionsIn(collection string) []*Option {
	return s.optionsByCollection[collection]
}

// OptionIDs returns the ids of all active options in a collection.
func (s *Snapshot) OptionIDs(collection string) []string {
	opts := s.optionsByCollection[collection]
	ids := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.Active {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Product returns the product with the given id, or nil.
func (s *Snapshot) Product(id string) *Product {
	return s.productByID[id]
}

// DefaultIDs returns the baseline option ids for a (product line,
// collection) pair, absent overrides.
func (s *Snapshot) DefaultIDs(productLineID, collection string) []string {
	byColl := s.defaultsByLine[productLineID]
	if byColl == nil {
		return nil
	}
	return byColl[collection]
}

// OverrideIDs returns the per-product replacement set for a collection, or
// nil when the product carries no override there. A non-nil result fully
// replaces the default membership set, never merges with it.
func (s *Snapshot) OverrideIDs(productID, collection string) []string {
	byColl := s.overridesByProduct[productID]
	if byColl == nil {
		return nil
	}
	return byColl[collection]
}

// ScopeIDs returns the in-scope option ids for a (product, collection)
// pair: the override set when one exists, the product line's defaults
// otherwise.
func (s *Snapshot) ScopeIDs(p *Product, collection string) []string {
	if ids := s.OverrideIDs(p.ID, collection); ids != nil {
		return ids
	}
	return s.DefaultIDs(p.ProductLineID, collection)
}
