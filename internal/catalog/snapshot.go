package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * Snapshot loading.
 *
 * Reads the full catalog into one consistent types.Snapshot. Loading
 * happens once per session; the engine recomputes everything from the
 * snapshot on each selection change and never reads the database again,
 * so a stale-but-consistent snapshot is always safe to compute over.
 *
 * Rule condition/action trees are stored as JSON text. Rows whose JSON
 * does not decode are dropped with a warning rather than failing the
 * load; one malformed rule must not block the catalog.
 */

type optionRow struct {
	ID                 string `db:"id"`
	Collection         string `db:"collection"`
	SKUCode            string `db:"sku_code"`
	DisplayName        string `db:"display_name"`
	Active             bool   `db:"active"`
	SortOrder          int    `db:"sort_order"`
	HideInConfigurator bool   `db:"hide_in_configurator"`
	Width              string `db:"width"`
	Height             string `db:"height"`
}

type productRow struct {
	ID            string `db:"id"`
	ProductLineID string `db:"product_line_id"`
	SKUCode       string `db:"sku_code"`
	Active        bool   `db:"active"`
}

type productFieldRow struct {
	ProductID  string `db:"product_id"`
	Collection string `db:"collection"`
	ItemID     string `db:"item_id"`
}

type membershipRow struct {
	ProductLineID string `db:"product_line_id"`
	Collection    string `db:"collection"`
	ItemID        string `db:"item_id"`
}

type overrideRow struct {
	ProductID  string `db:"product_id"`
	Collection string `db:"collection"`
	ItemID     string `db:"item_id"`
}

type ruleRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Priority int    `db:"priority"`
	IfThis   string `db:"if_this"`
	ThenThat string `db:"then_that"`
}

type skuFieldRow struct {
	Collection     string `db:"collection"`
	FieldOrder     int    `db:"field_order"`
	EmbeddedInBase bool   `db:"embedded_in_base"`
}

// LoadSnapshot reads the whole catalog and indexes it.
func LoadSnapshot(q *Queries) (*types.Snapshot, error) {
	var optRows []optionRow
	if err := q.Select("list-options", &optRows); err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	options := make([]types.Option, 0, len(optRows))
	for _, r := range optRows {
		options = append(options, types.Option{
			ID:                 r.ID,
			Collection:         r.Collection,
			SKUCode:            r.SKUCode,
			DisplayName:        r.DisplayName,
			Active:             r.Active,
			SortOrder:          r.SortOrder,
			HideInConfigurator: r.HideInConfigurator,
			Width:              r.Width,
			Height:             r.Height,
		})
	}

	var prodRows []productRow
	if err := q.Select("list-products", &prodRows); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	var fieldRows []productFieldRow
	if err := q.Select("list-product-fields", &fieldRows); err != nil {
		return nil, fmt.Errorf("failed to load product fields: %w", err)
	}

	fieldsByProduct := make(map[string]map[string]string, len(prodRows))
	for _, r := range fieldRows {
		fields := fieldsByProduct[r.ProductID]
		if fields == nil {
			fields = make(map[string]string)
			fieldsByProduct[r.ProductID] = fields
		}
		fields[r.Collection] = r.ItemID
	}

	products := make([]types.Product, 0, len(prodRows))
	for _, r := range prodRows {
		products = append(products, types.Product{
			ID:            r.ID,
			ProductLineID: r.ProductLineID,
			SKUCode:       r.SKUCode,
			Active:        r.Active,
			Fields:        fieldsByProduct[r.ID],
		})
	}

	var memRows []membershipRow
	if err := q.Select("list-default-memberships", &memRows); err != nil {
		return nil, fmt.Errorf("failed to load default memberships: %w", err)
	}
	memberships := make([]types.DefaultMembership, 0, len(memRows))
	for _, r := range memRows {
		memberships = append(memberships, types.DefaultMembership{
			ProductLineID: r.ProductLineID,
			Collection:    r.Collection,
			ItemID:        r.ItemID,
		})
	}

	var ovrRows []overrideRow
	if err := q.Select("list-overrides", &ovrRows); err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	overrides := make([]types.Override, 0, len(ovrRows))
	for _, r := range ovrRows {
		overrides = append(overrides, types.Override{
			ProductID:  r.ProductID,
			Collection: r.Collection,
			ItemID:     r.ItemID,
		})
	}

	var ruleRows []ruleRow
	if err := q.Select("list-rules", &ruleRows); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	rules := make([]types.Rule, 0, len(ruleRows))
	for _, r := range ruleRows {
		rule, err := decodeRule(r)
		if err != nil {
			log.Warn().Str("rule", r.Name).Err(err).Msg("catalog: dropping malformed rule")
			continue
		}
		rules = append(rules, rule)
	}

	var skuRows []skuFieldRow
	if err := q.Select("list-sku-fields", &skuRows); err != nil {
		return nil, fmt.Errorf("failed to load sku fields: %w", err)
	}
	skuFields := make([]types.SkuField, 0, len(skuRows))
	for _, r := range skuRows {
		skuFields = append(skuFields, types.SkuField{
			Collection:     r.Collection,
			Order:          r.FieldOrder,
			EmbeddedInBase: r.EmbeddedInBase,
		})
	}

	return types.NewSnapshot(options, products, memberships, overrides, rules, skuFields), nil
}

// decodeRule parses the stored JSON trees of one rule row.
func decodeRule(r ruleRow) (types.Rule, error) {
	var ifThis, thenThat map[string]any
	if r.IfThis != "" {
		if err := json.Unmarshal([]byte(r.IfThis), &ifThis); err != nil {
			return types.Rule{}, fmt.Errorf("if_this: %w", err)
		}
	}
	if r.ThenThat != "" {
		if err := json.Unmarshal([]byte(r.ThenThat), &thenThat); err != nil {
			return types.Rule{}, fmt.Errorf("then_that: %w", err)
		}
	}
	return types.Rule{
		ID:       types.RuleID(r.ID),
		Name:     r.Name,
		Priority: r.Priority,
		IfThis:   ifThis,
		ThenThat: thenThat,
	}, nil
}
