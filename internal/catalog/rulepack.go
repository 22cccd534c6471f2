package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pixelsock/mtxconfig/internal/types"
)

/*
 * File-based rule packs.
 *
 * Rules can be authored in YAML and validated in batch without a catalog
 * database. A pack entry carries the same wire-shape condition/action
 * trees as the database, plus optional example contexts with the expected
 * match outcome so a pack documents its own intent.
 */

// PackRule is one YAML rule entry.
type PackRule struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Priority int            `yaml:"priority"`
	IfThis   map[string]any `yaml:"if_this"`
	ThenThat map[string]any `yaml:"then_that"`
	Examples []PackExample  `yaml:"examples"`
}

// PackExample is a documented evaluation case for a rule.
type PackExample struct {
	Context map[string]any `yaml:"context"`
	Matches bool           `yaml:"matches"`
}

// RulePack is a versioned set of rules loaded from one file.
type RulePack struct {
	Version     string     `yaml:"version"`
	Description string     `yaml:"description"`
	Rules       []PackRule `yaml:"rules"`
}

// LoadRulePack reads and decodes a YAML rule pack.
func LoadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule pack: %w", err)
	}

	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse rule pack: %w", err)
	}

	return &pack, nil
}

// DomainRules converts the pack entries to domain rules. Entries without
// an id get a generated one so diagnostics can still name them.
func (p *RulePack) DomainRules() []types.Rule {
	rules := make([]types.Rule, 0, len(p.Rules))
	for _, r := range p.Rules {
		id := r.ID
		if id == "" {
			id = string(types.NewRuleID())
		}
		rules = append(rules, types.Rule{
			ID:       types.RuleID(id),
			Name:     r.Name,
			Priority: r.Priority,
			IfThis:   r.IfThis,
			ThenThat: r.ThenThat,
		})
	}
	return rules
}
