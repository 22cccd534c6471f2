// internal/catalog/rulepack_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixelsock/mtxconfig/internal/rules"
	"github.com/pixelsock/mtxconfig/internal/types"
)

const samplePack = `version: "1"
description: deco line constraints
rules:
  - id: r-output
    name: indirect lighting forces high output
    priority: 10
    if_this:
      light_direction:
        eq: 21
    then_that:
      light_output:
        eq: 12
    examples:
      - context:
          light_direction: 21
        matches: true
      - context:
          light_direction: 20
        matches: false
  - name: unnamed id gets generated
    priority: 20
    if_this:
      mirror_style:
        in: [1, 2]
    then_that:
      frame_color:
        nin: [7]
`

func writePack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return path
}

func TestLoadRulePack(t *testing.T) {
	pack, err := LoadRulePack(writePack(t, samplePack))
	if err != nil {
		t.Fatalf("LoadRulePack() error = %v, want nil", err)
	}

	if pack.Version != "1" {
		t.Errorf("Version = %q, want 1", pack.Version)
	}
	if len(pack.Rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(pack.Rules))
	}
	if pack.Rules[0].ID != "r-output" {
		t.Errorf("Rules[0].ID = %q, want r-output", pack.Rules[0].ID)
	}
	if len(pack.Rules[0].Examples) != 2 {
		t.Errorf("examples = %d, want 2", len(pack.Rules[0].Examples))
	}
}

func TestLoadRulePack_Errors(t *testing.T) {
	if _, err := LoadRulePack(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("LoadRulePack() error = nil, want read failure")
	}
	if _, err := LoadRulePack(writePack(t, "rules: [not a rule")); err == nil {
		t.Errorf("LoadRulePack() error = nil, want parse failure")
	}
}

func TestRulePack_DomainRules(t *testing.T) {
	pack, err := LoadRulePack(writePack(t, samplePack))
	if err != nil {
		t.Fatalf("LoadRulePack() error = %v, want nil", err)
	}

	domain := pack.DomainRules()
	if len(domain) != 2 {
		t.Fatalf("Rules() = %d entries, want 2", len(domain))
	}
	if domain[0].ID != "r-output" {
		t.Errorf("ID = %q, want r-output", domain[0].ID)
	}
	if domain[1].ID == "" {
		t.Errorf("missing id was not generated")
	}
}

func TestRulePack_ExamplesEvaluate(t *testing.T) {
	pack, err := LoadRulePack(writePack(t, samplePack))
	if err != nil {
		t.Fatalf("LoadRulePack() error = %v, want nil", err)
	}

	compiled, skipped := rules.CompileAll(pack.DomainRules())
	if len(skipped) != 0 {
		t.Fatalf("CompileAll skipped = %v, want none", skipped)
	}

	for _, entry := range pack.Rules {
		var cr *rules.CompiledRule
		for _, c := range compiled {
			if c.Name == entry.Name {
				cr = c
				break
			}
		}
		if cr == nil {
			t.Fatalf("compiled rule %q not found", entry.Name)
		}
		for i, ex := range entry.Examples {
			got := rules.Evaluate(cr.Condition, types.Selection(ex.Context))
			if got != ex.Matches {
				t.Errorf("rule %q example %d: Evaluate() = %v, want %v", entry.Name, i, got, ex.Matches)
			}
		}
	}
}
