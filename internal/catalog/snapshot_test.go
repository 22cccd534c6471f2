// internal/catalog/snapshot_test.go
package catalog

import (
	"testing"
)

func TestDecodeRule(t *testing.T) {
	row := ruleRow{
		ID:       "r1",
		Name:     "indirect lighting forces high output",
		Priority: 10,
		IfThis:   `{"light_direction":{"eq":21}}`,
		ThenThat: `{"light_output":{"eq":12}}`,
	}

	rule, err := decodeRule(row)
	if err != nil {
		t.Fatalf("decodeRule() error = %v, want nil", err)
	}
	if rule.Name != row.Name || rule.Priority != 10 {
		t.Errorf("decodeRule() = %+v, want row metadata preserved", rule)
	}
	cond, ok := rule.IfThis["light_direction"].(map[string]any)
	if !ok {
		t.Fatalf("IfThis[light_direction] = %T, want object", rule.IfThis["light_direction"])
	}
	if cond["eq"] != float64(21) {
		t.Errorf("eq operand = %v, want 21", cond["eq"])
	}
}

func TestDecodeRule_EmptyTreesAllowed(t *testing.T) {
	rule, err := decodeRule(ruleRow{ID: "r2", Name: "unconditional"})
	if err != nil {
		t.Fatalf("decodeRule() error = %v, want nil", err)
	}
	if rule.IfThis != nil || rule.ThenThat != nil {
		t.Errorf("decodeRule() trees = %v / %v, want nil for empty text", rule.IfThis, rule.ThenThat)
	}
}

func TestDecodeRule_MalformedJSON(t *testing.T) {
	if _, err := decodeRule(ruleRow{ID: "r3", IfThis: `{"broken`}); err == nil {
		t.Errorf("decodeRule() error = nil, want parse failure")
	}
}
