package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pixelsock/mtxconfig/internal/catalog"
	"github.com/pixelsock/mtxconfig/internal/rules"
	"github.com/pixelsock/mtxconfig/internal/types"
)

var validateRulesCmd = &cobra.Command{
	Use:   "validate-rules",
	Short: "Batch-validate a YAML rule pack",
	Long: `validate-rules compiles every rule in a pack, lints the raw trees for
fragments the compiler would drop, and evaluates each rule against its
documented example contexts, reporting aggregate pass/fail counts.`,
	RunE: runValidateRules,
}

func init() {
	rootCmd.AddCommand(validateRulesCmd)
	validateRulesCmd.Flags().String("pack", "", "rule pack file path (required)")
	validateRulesCmd.MarkFlagRequired("pack")
}

func runValidateRules(cmd *cobra.Command, args []string) error {
	packPath, _ := cmd.Flags().GetString("pack")

	pack, err := catalog.LoadRulePack(packPath)
	if err != nil {
		return err
	}

	var passed, failed int
	for _, entry := range pack.Rules {
		if ok := validateRule(entry); ok {
			passed++
		} else {
			failed++
		}
	}

	fmt.Printf("%d rules: %d passed, %d failed\n", len(pack.Rules), passed, failed)
	if failed > 0 {
		return fmt.Errorf("%d rule(s) failed validation", failed)
	}
	return nil
}

// validateRule checks one pack entry: lint findings and example mismatches
// both fail it, compilation errors always do.
func validateRule(entry catalog.PackRule) bool {
	ok := true

	for _, problem := range rules.Lint(entry.IfThis) {
		log.Warn().Str("rule", entry.Name).Str("tree", "if_this").Msg(problem)
		ok = false
	}
	for _, problem := range rules.Lint(entry.ThenThat) {
		log.Warn().Str("rule", entry.Name).Str("tree", "then_that").Msg(problem)
		ok = false
	}

	rule := types.Rule{
		ID:       types.RuleID(entry.ID),
		Name:     entry.Name,
		Priority: entry.Priority,
		IfThis:   entry.IfThis,
		ThenThat: entry.ThenThat,
	}
	compiled, err := rules.Compile(&rule)
	if err != nil {
		log.Error().Str("rule", entry.Name).Err(err).Msg("rule failed to compile")
		return false
	}

	for i, example := range entry.Examples {
		got := rules.Evaluate(compiled.Condition, types.Selection(example.Context))
		if got != example.Matches {
			log.Warn().Str("rule", entry.Name).Int("example", i).
				Bool("want", example.Matches).Bool("got", got).
				Msg("example context mismatch")
			ok = false
		}
	}

	return ok
}
