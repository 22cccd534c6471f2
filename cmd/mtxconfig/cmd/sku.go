package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelsock/mtxconfig/internal/sku"
	"github.com/pixelsock/mtxconfig/internal/types"
)

var skuCmd = &cobra.Command{
	Use:   "sku",
	Short: "Compose and parse configuration codes",
}

var skuComposeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Assemble a code from a base and a selection",
	RunE:  runSkuCompose,
}

var skuParseCmd = &cobra.Command{
	Use:   "parse <code>",
	Short: "Parse a code into ranked configuration candidates",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkuParse,
}

func init() {
	rootCmd.AddCommand(skuCmd)
	skuCmd.AddCommand(skuComposeCmd)
	skuCmd.AddCommand(skuParseCmd)

	skuComposeCmd.Flags().String("base", "", "base product code (required)")
	skuComposeCmd.Flags().StringArray("set", nil, "selection entry, field=value (repeatable)")
	skuComposeCmd.MarkFlagRequired("base")

	skuParseCmd.Flags().String("line", "", "restrict base matching to one product line")
}

func runSkuCompose(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("base")
	pairs, _ := cmd.Flags().GetStringArray("set")

	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	sel := types.Selection{}
	for _, pair := range pairs {
		field, value, err := splitPair(pair)
		if err != nil {
			return err
		}
		sel[field] = value
	}

	fmt.Println(sku.Compose(base, snap.SkuFields, sel, snap))
	return nil
}

func runSkuParse(cmd *cobra.Command, args []string) error {
	line, _ := cmd.Flags().GetString("line")

	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	result, err := sku.Parse(args[0], snap.SkuFields, snap, line)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
