package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelsock/mtxconfig/internal/catalog"
	"github.com/pixelsock/mtxconfig/internal/configurator"
	"github.com/pixelsock/mtxconfig/internal/core/config"
	"github.com/pixelsock/mtxconfig/internal/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve availability and rule effects for a partial selection",
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("line", "", "product line id (required)")
	resolveCmd.Flags().StringArray("set", nil, "selection entry, field=value (repeatable)")
	resolveCmd.Flags().Bool("choosable", false, "also print per-field choosable ids after rule constraints")
	resolveCmd.MarkFlagRequired("line")
}

func runResolve(cmd *cobra.Command, args []string) error {
	line, _ := cmd.Flags().GetString("line")
	pairs, _ := cmd.Flags().GetStringArray("set")
	choosable, _ := cmd.Flags().GetBool("choosable")

	session, err := openSession(line)
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		field, value, err := splitPair(pair)
		if err != nil {
			return err
		}
		session.Select(field, value)
	}

	state := session.Resolve()

	out := map[string]any{"state": state}
	if choosable {
		out["choosable"] = session.ChoosableIDs()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// openSession loads the snapshot and policy config shared by the
// selection-driven commands.
func openSession(line string) (*configurator.Session, error) {
	snap, err := loadSnapshot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return configurator.NewSession(snap, cfg, line)
}

// loadSnapshot opens the catalog database and reads one consistent
// snapshot.
func loadSnapshot() (*types.Snapshot, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("--db-url required")
	}
	db, err := catalog.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	queries, err := catalog.LoadQueries(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return catalog.LoadSnapshot(queries)
}

func splitPair(pair string) (string, string, error) {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid --set entry %q: format must be field=value", pair)
	}
	return parts[0], parts[1], nil
}
