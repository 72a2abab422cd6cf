package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/report"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var checkCmd = &cobra.Command{
	Use:   "check <table> <primary_key>",
	Short: "Remove duplicate primary keys from one table",
	Long: `Check counts the rows of a table, keeps one row per duplicated primary
key value and counts again. Rows with a NULL key are left alone. Running it a
second time changes nothing.

Example:
  dwhetl check songs song_id`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <table.column> <table.column>",
	Short: "Compare the distinct values of two columns",
	Long: `Reconcile reads the distinct non-NULL values of two columns and prints
how many each side has and which values only one side holds. Differences are
reported, never treated as failures.

Example:
  dwhetl reconcile songplays.user_id users.user_id`,
	Args: cobra.ExactArgs(2),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	cfg, err := loadConfig(getConfigFlag(cmd), config.PurposeWarehouse)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	qr, err := newPipelineService(cfg, newApprover(false, verbose), verbose).
		CheckTable(ctx, cfg.Cluster.Schema, args[0], args[1])
	if err != nil {
		return fmt.Errorf("quality check failed: %w", err)
	}
	report.NewPrinter(os.Stdout).Quality([]dwh.QualityReport{qr})
	return nil
}

func parseKeyRefs(args []string) (dwh.KeyRef, dwh.KeyRef, error) {
	left, err := dwh.ParseKeyRef(args[0])
	if err != nil {
		return dwh.KeyRef{}, dwh.KeyRef{}, fmt.Errorf("invalid argument %q: %w", args[0], err)
	}
	right, err := dwh.ParseKeyRef(args[1])
	if err != nil {
		return dwh.KeyRef{}, dwh.KeyRef{}, fmt.Errorf("invalid argument %q: %w", args[1], err)
	}
	return left, right, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	left, right, err := parseKeyRefs(args)
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	cfg, err := loadConfig(getConfigFlag(cmd), config.PurposeWarehouse)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	diff, err := newPipelineService(cfg, newApprover(false, verbose), verbose).
		ReconcileKeys(ctx, cfg.Cluster.Schema, left, right)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	report.NewPrinter(os.Stdout).Reconciliation(diff)
	return nil
}
