package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/report"
	"github.com/vvka-141/dwhetl/internal/services"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load, transform and check the warehouse",
	Long: `Run executes the whole pipeline on one connection:

1. COPY the S3 event and song JSON into the staging tables
2. INSERT the fact and dimension tables from staging
3. Remove duplicate primary keys from every analytics table
4. Compare songplays keys against the users and time dimensions

Any failure stops the run. Steps that completed stay committed.

Examples:
  # Full run
  dwhetl run

  # Staging is current; rebuild the analytics tables only
  dwhetl run --skip-staging

  # Verify every S3 prefix holds data before copying
  dwhetl run --preflight --timeout 2h`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

type runFlagValues struct {
	skipStaging bool
	preflight   bool
	timeout     time.Duration
}

var runFlags runFlagValues

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.skipStaging, "skip-staging", false,
		"Skip the COPY phase and transform the staging data already loaded")
	runCmd.Flags().BoolVar(&runFlags.preflight, "preflight", false,
		"Check that every S3 source prefix holds at least one object before copying")
	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", 0,
		"Cancel the run after this duration (default 0 = no limit)\n"+
			"Examples: 30m, 2h")
}

func runOptions() dwh.RunOptions {
	return dwh.RunOptions{SkipStaging: runFlags.skipStaging, Preflight: runFlags.preflight}
}

func runPurpose(opts dwh.RunOptions) config.Purpose {
	if opts.SkipStaging {
		return config.PurposeWarehouse
	}
	return config.PurposeStaging
}

func runPipeline(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	opts := runOptions()

	cfg, err := loadConfig(getConfigFlag(cmd), runPurpose(opts))
	if err != nil {
		return err
	}

	svc := newPipelineService(cfg, newApprover(false, verbose), verbose)

	ctx, cancel := commandContext(runFlags.timeout)
	defer cancel()

	result, err := svc.Run(ctx, services.PipelineConfig{
		Schema:  cfg.Cluster.Schema,
		Sources: pipelineSources(cfg),
		Options: opts,
	})
	if result != nil {
		report.NewPrinter(os.Stdout).Run(result)
	}
	if err != nil {
		if services.IsInterrupted(err) {
			return fmt.Errorf("run %s interrupted: %w", result.RunID, err)
		}
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}
