package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/internal/report"
	"github.com/vvka-141/dwhetl/internal/services"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the ordered load steps without running them",
	Long: `Plan builds and validates the load steps and prints them in execution
order with their dependencies. With --verbose the SQL of each step is printed
as well. No connection is opened.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var planSkipStaging bool

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().BoolVar(&planSkipStaging, "skip-staging", false,
		"Plan a run that skips the COPY phase")
}

func runPlan(cmd *cobra.Command, args []string) error {
	opts := dwh.RunOptions{SkipStaging: planSkipStaging}
	cfg, err := loadConfig(getConfigFlag(cmd), runPurpose(opts))
	if err != nil {
		return err
	}

	plan, err := services.PipelineConfig{
		Schema:  cfg.Cluster.Schema,
		Sources: pipelineSources(cfg),
		Options: opts,
	}.Plan()
	if err != nil {
		return err
	}

	printer := report.NewPrinter(os.Stdout)
	printer.Plan(plan)
	if getVerboseFlag(cmd) {
		printer.PlanSQL(plan)
	}
	return nil
}

