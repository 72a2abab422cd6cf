package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop the staging and star-schema tables",
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create any missing tables",
	Long: `Create issues CREATE TABLE IF NOT EXISTS for the two staging tables, the
songplays fact table and the users, songs, artists and time dimensions.
Existing tables and their data are left alone.`,
	Args: cobra.NoArgs,
	RunE: runSchemaCreate,
}

var schemaDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop every pipeline table",
	Long: `Drop removes all staging and analytics tables. You are asked to type the
schema name to confirm unless --force is given, in which case a short
countdown runs instead.`,
	Args: cobra.NoArgs,
	RunE: runSchemaDrop,
}

var schemaForce bool

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaCreateCmd, schemaDropCmd)

	schemaDropCmd.Flags().BoolVar(&schemaForce, "force", false,
		"Skip the interactive confirmation prompt (a countdown still runs)")
}

func runSchemaCreate(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	cfg, err := loadConfig(getConfigFlag(cmd), config.PurposeWarehouse)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	return newPipelineService(cfg, newApprover(false, verbose), verbose).CreateSchema(ctx, cfg.Cluster.Schema)
}

func runSchemaDrop(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	cfg, err := loadConfig(getConfigFlag(cmd), config.PurposeWarehouse)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	return newPipelineService(cfg, newApprover(schemaForce, verbose), verbose).DropSchema(ctx, cfg.Cluster.Schema)
}
