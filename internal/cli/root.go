package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

const banner = `     _          _          _   _
  __| |_      _| |__   ___| |_| |
 / _' \ \ /\ / / '_ \ / _ \ __| |
| (_| |\ V  V /| | | |  __/ |_| |
 \__,_| \_/\_/ |_| |_|\___|\__|_|`

var rootCmd = &cobra.Command{
	Use:   "dwhetl",
	Short: "Redshift star-schema ETL",
	Long: banner + `

dwhetl provisions a Redshift cluster, copies song and event JSON from S3
into staging tables, fills a star schema from them, removes duplicate
primary keys and reports how the fact and dimension keys line up.

Configuration is read from dwh.yaml (see --config). DWH_* environment
variables, also loaded from .env, override values from the file.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Warehouse connection failed
  12 - User denied approval
  13 - SQL execution failed
  14 - Table or column does not exist
  15 - Invalid step plan
  16 - S3 source prefix is empty
  17 - Cluster API error`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", dwh.DefaultConfigFile, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return dwh.DefaultConfigFile
	}
	return path
}

