package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vvka-141/dwhetl/internal/config"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a psql session on the warehouse",
	Long: `Connect builds the psql command for the configured cluster endpoint and
runs it when attached to a terminal, passing the password via PGPASSWORD.
Without a terminal, or with --print, the command is only printed.`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

var connectPrint bool

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().BoolVar(&connectPrint, "print", false, "Print the psql command instead of running it")
}

// psqlArgs returns the psql arguments for the cluster section. The password is
// never part of them.
func psqlArgs(cfg *config.Config) []string {
	return []string{
		"-h", cfg.Cluster.Host,
		"-U", cfg.Cluster.DBUser,
		"-d", cfg.Cluster.DBName,
		"-p", strconv.Itoa(cfg.Cluster.Port),
	}
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(getConfigFlag(cmd), config.PurposeWarehouse)
	if err != nil {
		return err
	}

	psql := psqlArgs(cfg)
	fmt.Println("psql " + strings.Join(psql, " "))

	if connectPrint || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	c := exec.Command("psql", psql...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	c.Env = os.Environ()
	if cfg.Cluster.DBPassword != "" {
		c.Env = append(c.Env, "PGPASSWORD="+cfg.Cluster.DBPassword)
	}
	if err := c.Run(); err != nil {
		return fmt.Errorf("psql exited: %w", err)
	}
	return nil
}
