package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhetl/internal/awsconf"
	"github.com/vvka-141/dwhetl/internal/cluster"
	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/logging"
	"github.com/vvka-141/dwhetl/internal/report"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Create, inspect, wait for or delete the Redshift cluster",
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a new cluster from the specs section",
	Long: `Create prints the cluster parameters (passwords masked) and requests the
cluster. API errors such as an existing cluster or an invalid node type are
printed and do not fail the command. Use --wait to block until the cluster is
available.`,
	Args: cobra.NoArgs,
	RunE: runClusterCreate,
}

var clusterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the key properties of the cluster",
	Args:  cobra.NoArgs,
	RunE:  runClusterStatus,
}

var clusterWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Poll until the cluster is available",
	Long: `Wait describes the cluster with exponential backoff until its status is
available, then prints its properties. Throttling and transient network
errors are retried; anything else fails immediately.`,
	Args: cobra.NoArgs,
	RunE: runClusterWait,
}

var clusterDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the cluster without a final snapshot",
	Long: `Delete removes the cluster and all its data. You are asked to type the
cluster identifier to confirm unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runClusterDelete,
}

type clusterFlagValues struct {
	wait    bool
	force   bool
	timeout time.Duration
}

var clusterFlags clusterFlagValues

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.AddCommand(clusterCreateCmd, clusterStatusCmd, clusterWaitCmd, clusterDeleteCmd)

	clusterCreateCmd.Flags().BoolVar(&clusterFlags.wait, "wait", false,
		"Block until the new cluster is available")
	clusterDeleteCmd.Flags().BoolVar(&clusterFlags.force, "force", false,
		"Skip the interactive confirmation prompt (a countdown still runs)")
	clusterCmd.PersistentFlags().DurationVar(&clusterFlags.timeout, "timeout", 0,
		"Cancel the command after this duration (default 0 = no limit)")
}

// clusterSpec maps the configuration onto a provisioning request.
func clusterSpec(cfg *config.Config) cluster.Spec {
	return cluster.Spec{
		ID:             cfg.Specs.ClusterID,
		ClusterType:    cfg.Specs.ClusterType,
		NodeType:       cfg.Specs.NodeType,
		NumNodes:       cfg.Specs.NumNodes,
		DBName:         cfg.Cluster.DBName,
		MasterUser:     cfg.Cluster.DBUser,
		MasterPassword: cfg.Cluster.DBPassword,
		Port:           cfg.Cluster.Port,
		IAMRoleARN:     cfg.IAMRole.ARN,
	}
}

func newClusterClient(ctx context.Context, cfg *config.Config, logger dwh.Logger) (*cluster.Client, error) {
	awsCfg, err := awsconf.Load(ctx, awsconf.Settings{
		Region: cfg.AWS.Region,
		Key:    cfg.AWS.Key,
		Secret: cfg.AWS.Secret,
	})
	if err != nil {
		return nil, err
	}
	return cluster.NewClient(redshift.NewFromConfig(awsCfg), logger), nil
}

// clusterCommand loads config for purpose and hands a ready client to fn.
func clusterCommand(cmd *cobra.Command, purpose config.Purpose, fn func(ctx context.Context, cfg *config.Config, client *cluster.Client, logger dwh.Logger) error) error {
	verbose := getVerboseFlag(cmd)
	cfg, err := loadConfig(getConfigFlag(cmd), purpose)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(clusterFlags.timeout)
	defer cancel()

	logger := logging.NewConsoleLogger(verbose)
	client, err := newClusterClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return fn(ctx, cfg, client, logger)
}

func runClusterCreate(cmd *cobra.Command, args []string) error {
	return clusterCommand(cmd, config.PurposeCluster, func(ctx context.Context, cfg *config.Config, client *cluster.Client, logger dwh.Logger) error {
		printer := report.NewPrinter(os.Stdout)
		printer.Params(cfg.Redacted())

		spec := clusterSpec(cfg)
		if _, err := client.Create(ctx, spec); err != nil {
			logger.Error("%v", err)
			return nil
		}
		logger.Info("✓ Cluster %q requested", spec.ID)

		if !clusterFlags.wait {
			return nil
		}
		props, err := client.Wait(ctx, spec.ID)
		if err != nil {
			return err
		}
		printer.ClusterProperties(props.Rows())
		return nil
	})
}

func runClusterStatus(cmd *cobra.Command, args []string) error {
	return clusterCommand(cmd, config.PurposeClusterLookup, func(ctx context.Context, cfg *config.Config, client *cluster.Client, _ dwh.Logger) error {
		props, err := client.Describe(ctx, cfg.Specs.ClusterID)
		if err != nil {
			return err
		}
		report.NewPrinter(os.Stdout).ClusterProperties(props.Rows())
		return nil
	})
}

func runClusterWait(cmd *cobra.Command, args []string) error {
	return clusterCommand(cmd, config.PurposeClusterLookup, func(ctx context.Context, cfg *config.Config, client *cluster.Client, _ dwh.Logger) error {
		props, err := client.Wait(ctx, cfg.Specs.ClusterID)
		if err != nil {
			return err
		}
		report.NewPrinter(os.Stdout).ClusterProperties(props.Rows())
		return nil
	})
}

func runClusterDelete(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	return clusterCommand(cmd, config.PurposeClusterLookup, func(ctx context.Context, cfg *config.Config, client *cluster.Client, logger dwh.Logger) error {
		id := cfg.Specs.ClusterID
		approved, err := newApprover(clusterFlags.force, verbose).RequestApproval(ctx, "delete the Redshift cluster", id)
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return fmt.Errorf("deleting cluster %s: %w", id, dwh.ErrApprovalDenied)
		}

		props, err := client.Delete(ctx, id)
		if err != nil {
			return err
		}
		logger.Info("✓ Cluster %q is %s", id, props.ClusterStatus)
		return nil
	})
}
