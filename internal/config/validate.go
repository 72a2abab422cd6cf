package config

import (
	"errors"
	"fmt"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Purpose selects which sections a command needs.
type Purpose int

const (
	// PurposeWarehouse needs the connection section.
	PurposeWarehouse Purpose = iota
	// PurposeStaging needs the connection, IAM role and S3 sections.
	PurposeStaging
	// PurposeCluster needs the cluster specs, credentials and IAM role.
	PurposeCluster
	// PurposeClusterLookup needs only the cluster identifier.
	PurposeClusterLookup
)

// Validate checks the sections required for purpose.
// It returns a multi-error if multiple validation failures occur.
func (c *Config) Validate(purpose Purpose) error {
	var errs []error
	missing := func(section, key string) {
		errs = append(errs, fmt.Errorf("%s.%s is required: %w", section, key, dwh.ErrInvalidConfig))
	}

	switch purpose {
	case PurposeWarehouse, PurposeStaging:
		if c.Cluster.Host == "" {
			missing("cluster", "host")
		}
		if c.Cluster.DBName == "" {
			missing("cluster", "db_name")
		}
		if c.Cluster.DBUser == "" {
			missing("cluster", "db_user")
		}
		if c.Cluster.Port <= 0 || c.Cluster.Port > 65535 {
			errs = append(errs, fmt.Errorf("cluster.port %d is out of range: %w", c.Cluster.Port, dwh.ErrInvalidConfig))
		}
		if purpose == PurposeStaging {
			if c.IAMRole.ARN == "" {
				missing("iam_role", "arn")
			}
			if c.S3.LogData == "" {
				missing("s3", "log_data")
			}
			if c.S3.SongData == "" {
				missing("s3", "song_data")
			}
		}

	case PurposeCluster:
		if c.Specs.ClusterID == "" {
			missing("specs", "cluster_id")
		}
		if c.Specs.NodeType == "" {
			missing("specs", "node_type")
		}
		switch c.Specs.ClusterType {
		case ClusterTypeSingleNode:
		case ClusterTypeMultiNode:
			if c.Specs.NumNodes < 2 {
				errs = append(errs, fmt.Errorf("specs.num_nodes must be at least 2 for a multi-node cluster, got %d: %w",
					c.Specs.NumNodes, dwh.ErrInvalidConfig))
			}
		default:
			errs = append(errs, fmt.Errorf("specs.cluster_type must be %q or %q, got %q: %w",
				ClusterTypeSingleNode, ClusterTypeMultiNode, c.Specs.ClusterType, dwh.ErrInvalidConfig))
		}
		if c.Cluster.DBName == "" {
			missing("cluster", "db_name")
		}
		if c.Cluster.DBUser == "" {
			missing("cluster", "db_user")
		}
		if c.Cluster.DBPassword == "" {
			missing("cluster", "db_password")
		}
		if c.IAMRole.ARN == "" {
			missing("iam_role", "arn")
		}
		if (c.AWS.Key == "") != (c.AWS.Secret == "") {
			errs = append(errs, fmt.Errorf("aws.key and aws.secret must be set together: %w", dwh.ErrInvalidConfig))
		}

	case PurposeClusterLookup:
		if c.Specs.ClusterID == "" {
			missing("specs", "cluster_id")
		}
		if (c.AWS.Key == "") != (c.AWS.Secret == "") {
			errs = append(errs, fmt.Errorf("aws.key and aws.secret must be set together: %w", dwh.ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// Param is one displayable configuration value.
type Param struct {
	Name  string
	Value string
}

// Redacted returns the cluster parameters shown before provisioning.
// Credentials are never included; the password is masked.
func (c *Config) Redacted() []Param {
	password := ""
	if c.Cluster.DBPassword != "" {
		password = "********"
	}
	return []Param{
		{"DB_CLUSTER_TYPE", c.Specs.ClusterType},
		{"DB_NUM_NODES", fmt.Sprintf("%d", c.Specs.NumNodes)},
		{"DB_NODE_TYPE", c.Specs.NodeType},
		{"DB_CLUSTER_ID", c.Specs.ClusterID},
		{"DB_NAME", c.Cluster.DBName},
		{"DB_USER", c.Cluster.DBUser},
		{"DB_PASSWORD", password},
		{"DB_PORT", fmt.Sprintf("%d", c.Cluster.Port)},
	}
}
