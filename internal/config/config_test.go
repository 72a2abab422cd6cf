package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), dwh.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_AllFields(t *testing.T) {
	path := writeConfig(t, `aws:
  key: AKIA
  secret: s3cr3t
  region: eu-west-1
specs:
  cluster_type: multi-node
  node_type: dc2.large
  num_nodes: 4
  cluster_id: sparkify
cluster:
  host: example.redshift.amazonaws.com
  db_name: dev
  db_user: awsuser
  db_password: pw
  port: 5440
  schema: analytics
  sslmode: verify-full
iam_role:
  arn: arn:aws:iam::123:role/dwhRole
s3:
  log_data: s3://udacity-dend/log_data
  log_jsonpath: s3://udacity-dend/log_json_path.json
  song_data: s3://udacity-dend/song_data
  region: us-west-2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "AKIA", cfg.AWS.Key)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, 4, cfg.Specs.NumNodes)
	assert.Equal(t, "sparkify", cfg.Specs.ClusterID)
	assert.Equal(t, "example.redshift.amazonaws.com", cfg.Cluster.Host)
	assert.Equal(t, 5440, cfg.Cluster.Port)
	assert.Equal(t, "analytics", cfg.Cluster.Schema)
	assert.Equal(t, "verify-full", cfg.Cluster.SSLMode)
	assert.Equal(t, "arn:aws:iam::123:role/dwhRole", cfg.IAMRole.ARN)
	assert.Equal(t, "s3://udacity-dend/log_json_path.json", cfg.S3.LogJSONPath)
	assert.Equal(t, "us-west-2", cfg.S3.Region)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "cluster:\n  host: h\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dwh.DefaultRegion, cfg.AWS.Region)
	assert.Equal(t, dwh.DefaultRegion, cfg.S3.Region, "s3 region follows aws region")
	assert.Equal(t, dwh.DefaultPort, cfg.Cluster.Port)
	assert.Equal(t, dwh.DefaultSchema, cfg.Cluster.Schema)
	assert.Equal(t, dwh.DefaultSSLMode, cfg.Cluster.SSLMode)
	assert.Equal(t, ClusterTypeMultiNode, cfg.Specs.ClusterType)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "cluster: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	path := writeConfig(t, "cluster:\n  host: from-file\n  db_user: file-user\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.ApplyEnv(envFrom(map[string]string{
		"DWH_HOST":         "from-env",
		"DWH_DB_PASSWORD":  "env-pw",
		"DWH_DB_PORT":      "5500",
		"DWH_IAM_ROLE_ARN": "arn:env",
		"DWH_DB_USER":      "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Cluster.Host)
	assert.Equal(t, "env-pw", cfg.Cluster.DBPassword)
	assert.Equal(t, 5500, cfg.Cluster.Port)
	assert.Equal(t, "arn:env", cfg.IAMRole.ARN)
	assert.Equal(t, "file-user", cfg.Cluster.DBUser, "empty env values do not override")
}

func TestApplyEnv_RegionReachesS3(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantAWS string
		wantS3  string
	}{
		{
			name:    "no region in file",
			yaml:    "cluster:\n  host: h\n",
			wantAWS: "eu-central-1",
			wantS3:  "eu-central-1",
		},
		{
			name:    "aws region in file",
			yaml:    "aws:\n  region: eu-west-1\n",
			wantAWS: "eu-central-1",
			wantS3:  "eu-central-1",
		},
		{
			name:    "explicit s3 region kept",
			yaml:    "s3:\n  region: us-west-2\n",
			wantAWS: "eu-central-1",
			wantS3:  "us-west-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)

			require.NoError(t, cfg.ApplyEnv(envFrom(map[string]string{"DWH_AWS_REGION": "eu-central-1"})))
			assert.Equal(t, tt.wantAWS, cfg.AWS.Region)
			assert.Equal(t, tt.wantS3, cfg.S3.Region)
		})
	}
}

func TestApplyEnv_EnvOnlyConfig(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.ApplyEnv(envFrom(map[string]string{
		"DWH_AWS_REGION": "ap-southeast-2",
		"DWH_HOST":       "h",
		"DWH_DB_NAME":    "dev",
		"DWH_DB_USER":    "awsuser",
	})))

	assert.Equal(t, "ap-southeast-2", cfg.S3.Region)
	assert.NoError(t, cfg.Validate(PurposeWarehouse))
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(envFrom(map[string]string{"DWH_DB_PORT": "abc"}))
	assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
}

func TestConnectionConfig(t *testing.T) {
	cfg := New()
	cfg.Cluster.Host = "h"
	cfg.Cluster.DBName = "dev"
	cfg.Cluster.DBUser = "u"
	cfg.Cluster.DBPassword = "p"

	cc := cfg.ConnectionConfig()
	assert.Equal(t, "h", cc.Host)
	assert.Equal(t, dwh.DefaultPort, cc.Port)
	assert.Equal(t, "dev", cc.Database)
	assert.Equal(t, dwh.DefaultSchema, cc.Schema)
	assert.Equal(t, dwh.AppName, cc.AppName)
	assert.NoError(t, cc.Validate())
}

func validClusterConfig() *Config {
	cfg := New()
	cfg.Specs = SpecsConfig{ClusterType: ClusterTypeMultiNode, NodeType: "dc2.large", NumNodes: 4, ClusterID: "c1"}
	cfg.Cluster.DBName = "dev"
	cfg.Cluster.DBUser = "u"
	cfg.Cluster.DBPassword = "p"
	cfg.IAMRole.ARN = "arn:aws:iam::1:role/r"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		purpose Purpose
		mutate  func(*Config)
		wantErr []string
	}{
		{
			name:    "warehouse ok",
			purpose: PurposeWarehouse,
			mutate: func(c *Config) {
				c.Cluster.Host = "h"
			},
		},
		{
			name:    "warehouse missing host",
			purpose: PurposeWarehouse,
			mutate:  func(c *Config) {},
			wantErr: []string{"cluster.host is required"},
		},
		{
			name:    "staging needs role and sources",
			purpose: PurposeStaging,
			mutate: func(c *Config) {
				c.Cluster.Host = "h"
				c.IAMRole.ARN = ""
			},
			wantErr: []string{"iam_role.arn is required", "s3.log_data is required", "s3.song_data is required"},
		},
		{
			name:    "cluster ok",
			purpose: PurposeCluster,
			mutate:  func(c *Config) {},
		},
		{
			name:    "single node ignores num_nodes",
			purpose: PurposeCluster,
			mutate: func(c *Config) {
				c.Specs.ClusterType = ClusterTypeSingleNode
				c.Specs.NumNodes = 0
			},
		},
		{
			name:    "multi node needs two nodes",
			purpose: PurposeCluster,
			mutate:  func(c *Config) { c.Specs.NumNodes = 1 },
			wantErr: []string{"num_nodes must be at least 2"},
		},
		{
			name:    "unknown cluster type",
			purpose: PurposeCluster,
			mutate:  func(c *Config) { c.Specs.ClusterType = "huge" },
			wantErr: []string{"cluster_type must be"},
		},
		{
			name:    "key without secret",
			purpose: PurposeClusterLookup,
			mutate:  func(c *Config) { c.AWS.Key = "AKIA" },
			wantErr: []string{"must be set together"},
		},
		{
			name:    "lookup needs id",
			purpose: PurposeClusterLookup,
			mutate:  func(c *Config) { c.Specs.ClusterID = "" },
			wantErr: []string{"specs.cluster_id is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validClusterConfig()
			tt.mutate(cfg)

			err := cfg.Validate(tt.purpose)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestRedacted_MasksPassword(t *testing.T) {
	cfg := validClusterConfig()
	params := cfg.Redacted()

	for _, p := range params {
		if p.Name == "DB_PASSWORD" {
			assert.Equal(t, "********", p.Value)
		}
		assert.NotEqual(t, "p", p.Value)
	}
	assert.Equal(t, "DB_CLUSTER_ID", params[3].Name)
	assert.Equal(t, "c1", params[3].Value)
}
