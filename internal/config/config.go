package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ClusterTypeSingleNode = "single-node"
	ClusterTypeMultiNode  = "multi-node"
)

type AWSConfig struct {
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
	Region string `yaml:"region"`
}

type SpecsConfig struct {
	ClusterType string `yaml:"cluster_type"`
	NodeType    string `yaml:"node_type"`
	NumNodes    int    `yaml:"num_nodes"`
	ClusterID   string `yaml:"cluster_id"`
}

type ClusterConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"db_name"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	Port       int    `yaml:"port"`
	Schema     string `yaml:"schema,omitempty"`
	SSLMode    string `yaml:"sslmode,omitempty"`
}

type IAMRoleConfig struct {
	ARN string `yaml:"arn"`
}

// S3Config names the object-storage sources of the staging tables.
// LogJSONPath is optional; without it event JSON is copied with 'auto'.
type S3Config struct {
	LogData     string `yaml:"log_data"`
	LogJSONPath string `yaml:"log_jsonpath,omitempty"`
	SongData    string `yaml:"song_data"`
	Region      string `yaml:"region,omitempty"`
}

// Config is the single configuration value built at process start and passed
// to every component.
type Config struct {
	AWS     AWSConfig     `yaml:"aws"`
	Specs   SpecsConfig   `yaml:"specs"`
	Cluster ClusterConfig `yaml:"cluster"`
	IAMRole IAMRoleConfig `yaml:"iam_role"`
	S3      S3Config      `yaml:"s3"`

	// s3RegionSet records that s3.region was given explicitly, so a later
	// aws region override does not leave the COPY region behind.
	s3RegionSet bool
}

// New returns a Config holding only defaults.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", path, err, dwh.ErrInvalidConfig)
	}
	cfg.s3RegionSet = cfg.S3.Region != ""
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AWS.Region == "" {
		c.AWS.Region = dwh.DefaultRegion
	}
	if c.S3.Region == "" {
		c.S3.Region = c.AWS.Region
	}
	if c.Cluster.Port == 0 {
		c.Cluster.Port = dwh.DefaultPort
	}
	if c.Cluster.Schema == "" {
		c.Cluster.Schema = dwh.DefaultSchema
	}
	if c.Cluster.SSLMode == "" {
		c.Cluster.SSLMode = dwh.DefaultSSLMode
	}
	if c.Specs.ClusterType == "" {
		c.Specs.ClusterType = ClusterTypeMultiNode
	}
}

// envOverrides maps DWH_* variables to the string fields they replace.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"DWH_AWS_KEY":      &c.AWS.Key,
		"DWH_AWS_SECRET":   &c.AWS.Secret,
		"DWH_AWS_REGION":   &c.AWS.Region,
		"DWH_CLUSTER_ID":   &c.Specs.ClusterID,
		"DWH_HOST":         &c.Cluster.Host,
		"DWH_DB_NAME":      &c.Cluster.DBName,
		"DWH_DB_USER":      &c.Cluster.DBUser,
		"DWH_DB_PASSWORD":  &c.Cluster.DBPassword,
		"DWH_IAM_ROLE_ARN": &c.IAMRole.ARN,
	}
}

// ApplyEnv overrides file values with DWH_* environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, field := range c.envOverrides() {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
	if v, ok := lookup("DWH_DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DWH_DB_PORT %q is not a number: %w", v, dwh.ErrInvalidConfig)
		}
		c.Cluster.Port = port
	}
	if !c.s3RegionSet {
		c.S3.Region = c.AWS.Region
	}
	return nil
}

// ConnectionConfig returns the warehouse connection parameters.
func (c *Config) ConnectionConfig() *dwh.ConnectionConfig {
	return &dwh.ConnectionConfig{
		Host:     c.Cluster.Host,
		Port:     c.Cluster.Port,
		Database: c.Cluster.DBName,
		Username: c.Cluster.DBUser,
		Password: c.Cluster.DBPassword,
		SSLMode:  c.Cluster.SSLMode,
		Schema:   c.Cluster.Schema,
		AppName:  dwh.AppName,
	}
}
