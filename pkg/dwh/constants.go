package dwh

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the warehouse
	ExitApprovalDenied  = 12 // User denied a destructive operation
	ExitExecutionFailed = 13 // SQL execution failed
	ExitMissingRelation = 14 // Table or column missing
	ExitInvalidPlan     = 15 // Step plan failed validation
	ExitSourceEmpty     = 16 // S3 source prefix has no objects
	ExitClusterAPIError = 17 // Redshift management API error
)

const (
	// DefaultConfigFile is the configuration file read when --config is not given.
	DefaultConfigFile = "dwh.yaml"

	// DefaultRegion is the AWS region used when none is configured.
	DefaultRegion = "us-west-2"

	// DefaultPort is the Redshift listener port.
	DefaultPort = 5439

	// DefaultSchema is the schema holding staging and analytics tables.
	DefaultSchema = "public"

	// DefaultSSLMode is the sslmode used for warehouse connections.
	DefaultSSLMode = "require"

	// AppName is reported to the warehouse as application_name.
	AppName = "dwhetl"

	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultWaitInitialDelay is the first delay between cluster status polls.
	DefaultWaitInitialDelay = 10 * time.Second

	// DefaultWaitMaxDelay caps the delay between cluster status polls.
	DefaultWaitMaxDelay = 1 * time.Minute

	// DefaultWaitMaxAttempts bounds the number of cluster status polls.
	DefaultWaitMaxAttempts = 60

	// MaxErrorPreviewLength is the maximum number of characters of a failed
	// statement echoed back in error messages.
	MaxErrorPreviewLength = 200

	// ClusterStatusAvailable is the Redshift status of a cluster ready for connections.
	ClusterStatusAvailable = "available"
)

// Warehouse tables.
const (
	TableStagingEvents = "staging_events"
	TableStagingSongs  = "staging_songs"
	TableSongplays     = "songplays"
	TableUsers         = "users"
	TableSongs         = "songs"
	TableArtists       = "artists"
	TableTime          = "time"
)
