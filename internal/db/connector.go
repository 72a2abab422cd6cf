package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// StandardConnector opens a single password-authenticated connection to the
// warehouse. Connection attempts are not retried.
type StandardConnector struct {
	config *dwh.ConnectionConfig
	logger dwh.Logger
}

// NewStandardConnector creates a connector for config. Server notices are
// forwarded to logger at verbose level.
func NewStandardConnector(config *dwh.ConnectionConfig, logger dwh.Logger) *StandardConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{config: config, logger: logger}
}

// Connect opens the connection and verifies it with a ping.
func (c *StandardConnector) Connect(ctx context.Context) (dwh.Connection, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	connConfig, err := pgx.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, dwh.ErrInvalidConfig)
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}

	c.logger.Verbose("Connecting to %s:%d/%s as %s", c.config.Host, c.config.Port, c.config.Database, c.config.Username)

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
	}

	return conn, nil
}

var _ dwh.Connector = (*StandardConnector)(nil)

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// Every returned error wraps dwh.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var msg string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		msg = fmt.Sprintf(`connection refused to %s

Possible causes:
  - Cluster is not available yet (check: dwhetl cluster status)
  - Wrong host or port
  - VPC security group does not allow inbound traffic on port %d`, addr, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		msg = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - cluster.host does not match the cluster endpoint
  - Cluster was deleted
  - Network connection issue`, host)

	case strings.Contains(errStr, "password authentication failed"):
		msg = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong cluster.db_password (or $DWH_DB_PASSWORD)
  - Wrong cluster.db_user`, database)

	case strings.Contains(errStr, "does not exist"):
		msg = fmt.Sprintf(`database "%s" does not exist

Check cluster.db_name against the DBName shown by: dwhetl cluster status`, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		msg = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Cluster is not publicly accessible
  - Security group or firewall silently dropping packets
  - Wrong host/port (server not listening)`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		msg = `SSL/TLS connection error

Possible causes:
  - cluster.sslmode does not match the cluster's require_ssl setting
  - Certificate verification failed (try sslmode: require)`

	default:
		return fmt.Errorf("failed to connect to warehouse: %w: %w", dwh.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", msg, dwh.ErrConnectionFailed, err)
}
