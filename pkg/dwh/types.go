package dwh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConnectionConfig represents resolved warehouse connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Schema holds the staging and analytics tables. Empty means DefaultSchema.
	Schema string

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}

// Validate checks that the fields needed to open a connection are present.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("database user is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// KeyRef names a column of a warehouse table.
type KeyRef struct {
	Table  string
	Column string
}

// ParseKeyRef parses "table.column".
func ParseKeyRef(s string) (KeyRef, error) {
	table, column, ok := strings.Cut(s, ".")
	if !ok || table == "" || column == "" || strings.Contains(column, ".") {
		return KeyRef{}, fmt.Errorf("expected table.column, got %q", s)
	}
	return KeyRef{Table: table, Column: column}, nil
}

// String returns "table.column".
func (k KeyRef) String() string {
	return k.Table + "." + k.Column
}

// QualityReport is the outcome of one duplicate-removal pass over a table.
type QualityReport struct {
	Table      string
	PrimaryKey string

	// Before and After are the table row counts around the dedup.
	Before int64
	After  int64

	// DuplicateKeys is the number of distinct key values that had more than one row.
	DuplicateKeys int64

	// Removed is Before - After; never negative.
	Removed int64
}

// KeySetDiff is the outcome of comparing the distinct values of two columns.
// A non-empty difference is a finding, not an error.
type KeySetDiff struct {
	Left  KeyRef
	Right KeyRef

	LeftCount  int
	RightCount int

	// OnlyInLeft holds values present in Left but absent from Right, sorted.
	OnlyInLeft []string

	// OnlyInRight holds values present in Right but absent from Left, sorted.
	OnlyInRight []string
}

// Matches reports whether both key sets are identical.
func (d KeySetDiff) Matches() bool {
	return len(d.OnlyInLeft) == 0 && len(d.OnlyInRight) == 0
}

// StepResult records one executed load statement.
type StepResult struct {
	Name         string
	Table        string
	RowsAffected int64
	Duration     time.Duration
}

// RunOptions controls a pipeline run.
type RunOptions struct {
	// SkipStaging skips the bulk-copy phase when staging data is already current.
	SkipStaging bool

	// Preflight verifies every S3 source prefix is non-empty before copying.
	Preflight bool
}

// RunReport summarizes a completed pipeline run.
type RunReport struct {
	RunID           uuid.UUID
	StagingLoaded   bool
	Steps           []StepResult
	Quality         []QualityReport
	Reconciliations []KeySetDiff
	Duration        time.Duration
}

// QualityChecker removes duplicate primary-key rows from a table.
type QualityChecker interface {
	Check(ctx context.Context, table, primaryKey string) (QualityReport, error)
}

// Reconciler compares the distinct key sets of two columns.
type Reconciler interface {
	Reconcile(ctx context.Context, left, right KeyRef) (KeySetDiff, error)
}
