package dwh

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := checker.Check(ctx, "songs", "song_id")
//	if errors.Is(err, dwh.ErrMissingRelation) {
//	    // table or column does not exist
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the warehouse connection could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrExecutionFailed indicates a SQL statement failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrMissingRelation indicates a table or column referenced by a check does not exist.
	ErrMissingRelation = errors.New("missing relation")

	// ErrInvalidPlan indicates the step plan has unknown, cyclic or misordered dependencies.
	ErrInvalidPlan = errors.New("invalid step plan")

	// ErrSourceEmpty indicates an object-storage source prefix holds no objects.
	ErrSourceEmpty = errors.New("source prefix is empty")

	// ErrCountMismatch indicates row counts moved by something other than the dedup itself.
	ErrCountMismatch = errors.New("row count mismatch")

	// ErrClusterAPI indicates the cloud management API rejected a request.
	ErrClusterAPI = errors.New("cluster API error")

	// ErrApprovalDenied indicates the user denied approval for a destructive operation.
	ErrApprovalDenied = errors.New("approval denied")
)

// usageErrorPatterns are the message prefixes cobra uses for argument and flag errors.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrMissingRelation):
		return ExitMissingRelation
	case errors.Is(err, ErrInvalidPlan):
		return ExitInvalidPlan
	case errors.Is(err, ErrSourceEmpty):
		return ExitSourceEmpty
	case errors.Is(err, ErrClusterAPI):
		return ExitClusterAPIError
	case errors.Is(err, ErrExecutionFailed), errors.Is(err, ErrCountMismatch):
		return ExitExecutionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
