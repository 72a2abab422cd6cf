package dwh_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, dwh.ExitSuccess},
		{"general error", errors.New("something went wrong"), dwh.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --foo"), dwh.ExitUsageError},
		{"accepts args", errors.New("accepts 2 arg(s), received 0"), dwh.ExitUsageError},
		{"invalid config", fmt.Errorf("host is required: %w", dwh.ErrInvalidConfig), dwh.ExitConfigError},
		{"connection failed", dwh.ErrConnectionFailed, dwh.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), dwh.ExitConnectionError},
		{"execution failed", fmt.Errorf("step users: %w", dwh.ErrExecutionFailed), dwh.ExitExecutionFailed},
		{"count mismatch", dwh.ErrCountMismatch, dwh.ExitExecutionFailed},
		{"missing relation", fmt.Errorf("songs: %w", dwh.ErrMissingRelation), dwh.ExitMissingRelation},
		{"invalid plan", dwh.ErrInvalidPlan, dwh.ExitInvalidPlan},
		{"empty source", dwh.ErrSourceEmpty, dwh.ExitSourceEmpty},
		{"cluster api", dwh.ErrClusterAPI, dwh.ExitClusterAPIError},
		{"approval denied", dwh.ErrApprovalDenied, dwh.ExitApprovalDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dwh.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_MissingRelationWinsOverExecution(t *testing.T) {
	err := fmt.Errorf("%w: %w", dwh.ErrExecutionFailed, dwh.ErrMissingRelation)
	if got := dwh.ExitCodeForError(err); got != dwh.ExitMissingRelation {
		t.Errorf("ExitCodeForError() = %d, want %d", got, dwh.ExitMissingRelation)
	}
}
