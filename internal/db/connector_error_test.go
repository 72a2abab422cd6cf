package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name         string
		errMsg       string
		host         string
		port         int
		database     string
		wantContains string
	}{
		{
			name:         "connection refused",
			errMsg:       "dial tcp 10.0.0.5:5439: connection refused",
			host:         "10.0.0.5",
			port:         5439,
			database:     "dev",
			wantContains: "connection refused to 10.0.0.5:5439",
		},
		{
			name:         "actively refused (Windows)",
			errMsg:       "dial tcp 127.0.0.1:5439: connectex: No connection could be made because the target machine actively refused it",
			host:         "127.0.0.1",
			port:         5439,
			database:     "dev",
			wantContains: "connection refused to 127.0.0.1:5439",
		},
		{
			name:         "no such host",
			errMsg:       "dial tcp: lookup dwh.example.redshift.amazonaws.com: no such host",
			host:         "dwh.example.redshift.amazonaws.com",
			port:         5439,
			database:     "dev",
			wantContains: `cannot resolve host "dwh.example.redshift.amazonaws.com"`,
		},
		{
			name:         "password auth failed",
			errMsg:       `password authentication failed for user "awsuser"`,
			host:         "localhost",
			port:         5439,
			database:     "dev",
			wantContains: `password authentication failed for database "dev"`,
		},
		{
			name:         "database does not exist",
			errMsg:       `database "nope" does not exist`,
			host:         "localhost",
			port:         5439,
			database:     "nope",
			wantContains: `database "nope" does not exist`,
		},
		{
			name:         "timeout",
			errMsg:       "dial tcp 10.0.0.1:5439: i/o timeout",
			host:         "10.0.0.1",
			port:         5439,
			database:     "dev",
			wantContains: "connection timed out to 10.0.0.1:5439",
		},
		{
			name:         "TLS error",
			errMsg:       "tls: handshake failure",
			host:         "localhost",
			port:         5439,
			database:     "dev",
			wantContains: "SSL/TLS connection error",
		},
		{
			name:         "unknown error falls through to default",
			errMsg:       "something completely unexpected happened",
			host:         "localhost",
			port:         5439,
			database:     "dev",
			wantContains: "failed to connect to warehouse",
		},
		{
			name:         "case insensitive matching",
			errMsg:       "CONNECTION REFUSED by firewall",
			host:         "firewall.host",
			port:         5440,
			database:     "dev",
			wantContains: "connection refused to firewall.host:5440",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalErr := errors.New(tt.errMsg)
			wrapped := wrapConnectionError(originalErr, tt.host, tt.port, tt.database)

			if !strings.Contains(wrapped.Error(), tt.wantContains) {
				t.Errorf("wrapConnectionError() = %q, want it to contain %q", wrapped.Error(), tt.wantContains)
			}
			if !errors.Is(wrapped, originalErr) {
				t.Error("wrapped error does not unwrap to original error")
			}
			if !errors.Is(wrapped, dwh.ErrConnectionFailed) {
				t.Error("wrapped error does not chain dwh.ErrConnectionFailed")
			}
			if got := dwh.ExitCodeForError(wrapped); got != dwh.ExitConnectionError {
				t.Errorf("ExitCodeForError() = %d, want %d", got, dwh.ExitConnectionError)
			}
		})
	}
}

func TestNewStandardConnector_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil config")
		}
	}()
	NewStandardConnector(nil, nil)
}
