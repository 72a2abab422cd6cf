package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

var containsMatcher = pgxmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
	if !strings.Contains(actualSQL, expectedSQL) {
		return fmt.Errorf("SQL %q does not contain %q", actualSQL, expectedSQL)
	}
	return nil
})

// mockConnection records Close instead of forwarding it to pgxmock, which
// would report an unexpected call.
type mockConnection struct {
	pgxmock.PgxConnIface
	closed bool
}

func (m *mockConnection) Close(context.Context) error {
	m.closed = true
	return nil
}

type mockConnector struct {
	conn  *mockConnection
	err   error
	calls int
}

func (m *mockConnector) Connect(context.Context) (dwh.Connection, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}

func newMockConnector(t *testing.T) (*mockConnector, pgxmock.PgxConnIface) {
	t.Helper()
	mock, err := pgxmock.NewConn(pgxmock.QueryMatcherOption(containsMatcher))
	require.NoError(t, err)
	return &mockConnector{conn: &mockConnection{PgxConnIface: mock}}, mock
}

type mockPreflight struct {
	uris []string
	err  error
}

func (m *mockPreflight) Check(_ context.Context, uris ...string) error {
	m.uris = append(m.uris, uris...)
	return m.err
}

type mockApprover struct {
	approve bool
	err     error
	asked   []string
}

func (m *mockApprover) RequestApproval(_ context.Context, _, target string) (bool, error) {
	m.asked = append(m.asked, target)
	return m.approve, m.err
}
