package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/nimble/pkg/config"
)

// Environment variables read by integration tests. NIMBLE_TEST_DB_HOST must
// be set for database tests to run.
const (
	EnvTestHost     = "NIMBLE_TEST_DB_HOST"
	EnvTestPort     = "NIMBLE_TEST_DB_PORT"
	EnvTestDatabase = "NIMBLE_TEST_DB_NAME"
	EnvTestUser     = "NIMBLE_TEST_DB_USER"
	EnvTestPassword = "NIMBLE_TEST_DB_PASSWORD"
	EnvTestSSLMode  = "NIMBLE_TEST_DB_SSLMODE"
)

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// DatabaseConfig returns the connection settings for the test database, or
// skips the test when no database is configured.
func DatabaseConfig(t *testing.T) config.ConnectionConfig {
	t.Helper()
	IntegrationTest(t)

	host := os.Getenv(EnvTestHost)
	if host == "" {
		t.Skipf("Skipping database test: %s not set", EnvTestHost)
	}

	cfg := config.Default().Database
	cfg.Host = host
	cfg.Database = "postgres"
	cfg.User = "postgres"
	cfg.ConnectTimeout = 5 * time.Second
	if v := os.Getenv(EnvTestPort); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv(EnvTestDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvTestUser); v != "" {
		cfg.User = v
	}
	cfg.Password = os.Getenv(EnvTestPassword)
	if v := os.Getenv(EnvTestSSLMode); v != "" {
		cfg.SSLMode = v
	}
	return cfg
}

// TableName returns a table name unique to this run, so parallel test runs
// against one database do not collide.
func TableName(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, id[:12])
}

// IntegrationTestSuite provides base functionality for database integration
// tests. Embedding suites get a context and the test database config.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	db        config.ConnectionConfig
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.db = DatabaseConfig(s.T())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()
	s.T().Logf("Integration test suite using %s", s.db.Redacted())
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
	s.T().Logf("Integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// Database returns the test database connection settings
func (s *IntegrationTestSuite) Database() config.ConnectionConfig {
	return s.db
}
