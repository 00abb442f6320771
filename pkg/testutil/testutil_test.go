package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "data.csv", []byte("a,b\n1,2\n"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))
}

func TestTableName(t *testing.T) {
	a := TableName("frames")
	b := TableName("frames")

	assert.True(t, strings.HasPrefix(a, "frames_"))
	assert.Len(t, a, len("frames_")+12)
	assert.NotEqual(t, a, b)
}

func TestDatabaseConfig_FromEnv(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Setenv(EnvTestHost, "db.internal")
	t.Setenv(EnvTestPort, "6543")
	t.Setenv(EnvTestUser, "tester")
	t.Setenv(EnvTestPassword, "secret")

	cfg := DatabaseConfig(t)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "6543", cfg.Port)
	assert.Equal(t, "tester", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.NoError(t, cfg.Validate())
}
