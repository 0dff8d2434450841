package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempDatabase(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "printshop.db"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestVersionCommand(t *testing.T) {
	Version = "1.2.3"
	t.Cleanup(func() { Version = "dev" })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "printshop version 1.2.3\n", out)
}

func TestMaintenanceCommands(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "init-db")
	require.NoError(t, err)
	assert.Contains(t, out, "Database initialized")
	assert.Contains(t, out, `Created admin user "admin"`)

	// seeding is idempotent
	out, err = run(t, "init-db")
	require.NoError(t, err)
	assert.NotContains(t, out, "Created admin user")
	assert.Contains(t, out, "Products created: 0, materials created: 0")

	out, err = run(t, "create-admin", "--username", "owner", "--email", "owner@example.com", "--password", "s3cretpass")
	require.NoError(t, err)
	assert.Contains(t, out, "Created administrator owner")

	out, err = run(t, "mark-overdue")
	require.NoError(t, err)
	assert.Equal(t, "0 invoice(s) marked overdue\n", out)
}
