package postgres

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource(t *testing.T) {
	src, err := MigrationSource()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	up, _, err := src.ReadUp(version)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	up.Close()
	for _, table := range []string{"tenant", "manager", "location", "property", "lease", "application", "payment", "tenant_favorite", "tenant_property"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}

	down, _, err := src.ReadDown(version)
	require.NoError(t, err)
	down.Close()

	// Every version needs a down migration.
	for v := version; ; {
		_, _, err := src.ReadDown(v)
		require.NoError(t, err, "version %d", v)
		next, err := src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		require.NoError(t, err)
		v = next
	}
}
