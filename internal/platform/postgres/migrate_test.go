package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrderedAndComplete(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, m.Name)
		assert.NotEmpty(t, m.UpSQL)
	}
	assert.Contains(t, migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS attributes")
	assert.Contains(t, migrations[1].UpSQL, "CREATE TABLE IF NOT EXISTS requests")
	assert.Contains(t, migrations[2].UpSQL, "CREATE TABLE IF NOT EXISTS audit_events")
}
