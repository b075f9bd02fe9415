package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/game", DatabaseURL("postgres://u:p@localhost:5432/game"))
	assert.Equal(t, "pgx5://localhost/game", DatabaseURL("postgresql://localhost/game"))
	assert.Equal(t, "pgx5://localhost/game", DatabaseURL("pgx5://localhost/game"))
}

func TestEmbeddedFilesArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Zero(t, len(entries)%2)
}
