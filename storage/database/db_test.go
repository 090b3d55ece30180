package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/devShreyas21/studentPortal/fs"
)

// Projects and submissions must survive the deletion of their owner or author.
func TestMigrations_noUserForeignKeys(t *testing.T) {
	names, err := fs.Glob(appfs.FS, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		src, err := fs.ReadFile(appfs.FS, name)
		require.NoError(t, err)
		assert.NotContains(t, strings.ToLower(string(src)), `references "user"`, name)
	}
}
