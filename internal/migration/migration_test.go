package migration

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSource_ListsEmbeddedMigrations(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestRun_AutoMigratesSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(db, "sqlite"))
	require.NoError(t, Run(db, "sqlite"))

	for _, table := range []string{"profiles", "invoices", "settings"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRun_RequiresHandle(t *testing.T) {
	assert.Error(t, Run(nil, "sqlite"))
}
