package models

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Datafile{}, &Requester{}))
	return db
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datafiles.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSeedDatafiles(t *testing.T) {
	db := newTestDB(t)
	path := writeSeedFile(t, `[
		{"slug": "covid-19-dump", "name": "COVID-19 Dump", "description": "d", "size": "1.2 GB", "filename": "covid-19-dump.tar.gz", "doi": "10.5438/example"},
		{"slug": "pid-graph", "name": "PID Graph", "description": "d", "size": "4 GB", "filename": "pid-graph.tar.gz"}
	]`)

	n, err := SeedDatafiles(db, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var count int64
	require.NoError(t, db.Model(&Datafile{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSeedDatafilesSkipsNonEmptyTable(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&Datafile{Slug: "existing", Name: "Existing", Description: "d", Size: "1 MB", Filename: "e.gz"}).Error)
	path := writeSeedFile(t, `[{"slug": "new", "name": "New", "description": "d", "size": "1 MB", "filename": "n.gz"}]`)

	n, err := SeedDatafiles(db, path)
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, db.Model(&Datafile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedDatafilesMissingFileIsNoop(t *testing.T) {
	db := newTestDB(t)

	n, err := SeedDatafiles(db, filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedDatafilesRejectsInvalidJSON(t *testing.T) {
	db := newTestDB(t)
	path := writeSeedFile(t, `{not json`)

	_, err := SeedDatafiles(db, path)
	assert.Error(t, err)
}
