package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/datacite/datafiles-service/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Datafile{}, &models.Requester{}))
	return db
}

func seedDatafile(t *testing.T, db *gorm.DB) *models.Datafile {
	t.Helper()
	file := &models.Datafile{
		Slug:        "covid-19-dump",
		Name:        "COVID-19 Dump",
		Description: "A dump of COVID-19 related DOI metadata.",
		Size:        "1.2 GB",
		Filename:    "covid-19-dump.tar.gz",
	}
	require.NoError(t, db.Create(file).Error)
	return file
}

func TestDatafileBySlug(t *testing.T) {
	db := newTestDB(t)
	want := seedDatafile(t, db)

	got, err := NewDatafileStore(db).BySlug(context.Background(), "covid-19-dump")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "COVID-19 Dump", got.Name)
}

func TestDatafileBySlugNotFound(t *testing.T) {
	db := newTestDB(t)
	seedDatafile(t, db)

	_, err := NewDatafileStore(db).BySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatafileAllSorted(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Datafile{Slug: "b", Name: "Beta", Description: "d", Size: "1 MB", Filename: "b.gz"}).Error)
	require.NoError(t, db.Create(&models.Datafile{Slug: "a", Name: "Alpha", Description: "d", Size: "1 MB", Filename: "a.gz"}).Error)

	files, err := NewDatafileStore(db).All(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Alpha", files[0].Name)
	assert.Equal(t, "Beta", files[1].Name)
}

func TestRequesterCreateStampsRequestTime(t *testing.T) {
	db := newTestDB(t)
	file := seedDatafile(t, db)
	requesters := NewRequesterStore(db)

	r := &models.Requester{
		Email:        "a@example.org",
		Name:         "A. Researcher",
		Organisation: "Example University",
		Contact:      true,
		PrimaryUse:   []string{"research"},
		DatafileID:   file.ID,
	}
	require.NoError(t, requesters.Create(context.Background(), r))
	require.NotZero(t, r.ID)

	got, err := requesters.ByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.False(t, got.RequestedAt.IsZero())
	assert.Nil(t, got.AccessedAt)
	assert.Equal(t, []string{"research"}, got.PrimaryUse)
}

func TestRequesterCreateRejectsDanglingDatafile(t *testing.T) {
	db := newTestDB(t)
	requesters := NewRequesterStore(db)

	r := &models.Requester{
		Email:        "a@example.org",
		Name:         "A. Researcher",
		Organisation: "Example University",
		PrimaryUse:   []string{"research"},
		DatafileID:   999,
	}
	assert.ErrorIs(t, requesters.Create(context.Background(), r), ErrNotFound)
}

func TestRequesterByIDNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewRequesterStore(db).ByID(context.Background(), 123)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkAccessedIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	file := seedDatafile(t, db)
	requesters := NewRequesterStore(db)

	r := &models.Requester{
		Email:        "a@example.org",
		Name:         "A. Researcher",
		Organisation: "Example University",
		PrimaryUse:   []string{"research"},
		DatafileID:   file.ID,
	}
	require.NoError(t, requesters.Create(context.Background(), r))

	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, requesters.MarkAccessed(context.Background(), r.ID, first))

	got, err := requesters.ByID(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccessedAt)
	assert.True(t, got.AccessedAt.Equal(first))

	// A later call must not move the timestamp.
	require.NoError(t, requesters.MarkAccessed(context.Background(), r.ID, first.Add(time.Hour)))
	got, err = requesters.ByID(context.Background(), r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccessedAt)
	assert.True(t, got.AccessedAt.Equal(first))
}
