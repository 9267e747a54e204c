package database

import (
	"path/filepath"
	"testing"

	"github.com/justsurfingit/job-tracker-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnect_SqliteCreatesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	db, err := Connect(path, zap.NewNop())
	require.NoError(t, err)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}

	require.NoError(t, db.Create(&models.Setting{Key: "k", Value: "v"}).Error)
	var got models.Setting
	require.NoError(t, db.First(&got, "key = ?", "k").Error)
	assert.Equal(t, "v", got.Value)
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor("postgres://user:pw@localhost:5432/jobs")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor(filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = dialectorFor("  ")
	assert.Error(t, err)
}
