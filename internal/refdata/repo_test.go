package refdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarchuk/artvault-backend/pkg/db/models"
)

func setupRefdataTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS artists (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  bio TEXT,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS techniques (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestArtistByNameIsCaseInsensitive(t *testing.T) {
	repo := NewRepository(setupRefdataTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateArtist(ctx, &models.Artist{ID: uuid.New(), Name: "Jane Doe"})
	require.NoError(t, err)

	for _, name := range []string{"Jane Doe", "jane doe", "JANE DOE", "  Jane Doe  "} {
		found, err := repo.ArtistByName(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, found, "lookup %q", name)
		assert.Equal(t, created.ID, found.ID)
	}
}

func TestArtistByNameMissReturnsNilNil(t *testing.T) {
	repo := NewRepository(setupRefdataTestDB(t))

	found, err := repo.ArtistByName(context.Background(), "Nobody Known")
	require.NoError(t, err)
	assert.Nil(t, found)

	blank, err := repo.ArtistByName(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, blank)
}

func TestTechniqueByName(t *testing.T) {
	repo := NewRepository(setupRefdataTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateTechnique(ctx, &models.Technique{ID: uuid.New(), Name: "Oil on canvas"})
	require.NoError(t, err)

	found, err := repo.TechniqueByName(ctx, "OIL ON CANVAS")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.TechniqueByName(ctx, "Fresco")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
