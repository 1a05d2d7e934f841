package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type widget struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string
	Description *string
	Tags        datatypes.JSON
}

func newTestStore(t *testing.T) (Repository[widget], *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return ProvideStore[widget](db), db
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Create(ctx, &widget{ID: 1, Name: "alpha", Tags: datatypes.JSON(`["red","blue"]`)}))
	require.NoError(t, store.Create(ctx, &widget{ID: 2, Name: "beta", Tags: datatypes.JSON(`["green"]`)}))

	got, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Name)

	missing, err := store.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	affected, err := store.Update(ctx, 2, map[string]any{"name": "gamma"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := store.Find(ctx, OrderBy("id asc"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "gamma", rows[1].Name)

	affected, err = store.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestScopes(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	desc := "Shiny Things"
	require.NoError(t, store.Create(ctx, &widget{ID: 1, Name: "Lamp", Description: &desc, Tags: datatypes.JSON(`["red"]`)}))
	require.NoError(t, store.Create(ctx, &widget{ID: 2, Name: "Chair", Tags: datatypes.JSON(`["blue"]`)}))
	require.NoError(t, store.Create(ctx, &widget{ID: 3, Name: "Desk", Tags: datatypes.JSON(`["reddish"]`)}))

	t.Run("search matches description case-insensitively", func(t *testing.T) {
		rows, err := store.Find(ctx, Search("shiny", "name", "description"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, snowflake.ID(1), rows[0].ID)
	})

	t.Run("tag contains matches whole elements", func(t *testing.T) {
		rows, err := store.Find(ctx, JSONArrayContains("tags", "red"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Lamp", rows[0].Name)
	})

	t.Run("empty scopes are ignored", func(t *testing.T) {
		count, err := store.Count(ctx, Search("  "), JSONArrayContains("tags", ""))
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("paginate", func(t *testing.T) {
		rows, err := store.Find(ctx, OrderBy("id asc"), Paginate(1, 1))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Chair", rows[0].Name)
	})
}
