package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
	"github.com/ersonp/lore-timeline/internal/infrastructure/relationaldb/sqlite"
)

func TestPrintWorlds(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printWorlds(&buf, &config.WorldsConfig{}))
		assert.Contains(t, buf.String(), "No worlds configured.")
	})

	t.Run("sorted by name", func(t *testing.T) {
		worlds := &config.WorldsConfig{}
		worlds.Add("narnia", config.WorldEntry{Collection: "lore_narnia"})
		worlds.Add("middle", config.WorldEntry{Collection: "lore_middle", Description: "third age", DefaultEras: `["First Age","Second Age"]`})

		var buf bytes.Buffer
		require.NoError(t, printWorlds(&buf, worlds))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "NAME"))
		assert.True(t, strings.HasPrefix(lines[2], "middle"))
		assert.Contains(t, lines[2], "third age")
		assert.Contains(t, lines[2], "First Age, Second Age")
		assert.True(t, strings.HasPrefix(lines[3], "narnia"))
		assert.True(t, strings.HasSuffix(lines[3], "-"), "no default eras")
	})
}

func TestWithCollectionManager_NoEmbedderKey(t *testing.T) {
	cfg := config.Default()

	called := false
	err := withCollectionManager(cfg, "lore_test", func(cm ports.CollectionManager) error {
		called = true
		assert.Nil(t, cm)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCountTimelines(t *testing.T) {
	ctx := t.Context()

	t.Run("no database yet", func(t *testing.T) {
		count, err := countTimelines(ctx, filepath.Join(t.TempDir(), "missing.db"), "middle")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("counts the world's timelines", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "lore.db")
		repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
		require.NoError(t, err)
		require.NoError(t, repo.EnsureSchema(ctx))
		for _, tl := range []*entities.Timeline{
			{ID: "t1", WorldID: "middle", Name: "Main"},
			{ID: "t2", WorldID: "middle", Name: "Elves"},
			{ID: "t3", WorldID: "narnia", Name: "Main"},
		} {
			require.NoError(t, repo.SaveTimeline(ctx, tl))
		}
		require.NoError(t, repo.Close())

		count, err := countTimelines(ctx, dbPath, "middle")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
