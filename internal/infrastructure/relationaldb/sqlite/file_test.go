package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
)

func openFileRepo(t *testing.T, path string) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestFileDatabase_Persists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file database test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "lore.db")
	ctx := context.Background()

	repo := openFileRepo(t, dbPath)
	saveTimeline(t, repo, "tl-1", "Main")
	require.NoError(t, repo.SaveEvent(ctx, &entities.TimelineEvent{
		ID: "ev-1", TimelineID: "tl-1", Title: "Crowning",
		Date: entities.ExactDate("SE", 5, 3, 1), CreatedAt: time.Now().UTC(),
	}))
	now := time.Now().UTC()
	require.NoError(t, repo.SaveCharacter(ctx, &entities.Character{
		ID: "ch-1", WorldID: "world-1", Name: "Mara", NormalizedName: "mara",
		BirthDate: "BE 980", TimelineID: "tl-1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.LogAction(ctx, "event_added", "ev-1", map[string]any{"title": "Crowning"}))
	require.NoError(t, repo.Close())

	_, err := os.Stat(dbPath)
	require.NoError(t, err, "database file should exist")

	repo2 := openFileRepo(t, dbPath)
	defer repo2.Close()

	events, err := repo2.ListEvents(ctx, "tl-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.ExactDate("SE", 5, 3, 1), events[0].Date)

	ch, err := repo2.FindCharacterByName(ctx, "world-1", "Mara")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "BE 980", ch.BirthDate)

	entries, err := repo2.FindAuditLog(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Crowning", entries[0].Details["title"])
}

func TestFileDatabase_ConcurrentReads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file database test in short mode")
	}

	repo := openFileRepo(t, filepath.Join(t.TempDir(), "concurrent.db"))
	defer repo.Close()
	ctx := context.Background()

	saveTimeline(t, repo, "tl-1", "Main")
	for i := range 100 {
		require.NoError(t, repo.SaveEvent(ctx, &entities.TimelineEvent{
			ID:         fmt.Sprintf("ev-%d", i),
			TimelineID: "tl-1",
			Title:      fmt.Sprintf("Event %d", i),
			Date:       entities.ExactDate("SE", i+1, 0, 0),
			CreatedAt:  time.Now().UTC(),
		}))
	}

	errCh := make(chan error, 10)
	for range 10 {
		go func() {
			events, err := repo.ListEvents(context.Background(), "tl-1")
			if err != nil {
				errCh <- err
				return
			}
			if len(events) != 100 {
				errCh <- fmt.Errorf("expected 100 events, got %d", len(events))
				return
			}
			errCh <- nil
		}()
	}

	for range 10 {
		assert.NoError(t, <-errCh)
	}
}

func TestFileDatabase_AuditLogByAction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file database test in short mode")
	}

	repo := openFileRepo(t, filepath.Join(t.TempDir(), "wal.db"))
	defer repo.Close()
	ctx := context.Background()

	for range 10 {
		require.NoError(t, repo.LogAction(ctx, "eras_updated", "tl-1", nil))
	}

	entries, err := repo.FindAuditLogByAction(ctx, "eras_updated", 100)
	require.NoError(t, err)
	assert.Len(t, entries, 10)

	limited, err := repo.FindAuditLogByAction(ctx, "eras_updated", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}
