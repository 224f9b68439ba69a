package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

func newIngestHandler(t *testing.T, f *handlerFixture) *IngestHandler {
	t.Helper()
	svc := services.NewExtractionService(f.llm, f.embedder, f.vectorDB, f.relationalDB, zaptest.NewLogger(t))
	return NewIngestHandler(svc, f.timelines)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestHandler_Handle(t *testing.T) {
	f := newHandlerFixture(t)
	tl := f.createTimeline(t, "Main", "BE, SE")
	f.llm.Events = []ports.ExtractedEvent{
		{Title: "Crowning", Description: "Mara is crowned.", Date: "SE 301", Characters: []string{"Mara"}},
		{Title: "The long night", Date: "some winter"},
	}
	handler := newIngestHandler(t, f)

	testFile := writeFile(t, t.TempDir(), "chapter1.txt", "In SE 301 Mara was crowned.")

	result, err := handler.Handle(t.Context(), testWorld, testFile, IngestOptions{Timeline: "main"})
	require.NoError(t, err)
	assert.Equal(t, testFile, result.FilePath)
	assert.Equal(t, 2, result.EventsCount)
	assert.Equal(t, 1, result.Undated)
	assert.Equal(t, []string{"Mara"}, result.Characters)
	assert.Equal(t, []string{"BE", "SE"}, f.llm.LastEras)

	for _, ev := range result.Events {
		assert.Equal(t, tl.ID, ev.TimelineID)
		assert.Equal(t, testFile, ev.SourceFile)
	}
	assert.Len(t, f.relationalDB.Events, 2)
	assert.Equal(t, 1, f.vectorDB.SaveBatchCallCount)
}

func TestIngestHandler_Handle_Options(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	f.llm.Events = []ports.ExtractedEvent{
		{Title: "Crowning", Date: "SE 301"},
		{Title: "The long night", Date: "some winter"},
	}
	handler := newIngestHandler(t, f)
	testFile := writeFile(t, t.TempDir(), "chapter1.txt", "Text.")

	t.Run("dry run", func(t *testing.T) {
		result, err := handler.Handle(t.Context(), testWorld, testFile, IngestOptions{Timeline: "Main", DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.EventsCount)
		assert.Empty(t, f.relationalDB.Events)
		assert.Zero(t, f.vectorDB.SaveBatchCallCount, "SaveBatch should not be called in dry run")
	})

	t.Run("skip undated", func(t *testing.T) {
		result, err := handler.Handle(t.Context(), testWorld, testFile, IngestOptions{Timeline: "Main", SkipUndated: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.EventsCount)
		assert.Equal(t, 1, result.Undated)
	})
}

func TestIngestHandler_Handle_Errors(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	handler := newIngestHandler(t, f)
	tmpDir := t.TempDir()

	t.Run("timeline required", func(t *testing.T) {
		_, err := handler.Handle(t.Context(), testWorld, "file.txt", IngestOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeline is required")
	})

	t.Run("unknown timeline", func(t *testing.T) {
		_, err := handler.Handle(t.Context(), testWorld, "file.txt", IngestOptions{Timeline: "Other"})
		assert.ErrorIs(t, err, services.ErrTimelineNotFound)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := handler.Handle(t.Context(), testWorld, "/nonexistent/file.txt", IngestOptions{Timeline: "Main"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accessing file")
	})

	t.Run("directory", func(t *testing.T) {
		_, err := handler.Handle(t.Context(), testWorld, tmpDir, IngestOptions{Timeline: "Main"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})
}

func TestIngestHandler_HandleDirectory(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	f.llm.Events = []ports.ExtractedEvent{{Title: "Founding", Date: "BE 1"}}
	handler := newIngestHandler(t, f)

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "file1.txt", "Content 1")
	writeFile(t, tmpDir, "file2.txt", "Content 2")
	writeFile(t, tmpDir, "other.md", "Other content")
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "nested"), 0755))
	writeFile(t, filepath.Join(tmpDir, "nested"), "file3.txt", "Content 3")

	var progressFiles []string
	progressFn := func(file string) {
		progressFiles = append(progressFiles, file)
	}

	result, err := handler.HandleDirectory(t.Context(), testWorld, tmpDir, "*.txt", false, progressFn, IngestOptions{Timeline: "Main"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 2, result.TotalEvents)
	assert.Len(t, progressFiles, 2)
	assert.Empty(t, result.Errors)

	t.Run("recursive", func(t *testing.T) {
		result, err := handler.HandleDirectory(t.Context(), testWorld, tmpDir, "*.txt", true, nil, IngestOptions{Timeline: "Main", DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalFiles)
	})
}

func TestIngestHandler_HandleDirectory_NoMatches(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	handler := newIngestHandler(t, f)

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "file.md", "Content")

	_, err := handler.HandleDirectory(t.Context(), testWorld, tmpDir, "*.txt", false, nil, IngestOptions{Timeline: "Main"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matching")
}

func TestIngestHandler_HandleDirectory_NotDirectory(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	handler := newIngestHandler(t, f)

	testFile := writeFile(t, t.TempDir(), "file.txt", "Content")

	_, err := handler.HandleDirectory(t.Context(), testWorld, testFile, "*.txt", false, nil, IngestOptions{Timeline: "Main"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := writeFile(t, tmpDir, "file.txt", "Content")

	assert.True(t, IsDirectory(tmpDir))
	assert.False(t, IsDirectory(testFile))
	assert.False(t, IsDirectory("/nonexistent/path"))
}

func TestIsGlobPattern(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"*.txt", true},
		{"file?.txt", true},
		{"[abc].txt", true},
		{"file.txt", false},
		{"/path/to/file.txt", false},
		{"**/*.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsGlobPattern(tt.path))
		})
	}
}

func TestIngestHandler_HandleText(t *testing.T) {
	f := newHandlerFixture(t)
	f.createTimeline(t, "Main", "BE, SE")
	f.llm.Events = []ports.ExtractedEvent{
		{Title: "Crowning", Date: "SE 301"},
		{Title: "The long night", Date: "some winter"},
	}
	handler := newIngestHandler(t, f)

	result, err := handler.HandleText(t.Context(), testWorld, "In SE 301 Mara was crowned.", "session", IngestOptions{
		Timeline: "Main",
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.EventsCount)
	assert.Equal(t, 1, result.Undated)
	assert.Equal(t, "session", result.Events[0].SourceFile)
	assert.Empty(t, f.relationalDB.Events)

	_, err = handler.HandleText(t.Context(), testWorld, "text", "", IngestOptions{})
	assert.ErrorContains(t, err, "timeline is required")
}
