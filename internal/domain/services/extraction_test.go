package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/mocks"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{
			name:      "short text fits in one chunk",
			text:      "This is a short text.",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "empty text returns single chunk",
			text:      "",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "text splits into multiple chunks",
			text:      "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.\n\nFourth paragraph.",
			chunkSize: 40,
			overlap:   10,
			wantCount: 3,
		},
		{
			name:      "text exactly at chunk size",
			text:      "12345678901234567890",
			chunkSize: 20,
			overlap:   5,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.chunkSize, tt.overlap)
			assert.Equal(t, tt.wantCount, len(chunks))

			if tt.wantCount > 0 && tt.text != "" {
				combined := ""
				for _, chunk := range chunks {
					if combined == "" {
						combined = chunk
					}
				}
				assert.NotEmpty(t, combined)
			}
		})
	}
}

func TestChunkText_PreservesParagraphs(t *testing.T) {
	text := "First paragraph with some content.\n\nSecond paragraph with more content.\n\nThird paragraph."
	chunks := ChunkText(text, 60, 10)

	assert.GreaterOrEqual(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
	}
}

func TestChunkText_HandlesLongParagraph(t *testing.T) {
	longPara := "This is a very long paragraph that exceeds the chunk size limit and should be handled gracefully by the chunking algorithm without breaking."
	chunks := ChunkText(longPara, 50, 10)

	assert.GreaterOrEqual(t, len(chunks), 1)
}

func TestChunkText_OnlyWhitespace(t *testing.T) {
	chunks := ChunkText("   \n\n   \n\n   ", 100, 10)
	// Should return original text as single chunk since no real paragraphs
	assert.Len(t, chunks, 1)
}

func TestChunkText_SingleParagraph(t *testing.T) {
	text := "This is a single paragraph without any double newlines."
	chunks := ChunkText(text, 100, 10)
	assert.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkText_OverlapContent(t *testing.T) {
	// Test that overlap is actually included
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."
	chunks := ChunkText(text, 40, 15)

	// Should have multiple chunks
	assert.Greater(t, len(chunks), 1)

	// Each chunk (except first) should have some overlap from previous
	for i := 1; i < len(chunks); i++ {
		assert.NotEmpty(t, chunks[i])
	}
}

func TestGetOverlapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		n        int
		expected string
	}{
		{
			name:     "normal overlap",
			text:     "Hello World",
			n:        5,
			expected: "World",
		},
		{
			name:     "overlap larger than text",
			text:     "Hi",
			n:        10,
			expected: "Hi",
		},
		{
			name:     "overlap equals text length",
			text:     "Hello",
			n:        5,
			expected: "Hello",
		},
		{
			name:     "zero overlap",
			text:     "Hello",
			n:        0,
			expected: "",
		},
		{
			name:     "empty text",
			text:     "",
			n:        5,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getOverlapText(tt.text, tt.n)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEventToText(t *testing.T) {
	tests := []struct {
		name     string
		event    entities.TimelineEvent
		expected string
	}{
		{
			name:     "title only",
			event:    entities.TimelineEvent{Title: "Founding"},
			expected: "Founding",
		},
		{
			name: "with date and description",
			event: entities.TimelineEvent{
				Title:       "Founding",
				Date:        entities.ExactDate("BE", 5, 0, 0),
				Description: "The first stone is laid",
			},
			expected: "Founding BE 5 The first stone is laid",
		},
		{
			name: "approximate date",
			event: entities.TimelineEvent{
				Title: "The long winter",
				Date:  entities.ApproximateDate(entities.Calendar("SE", 40, 0, 0)),
			},
			expected: "The long winter ~SE 40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, eventToText(&tt.event))
		})
	}
}

func newExtractionFixture(t *testing.T, events []ports.ExtractedEvent) (*ExtractionService, *mocks.LLMClient, *mocks.VectorDB, *mocks.RelationalDB) {
	t.Helper()
	llm := &mocks.LLMClient{Events: events}
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2}}
	vectorDB := &mocks.VectorDB{}
	relationalDB := mocks.NewRelationalDB()
	service := NewExtractionService(llm, embedder, vectorDB, relationalDB, zaptest.NewLogger(t))
	return service, llm, vectorDB, relationalDB
}

var extractionTimeline = &entities.Timeline{ID: "tl-1", Name: "Main", Eras: "BE, SE"}

func TestExtractionService_ExtractFromReader(t *testing.T) {
	service, llm, vectorDB, relationalDB := newExtractionFixture(t, []ports.ExtractedEvent{
		{Title: "Founding", Date: "BE 5", Characters: []string{"Aria", "aria "}},
		{Title: "Crowning", Date: "SE 3-01-01", Description: "Aria is crowned"},
		{Title: "  ", Date: "SE 4"},
	})

	result, err := service.ExtractFromReader(context.Background(),
		strings.NewReader("In BE 5 the city was founded.\n\nAria was crowned in SE 3."),
		extractionTimeline, "chronicle.md", ExtractionOptions{})

	require.NoError(t, err)
	require.Len(t, result.Events, 2)
	assert.Equal(t, []string{"BE", "SE"}, llm.LastEras)
	assert.Equal(t, []string{"Aria"}, result.Characters)
	assert.Zero(t, result.Undated)

	first := result.Events[0]
	assert.Equal(t, "Founding", first.Title)
	assert.Equal(t, entities.ExactDate("BE", 5, 0, 0), first.Date)
	assert.Equal(t, "tl-1", first.TimelineID)
	assert.Equal(t, "chronicle.md", first.SourceFile)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, []float32{0.1, 0.2}, first.Embedding)

	assert.Len(t, relationalDB.Events, 2)
	assert.Equal(t, 1, vectorDB.SaveBatchCallCount)
	assert.Len(t, vectorDB.SaveBatchLastEvents, 2)
}

func TestExtractionService_DropsOverlapDuplicates(t *testing.T) {
	service, llm, _, _ := newExtractionFixture(t, []ports.ExtractedEvent{
		{Title: "Founding", Date: "BE 5"},
	})

	para := strings.Repeat("word ", DefaultChunkSize/5)
	text := para + "\n\n" + para

	result, err := service.ExtractAndStore(context.Background(), text, extractionTimeline, "", ExtractionOptions{})

	require.NoError(t, err)
	assert.Greater(t, llm.ExtractCallCount, 1)
	assert.Len(t, result.Events, 1)
}

func TestExtractionService_Undated(t *testing.T) {
	extracted := []ports.ExtractedEvent{
		{Title: "Founding", Date: "BE 5"},
		{Title: "A rumour", Date: "long ago"},
	}

	t.Run("kept by default", func(t *testing.T) {
		service, _, _, relationalDB := newExtractionFixture(t, extracted)
		result, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Undated)
		assert.Len(t, result.Events, 2)
		assert.Len(t, relationalDB.Events, 2)
	})

	t.Run("skipped on request", func(t *testing.T) {
		service, _, _, relationalDB := newExtractionFixture(t, extracted)
		result, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{SkipUndated: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Undated)
		assert.Len(t, result.Events, 1)
		assert.Len(t, relationalDB.Events, 1)
	})
}

func TestExtractionService_DryRun(t *testing.T) {
	service, _, vectorDB, relationalDB := newExtractionFixture(t, []ports.ExtractedEvent{
		{Title: "Founding", Date: "BE 5"},
	})

	result, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{DryRun: true})

	require.NoError(t, err)
	assert.Len(t, result.Events, 1)
	assert.Empty(t, relationalDB.Events)
	assert.Zero(t, vectorDB.SaveBatchCallCount)
}

func TestExtractionService_WithoutIndex(t *testing.T) {
	llm := &mocks.LLMClient{Events: []ports.ExtractedEvent{{Title: "Founding", Date: "BE 5"}}}
	relationalDB := mocks.NewRelationalDB()
	service := NewExtractionService(llm, nil, nil, relationalDB, nil)

	result, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{})

	require.NoError(t, err)
	assert.Len(t, result.Events, 1)
	assert.Len(t, relationalDB.Events, 1)
}

func TestExtractionService_Errors(t *testing.T) {
	t.Run("llm error", func(t *testing.T) {
		service, llm, _, _ := newExtractionFixture(t, nil)
		llm.ExtractErr = errors.New("rate limited")

		_, err := service.ExtractFromReader(context.Background(), strings.NewReader("text"), extractionTimeline, "", ExtractionOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("embedding error", func(t *testing.T) {
		llm := &mocks.LLMClient{Events: []ports.ExtractedEvent{{Title: "Founding", Date: "BE 5"}}}
		embedder := &mocks.Embedder{Err: errors.New("quota")}
		service := NewExtractionService(llm, embedder, &mocks.VectorDB{}, mocks.NewRelationalDB(), nil)

		_, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generating embeddings")
	})

	t.Run("no events", func(t *testing.T) {
		service, _, vectorDB, _ := newExtractionFixture(t, nil)
		result, err := service.ExtractAndStore(context.Background(), "text", extractionTimeline, "", ExtractionOptions{})
		require.NoError(t, err)
		assert.Empty(t, result.Events)
		assert.Zero(t, vectorDB.SaveBatchCallCount)
	})
}
