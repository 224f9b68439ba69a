// Package services contains domain business logic.
package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
)

// ExtractionOptions controls extraction behavior.
type ExtractionOptions struct {
	DryRun      bool // Extract and parse, don't save events
	SkipUndated bool // Drop events whose date could not be read
}

// ExtractionResult contains the result of extraction.
type ExtractionResult struct {
	Events []entities.TimelineEvent
	// Undated counts extracted events whose date text could not be parsed.
	Undated int
	// Characters lists the distinct character names the model mentioned.
	Characters []string
}

const (
	// DefaultChunkSize is the default size for text chunks.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200
)

// ExtractionService turns prose into dated timeline events.
type ExtractionService struct {
	llm          ports.LLMClient
	embedder     ports.Embedder
	vectorDB     ports.VectorDB
	relationalDB ports.RelationalDB
	logger       *zap.Logger
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(llm ports.LLMClient, embedder ports.Embedder, vectorDB ports.VectorDB, relationalDB ports.RelationalDB, logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{
		llm:          llm,
		embedder:     embedder,
		vectorDB:     vectorDB,
		relationalDB: relationalDB,
		logger:       logger,
	}
}

// ExtractAndStore extracts events from text onto a timeline.
func (s *ExtractionService) ExtractAndStore(ctx context.Context, text string, tl *entities.Timeline, sourceFile string, opts ExtractionOptions) (*ExtractionResult, error) {
	eras := chrono.EraNames(chrono.ParseEraConfig(tl.Eras))
	collector := newEventCollector(tl, sourceFile)

	// LLMs have token limits, so each chunk is a separate call.
	for i, chunk := range ChunkText(text, DefaultChunkSize, DefaultChunkOverlap) {
		extracted, err := s.llm.ExtractEvents(ctx, chunk, eras)
		if err != nil {
			return nil, fmt.Errorf("extracting events from chunk %d: %w", i, err)
		}
		collector.add(extracted)
	}

	return s.finalizeEvents(ctx, collector, opts)
}

// streamChunker handles streaming chunking of text from an io.Reader.
type streamChunker struct {
	scanner       *bufio.Scanner
	currentChunk  strings.Builder
	lastParagraph strings.Builder
	inParagraph   bool
}

// newStreamChunker creates a chunker for the given reader.
func newStreamChunker(r io.Reader) *streamChunker {
	scanner := bufio.NewScanner(r)
	// Allow up to 1MB lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &streamChunker{scanner: scanner}
}

// addParagraphToChunk adds a completed paragraph to the current chunk.
// Returns true if chunk was processed (became full).
func (c *streamChunker) addParagraphToChunk(para string, processChunk func(string) error) (bool, error) {
	if len(para) == 0 {
		return false, nil
	}

	// Check if adding this paragraph would exceed chunk size
	if c.currentChunk.Len()+len(para)+2 > DefaultChunkSize && c.currentChunk.Len() > 0 {
		if err := processChunk(c.currentChunk.String()); err != nil {
			return false, err
		}

		// Start new chunk with overlap
		overlap := getOverlapText(c.currentChunk.String(), DefaultChunkOverlap)
		c.currentChunk.Reset()
		c.currentChunk.WriteString(overlap)

		// Add the paragraph that triggered the overflow to the new chunk
		if c.currentChunk.Len() > 0 {
			c.currentChunk.WriteString("\n\n")
		}
		c.currentChunk.WriteString(para)
		return true, nil
	}

	if c.currentChunk.Len() > 0 {
		c.currentChunk.WriteString("\n\n")
	}
	c.currentChunk.WriteString(para)
	return false, nil
}

// processLine handles a single line, accumulating paragraphs.
func (c *streamChunker) processLine(line string, processChunk func(string) error) error {
	if strings.TrimSpace(line) == "" {
		// Empty line marks paragraph boundary
		if c.inParagraph && c.lastParagraph.Len() > 0 {
			para := c.lastParagraph.String()
			if _, err := c.addParagraphToChunk(para, processChunk); err != nil {
				return err
			}
			c.lastParagraph.Reset()
			c.inParagraph = false
		}
		return nil
	}

	// Non-empty line: add to current paragraph
	if c.inParagraph {
		c.lastParagraph.WriteString("\n")
	}
	c.lastParagraph.WriteString(line)
	c.inParagraph = true
	return nil
}

// flush processes any remaining content.
func (c *streamChunker) flush(processChunk func(string) error) error {
	// Handle any remaining paragraph
	if c.lastParagraph.Len() > 0 {
		para := c.lastParagraph.String()
		if _, err := c.addParagraphToChunk(para, processChunk); err != nil {
			return err
		}
	}

	// Process the final chunk
	if c.currentChunk.Len() > 0 {
		return processChunk(c.currentChunk.String())
	}
	return nil
}

// ExtractFromReader extracts events by streaming from an io.Reader.
// This keeps memory at O(chunk_size) for large files.
func (s *ExtractionService) ExtractFromReader(ctx context.Context, r io.Reader, tl *entities.Timeline, sourceFile string, opts ExtractionOptions) (*ExtractionResult, error) {
	eras := chrono.EraNames(chrono.ParseEraConfig(tl.Eras))
	chunker := newStreamChunker(r)
	collector := newEventCollector(tl, sourceFile)

	processChunk := func(chunkText string) error {
		extracted, err := s.llm.ExtractEvents(ctx, chunkText, eras)
		if err != nil {
			return fmt.Errorf("extracting events: %w", err)
		}
		collector.add(extracted)
		return nil
	}

	for chunker.scanner.Scan() {
		if err := chunker.processLine(chunker.scanner.Text(), processChunk); err != nil {
			return nil, err
		}
	}

	if err := chunker.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if err := chunker.flush(processChunk); err != nil {
		return nil, err
	}

	return s.finalizeEvents(ctx, collector, opts)
}

// eventCollector turns model output into timeline events, dropping the
// duplicates that chunk overlap produces.
type eventCollector struct {
	timeline   *entities.Timeline
	sourceFile string
	events     []entities.TimelineEvent
	seen       map[string]bool
	characters []string
	seenNames  map[string]bool
}

func newEventCollector(tl *entities.Timeline, sourceFile string) *eventCollector {
	return &eventCollector{
		timeline:   tl,
		sourceFile: sourceFile,
		seen:       make(map[string]bool),
		seenNames:  make(map[string]bool),
	}
}

func (c *eventCollector) add(extracted []ports.ExtractedEvent) {
	for i := range extracted {
		x := &extracted[i]
		title := strings.TrimSpace(x.Title)
		if title == "" {
			continue
		}

		date := chrono.ParseEventDate(x.Date)
		dedupKey := strings.ToLower(title) + "|" + chrono.FormatEventDate(date)
		if c.seen[dedupKey] {
			continue
		}
		c.seen[dedupKey] = true

		c.events = append(c.events, entities.TimelineEvent{
			ID:          uuid.New().String(),
			TimelineID:  c.timeline.ID,
			Title:       title,
			Description: strings.TrimSpace(x.Description),
			Date:        date,
			SourceFile:  c.sourceFile,
			CreatedAt:   time.Now(),
		})

		for _, name := range x.Characters {
			normalized := entities.NormalizeName(name)
			if normalized == "" || c.seenNames[normalized] {
				continue
			}
			c.seenNames[normalized] = true
			c.characters = append(c.characters, strings.TrimSpace(name))
		}
	}
}

// finalizeEvents filters, saves, embeds and indexes collected events.
func (s *ExtractionService) finalizeEvents(ctx context.Context, c *eventCollector, opts ExtractionOptions) (*ExtractionResult, error) {
	result := &ExtractionResult{Characters: c.characters}

	events := make([]entities.TimelineEvent, 0, len(c.events))
	for i := range c.events {
		if !c.events[i].Date.IsResolved() {
			result.Undated++
			if opts.SkipUndated {
				continue
			}
		}
		events = append(events, c.events[i])
	}

	s.logger.Debug("events extracted",
		zap.String("timeline", c.timeline.Name),
		zap.String("source", c.sourceFile),
		zap.Int("events", len(events)),
		zap.Int("undated", result.Undated))

	result.Events = events
	if len(events) == 0 || opts.DryRun {
		return result, nil
	}

	for i := range events {
		if err := s.relationalDB.SaveEvent(ctx, &events[i]); err != nil {
			return nil, fmt.Errorf("saving event: %w", err)
		}
	}

	if s.embedder == nil || s.vectorDB == nil {
		return result, nil
	}

	texts := make([]string, len(events))
	for i := range events {
		texts[i] = eventToText(&events[i])
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("generating embeddings: %w", err)
	}

	for i := range events {
		events[i].Embedding = embeddings[i]
	}

	if err := s.vectorDB.SaveBatch(ctx, events); err != nil {
		return nil, fmt.Errorf("indexing events: %w", err)
	}

	return result, nil
}

// ChunkText splits text into chunks with overlap.
func ChunkText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")

	var currentChunk strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if currentChunk.Len()+len(para)+2 > chunkSize && currentChunk.Len() > 0 {
			chunks = append(chunks, currentChunk.String())

			overlapText := getOverlapText(currentChunk.String(), overlap)
			currentChunk.Reset()
			currentChunk.WriteString(overlapText)
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString("\n\n")
		}
		currentChunk.WriteString(para)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	if len(chunks) == 0 && len(text) > 0 {
		chunks = append(chunks, text)
	}

	return chunks
}

// getOverlapText returns the last n characters of text for overlap.
func getOverlapText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}
