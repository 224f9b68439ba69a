package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/domain/services"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-timeline/internal/infrastructure/embedder/openai"
	llm "github.com/ersonp/lore-timeline/internal/infrastructure/llm/openai"
	"github.com/ersonp/lore-timeline/internal/infrastructure/logging"
	"github.com/ersonp/lore-timeline/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/lore-timeline/internal/infrastructure/vectordb/qdrant"
)

// errNoLLM is returned by commands that extract events when no LLM is configured.
var errNoLLM = errors.New("an LLM API key is required for extraction (set OPENAI_API_KEY or llm.api_key)")

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config           *config.Config
	Logger           *zap.Logger
	World            string
	TimelineHandler  *handlers.TimelineHandler
	CharacterHandler *handlers.CharacterHandler
	QueryHandler     *handlers.QueryHandler
	ImportHandler    *handlers.ImportHandler
	// IngestHandler is nil when no LLM is configured.
	IngestHandler *handlers.IngestHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
}

// requireIngest returns the ingest handler or errNoLLM.
func (d *Deps) requireIngest() (*handlers.IngestHandler, error) {
	if d.IngestHandler == nil {
		return nil, errNoLLM
	}
	return d.IngestHandler, nil
}

// withDeps loads config and builds dependencies for the selected world, then
// calls the provided function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// Used by commands that need direct repository access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log, globalVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	worlds, err := config.LoadWorlds(cwd)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	if globalWorld == "" {
		return errors.New("world is required (use --world flag)")
	}

	world, err := worlds.Get(globalWorld)
	if err != nil {
		return err
	}
	collection := world.Collection

	sqlitePath := config.SQLitePathForWorld(cwd, globalWorld)
	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: sqlitePath})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	d := &internalDeps{relationalDB: relationalDB}

	// Without an embedder, events are stored but not indexed for search.
	var (
		emb      ports.Embedder
		vectorDB ports.VectorDB
	)
	openaiEmbedder, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		logger.Debug("semantic index disabled", zap.Error(err))
	} else {
		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = collection

		repo, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()

		if err := ensureIndex(repo); err != nil {
			logger.Warn("vector store unavailable, events will not be indexed",
				zap.String("collection", collection),
				zap.Error(err))
		} else {
			emb = openaiEmbedder
			vectorDB = repo
		}
	}

	timelineService := services.NewTimelineService(relationalDB, emb, vectorDB, logger)
	characterService := services.NewCharacterService(relationalDB, timelineService, logger)
	queryService := services.NewQueryService(emb, vectorDB, relationalDB)
	importService := services.NewImportService(relationalDB, emb, vectorDB, logger)

	d.Deps = Deps{
		Config:           cfg,
		Logger:           logger,
		World:            globalWorld,
		TimelineHandler:  handlers.NewTimelineHandler(timelineService, world.ErasOr(cfg.Timeline.DefaultEras)),
		CharacterHandler: handlers.NewCharacterHandler(characterService),
		QueryHandler:     handlers.NewQueryHandler(queryService, timelineService),
		ImportHandler:    handlers.NewImportHandler(importService, timelineService),
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		logger.Debug("extraction disabled", zap.Error(err))
	} else {
		extractionService := services.NewExtractionService(llmClient, emb, vectorDB, relationalDB, logger)
		d.IngestHandler = handlers.NewIngestHandler(extractionService, timelineService)
	}

	return fn(d)
}

// ensureIndex makes sure the world's collection exists. Worlds created
// without an embedder have none yet.
func ensureIndex(cm ports.CollectionManager) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexProbeTimeout)
	defer cancel()
	return cm.EnsureCollection(ctx, embedder.VectorSize)
}
