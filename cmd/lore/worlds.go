package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
	"github.com/ersonp/lore-timeline/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/lore-timeline/internal/infrastructure/vectordb/qdrant"
)

func newWorldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "Manage worlds",
		RunE:  runWorldsList,
	}

	cmd.AddCommand(
		newWorldsListCmd(),
		newWorldsCreateCmd(),
		newWorldsDeleteCmd(),
	)

	return cmd
}

func newWorldsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all worlds",
		RunE:  runWorldsList,
	}
}

func runWorldsList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	worlds, err := config.LoadWorlds(cwd)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	return printWorlds(cmd.OutOrStdout(), worlds)
}

// printWorlds writes the world table sorted by name.
func printWorlds(w io.Writer, worlds *config.WorldsConfig) error {
	if len(worlds.Worlds) == 0 {
		_, err := fmt.Fprint(w, "No worlds configured.\nUse 'lore worlds create NAME' to create a world.\n")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-20s %-25s %-30s %s\n", "NAME", "COLLECTION", "ERAS", "DESCRIPTION"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-20s %-25s %-30s %s\n", "----", "----------", "----", "-----------"); err != nil {
		return err
	}
	for _, name := range worlds.Names() {
		world := worlds.Worlds[name]
		eras := strings.Join(chrono.EraNames(chrono.ParseEraConfig(world.DefaultEras)), ", ")
		if eras == "" {
			eras = "-"
		}
		if _, err := fmt.Fprintf(w, "%-20s %-25s %-30s %s\n", name, world.Collection, eras, world.Description); err != nil {
			return err
		}
	}
	return nil
}

func newWorldsCreateCmd() *cobra.Command {
	var opts handlers.WorldOptions

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsCreate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "World description")
	cmd.Flags().StringVarP(&opts.DefaultEras, "eras", "e", "", `Era definition for new timelines, e.g. "BE, SE"`)

	return cmd
}

func runWorldsCreate(cmd *cobra.Command, name string, opts handlers.WorldOptions) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return withCollectionManager(cfg, config.GenerateCollectionName(name), func(cm ports.CollectionManager) error {
		result, err := handlers.NewInitHandler(cm).Handle(ctx, cwd, name, opts)
		if err != nil {
			return err
		}

		if result.Initialized {
			fmt.Printf("Initialized lore in %s\n", config.ConfigDir(cwd))
		}
		fmt.Printf("Created world %q with collection %q\n", name, result.CollectionName)
		return nil
	})
}

func newWorldsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if world contains timelines")

	return cmd
}

func runWorldsDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	worlds, err := config.LoadWorlds(cwd)
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}

	world, err := worlds.Get(name)
	if err != nil {
		return err
	}

	if !force {
		count, err := countTimelines(ctx, config.SQLitePathForWorld(cwd, name), name)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("world %q contains %d timelines, use --force to delete", name, count)
		}
	}

	return withCollectionManager(cfg, world.Collection, func(cm ports.CollectionManager) error {
		if err := handlers.NewInitHandler(cm).HandleDelete(ctx, cwd, name); err != nil {
			return err
		}
		fmt.Printf("Deleted world %q\n", name)
		return nil
	})
}

// withCollectionManager opens the world's vector collection. Without an
// embedder API key no collection is managed and fn receives nil.
func withCollectionManager(cfg *config.Config, collection string, fn func(ports.CollectionManager) error) error {
	if cfg.Embedder.APIKey == "" {
		return fn(nil)
	}

	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = collection

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer repo.Close()

	return fn(repo)
}

// countTimelines returns how many timelines a world's database holds. A
// world whose database was never opened has none.
func countTimelines(ctx context.Context, dbPath, world string) (int, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return 0, nil
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: dbPath})
	if err != nil {
		return 0, fmt.Errorf("opening world database: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	timelines, err := repo.ListTimelines(ctx, world)
	if err != nil {
		return 0, fmt.Errorf("listing timelines: %w", err)
	}
	return len(timelines), nil
}
