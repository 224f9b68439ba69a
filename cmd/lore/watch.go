package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

type watchFlags struct {
	timeline   string
	sourceFile string
	autoSave   bool
}

func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive event extraction onto a timeline",
		Long: `Enter prose interactively. Each paragraph is sent to the LLM and the dated
events found are queued, in chronological order, until saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.timeline, "timeline", "t", "", "Timeline receiving the events (required)")
	cmd.Flags().StringVarP(&flags.sourceFile, "source", "s", "interactive", "Source name for events")
	cmd.Flags().BoolVar(&flags.autoSave, "save", false, "Auto-save events that raise no warnings")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}

// extractFunc extracts events from text without saving them.
type extractFunc func(ctx context.Context, text string) (*handlers.IngestResult, error)

// saveFunc stores events on the session's timeline.
type saveFunc func(ctx context.Context, events []entities.TimelineEvent) (int, error)

type watchState struct {
	pending  []entities.TimelineEvent
	eraOrder []string
	extract  extractFunc
	save     saveFunc
	autoSave bool
	in       *bufio.Scanner
	out      io.Writer
}

func runWatch(cmd *cobra.Command, flags watchFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		ingest, err := d.requireIngest()
		if err != nil {
			return err
		}

		eras, err := d.TimelineHandler.HandleEras(ctx, d.World, flags.timeline)
		if err != nil {
			return err
		}

		opts := handlers.IngestOptions{Timeline: flags.timeline, DryRun: true}
		state := &watchState{
			eraOrder: chrono.EraNames(eras),
			extract: func(ctx context.Context, text string) (*handlers.IngestResult, error) {
				return ingest.HandleText(ctx, d.World, text, flags.sourceFile, opts)
			},
			save: func(ctx context.Context, events []entities.TimelineEvent) (int, error) {
				return d.TimelineHandler.HandleSaveEvents(ctx, d.World, flags.timeline, events)
			},
			autoSave: flags.autoSave,
			in:       bufio.NewScanner(os.Stdin),
			out:      cmd.OutOrStdout(),
		}

		return state.runInputLoop(ctx)
	})
}

func (s *watchState) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *watchState) runInputLoop(ctx context.Context) error {
	s.printf("Lore interactive mode. Enter text and press Enter twice to extract events.\n")
	s.printf("Commands: 'save' to save pending events, 'discard' to clear, 'list' to show pending, 'quit' to exit\n\n")

	var inputBuffer strings.Builder

	for {
		s.printf("> ")
		if !s.in.Scan() {
			break
		}

		line := s.in.Text()
		input := strings.ToLower(strings.TrimSpace(line))

		if handled, shouldExit := s.handleCommand(ctx, input); handled {
			if shouldExit {
				return nil
			}
			continue
		}

		s.handleInput(ctx, line, &inputBuffer)
	}

	return s.in.Err()
}

// handleCommand processes user commands. Returns (handled, shouldExit).
func (s *watchState) handleCommand(ctx context.Context, input string) (bool, bool) {
	switch input {
	case "quit", "exit":
		return true, s.handleQuit()
	case "save":
		if err := s.savePending(ctx); err != nil {
			s.printf("Error saving events: %v\n", err)
		}
		return true, false
	case "discard":
		s.pending = nil
		s.printf("Pending events discarded.\n")
		return true, false
	case "list":
		s.showPending()
		return true, false
	case "help":
		s.showHelp()
		return true, false
	default:
		return false, false
	}
}

func (s *watchState) handleQuit() bool {
	if len(s.pending) > 0 {
		s.printf("Warning: %d pending events will be lost. Type 'quit' again to confirm.\n", len(s.pending))
		s.printf("> ")
		if s.in.Scan() && strings.ToLower(strings.TrimSpace(s.in.Text())) == "quit" {
			s.printf("Goodbye!\n")
			return true
		}
		return false
	}
	s.printf("Goodbye!\n")
	return true
}

func (s *watchState) showHelp() {
	s.printf("Commands:\n")
	s.printf("  save    - Save all pending events to the timeline\n")
	s.printf("  discard - Discard all pending events\n")
	s.printf("  list    - Show pending events in chronological order\n")
	s.printf("  quit    - Exit interactive mode\n")
	s.printf("  help    - Show this help\n\n")
	s.printf("Enter text and press Enter twice to extract events.\n")
}

// handleInput buffers a line; an empty line sends the buffered paragraph.
func (s *watchState) handleInput(ctx context.Context, line string, inputBuffer *strings.Builder) {
	if strings.TrimSpace(line) != "" {
		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(line)
		return
	}

	text := strings.TrimSpace(inputBuffer.String())
	inputBuffer.Reset()
	if text == "" {
		return
	}

	if err := s.processInput(ctx, text); err != nil {
		s.printf("Error: %v\n", err)
	}
}

func (s *watchState) processInput(ctx context.Context, text string) error {
	s.printf("\nExtracting...\n")

	result, err := s.extract(ctx, text)
	if err != nil {
		return fmt.Errorf("extracting events: %w", err)
	}

	if len(result.Events) == 0 {
		s.printf("No events found in input.\n")
		return nil
	}

	s.printf("Found %d events:\n", len(result.Events))
	warnings := 0
	for i := range result.Events {
		ev := &result.Events[i]
		s.printf("  %d. %-24s %s\n", i+1, chrono.FormatEventDate(ev.Date), ev.Title)
		if w := s.warning(ev); w != "" {
			s.printf("     warning: %s\n", w)
			warnings++
		}
	}

	s.pending = append(s.pending, result.Events...)
	s.printf("\nEvents queued (%d total pending). Use 'save' to save or 'discard' to clear.\n", len(s.pending))

	if s.autoSave && warnings == 0 {
		return s.savePending(ctx)
	}
	return nil
}

// warning describes why an event will not sort reliably, or "".
func (s *watchState) warning(ev *entities.TimelineEvent) string {
	key := chrono.Key(&ev.Date, s.eraOrder)
	switch key.Placement {
	case chrono.PlacementLast:
		return "no usable date; it will sort last"
	case chrono.PlacementUnranked:
		if era := ev.Date.EraLabel(); era != "" {
			return fmt.Sprintf("era %q is not one of this timeline's eras", era)
		}
		return "date has no era"
	default:
		return ""
	}
}

func (s *watchState) savePending(ctx context.Context) error {
	if len(s.pending) == 0 {
		s.printf("No pending events to save.\n")
		return nil
	}

	n, err := s.save(ctx, s.pending)
	s.pending = s.pending[n:]
	if err != nil {
		return err
	}

	s.printf("Saved %d events.\n", n)
	s.pending = nil
	return nil
}

func (s *watchState) showPending() {
	if len(s.pending) == 0 {
		s.printf("No pending events.\n")
		return
	}

	events := make([]*entities.TimelineEvent, len(s.pending))
	for i := range s.pending {
		events[i] = &s.pending[i]
	}

	s.printf("Pending events (%d):\n", len(s.pending))
	for i, oe := range services.OrderEvents(events, s.eraOrder) {
		s.printf("  %d. %s %-24s %s\n", i+1, placementMarker(oe.Key.Placement), chrono.FormatEventDate(oe.Event.Date), oe.Event.Title)
	}
}
