package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/domain/entities"
)

type historyFlags struct {
	subject string
	action  string
	limit   int
}

func newHistoryCmd() *cobra.Command {
	var flags historyFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log",
		Long:  "Shows recorded changes to timelines, events and characters, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (flags.subject == "") == (flags.action == "") {
				return errors.New("use exactly one of --subject or --action")
			}

			ctx := cmd.Context()
			return withInternalDeps(func(d *internalDeps) error {
				var (
					entries []entities.AuditEntry
					err     error
				)
				if flags.subject != "" {
					entries, err = d.relationalDB.FindAuditLog(ctx, flags.subject)
				} else {
					entries, err = d.relationalDB.FindAuditLogByAction(ctx, flags.action, flags.limit)
				}
				if err != nil {
					return fmt.Errorf("reading audit log: %w", err)
				}
				return printHistory(cmd.OutOrStdout(), entries)
			})
		},
	}

	cmd.Flags().StringVar(&flags.subject, "subject", "", "ID of a timeline, event or character")
	cmd.Flags().StringVar(&flags.action, "action", "", "Action, e.g. event_added or eras_updated")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultHistoryLimit, "Maximum entries for --action")

	return cmd
}

func printHistory(w io.Writer, entries []entities.AuditEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No history.")
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %-18s %s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Action, e.SubjectID, formatDetails(e.Details)); err != nil {
			return err
		}
	}
	return nil
}

// formatDetails renders details as key=value pairs sorted by key.
func formatDetails(details map[string]any) string {
	parts := make([]string, 0, len(details))
	for _, k := range slices.Sorted(maps.Keys(details)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
