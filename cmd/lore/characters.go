package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-timeline/internal/application/handlers"
	"github.com/ersonp/lore-timeline/internal/domain/chrono"
	"github.com/ersonp/lore-timeline/internal/domain/entities"
	"github.com/ersonp/lore-timeline/internal/domain/services"
)

func newCharactersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"character"},
		Short:   "Manage characters and compute their ages",
	}

	cmd.AddCommand(
		newCharactersAddCmd(),
		newCharactersListCmd(),
		newCharactersSetBornCmd(),
		newCharactersDeleteCmd(),
		newCharactersAgeCmd(),
	)

	return cmd
}

func newCharactersAddCmd() *cobra.Command {
	var born, timeline string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				c, err := d.CharacterHandler.HandleCreate(ctx, d.World, args[0], born, timeline)
				if err != nil {
					return err
				}
				fmt.Printf("Added character %q\n", c.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&born, "born", "", "Birth date, e.g. \"BE 5-01-01\"")
	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "Timeline whose eras the birth date uses")

	return cmd
}

func newCharactersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				characters, err := d.CharacterHandler.HandleList(ctx, d.World)
				if err != nil {
					return err
				}
				return printCharacters(cmd.OutOrStdout(), characters)
			})
		},
	}
}

func newCharactersSetBornCmd() *cobra.Command {
	var timeline string

	cmd := &cobra.Command{
		Use:   "set-born NAME DATE",
		Short: "Set a character's birth date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				c, err := d.CharacterHandler.HandleSetBirthDate(ctx, d.World, args[0], args[1], timeline)
				if err != nil {
					return err
				}
				fmt.Printf("%s was born %s\n", c.Name, c.BirthDate)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "Timeline whose eras the birth date uses")

	return cmd
}

func newCharactersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if err := d.CharacterHandler.HandleDelete(ctx, d.World, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted character %q\n", args[0])
				return nil
			})
		},
	}
}

func newCharactersAgeCmd() *cobra.Command {
	var opts handlers.AgeOptions

	cmd := &cobra.Command{
		Use:   "age NAME",
		Short: "Compute a character's age at a date or event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				result, err := d.CharacterHandler.HandleAge(ctx, d.World, args[0], opts)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), describeAge(result))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "Date to compute the age at, e.g. \"SE 3\"")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "Event whose date to compute the age at")
	cmd.Flags().StringVarP(&opts.Timeline, "timeline", "t", "", "Timeline for --at (default: the character's)")
	cmd.MarkFlagsMutuallyExclusive("at", "event")

	return cmd
}

func printCharacters(w io.Writer, characters []*entities.Character) error {
	if len(characters) == 0 {
		_, err := fmt.Fprintln(w, "No characters.")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-24s %s\n", "NAME", "BORN"); err != nil {
		return err
	}
	for _, c := range characters {
		born := c.BirthDate
		if born == "" {
			born = "-"
		}
		if _, err := fmt.Fprintf(w, "%-24s %s\n", c.Name, born); err != nil {
			return err
		}
	}
	return nil
}

// describeAge renders an age result as one line of text.
func describeAge(r *services.AgeResult) string {
	at := chrono.FormatEventDate(r.At)
	name := r.Character.Name

	if r.Known {
		s := fmt.Sprintf("%s is %d at %s", name, r.Years, at)
		if r.Partial {
			s += " (at least; some era lengths are unknown)"
		}
		return s
	}

	switch r.Reason {
	case chrono.ReasonNotExact:
		return fmt.Sprintf("Age of %s unknown: %s is not an exact date", name, at)
	case chrono.ReasonNotYetBorn:
		return fmt.Sprintf("%s is not yet born at %s", name, at)
	case chrono.ReasonConfigurationGap:
		return fmt.Sprintf("Age of %s unknown: the eras between birth and %s are not configured", name, at)
	case chrono.ReasonImpossibleOrdering:
		return fmt.Sprintf("Age of %s unknown: birth era comes after the era of %s", name, at)
	case chrono.ReasonParseFailure:
		return fmt.Sprintf("Age of %s unknown: birth date %q cannot be read", name, r.Character.BirthDate)
	default:
		return fmt.Sprintf("Age of %s unknown at %s", name, at)
	}
}
