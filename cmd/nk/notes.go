package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/notekeeper/internal/controller"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

func newNotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "notes", Short: "Manage notes"}
	cmd.AddCommand(
		newNotesListCmd(a),
		newNotesShowCmd(a),
		newNotesAddCmd(a),
		newNotesEditCmd(a),
		newNotesRmCmd(a),
	)
	return cmd
}

func newNotesListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			notes := controller.NewNotes(a.client, a.log)
			if err := notes.Load(ctx); err != nil {
				return fmt.Errorf("%s: %w", notes.Snapshot().Error, err)
			}
			list := notes.Snapshot().Notes
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printNotes(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newNotesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			n, err := a.client.GetNote(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
}

func newNotesAddCmd(a *app) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			notes := controller.NewNotes(a.client, a.log)
			notes.SetTitle(title)
			notes.SetContent(content)
			if err := notes.Submit(ctx); err != nil {
				return submitError(notes, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d\n", notes.Snapshot().Notes[0].ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note content")
	return cmd
}

func newNotesEditCmd(a *app) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note; with the recreate strategy it gets a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			notes := controller.NewNotes(a.client, a.log)
			if err := notes.Load(ctx); err != nil {
				return fmt.Errorf("%s: %w", notes.Snapshot().Error, err)
			}
			target, ok := find(notes.Snapshot().Notes, id)
			if !ok {
				return fmt.Errorf("%w: note %d", errs.ErrNotFound, id)
			}
			notes.StartEdit(target)
			if cmd.Flags().Changed("title") {
				notes.SetTitle(title)
			}
			if cmd.Flags().Changed("content") {
				notes.SetContent(content)
			}
			if err := notes.Submit(ctx); err != nil {
				return submitError(notes, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d -> %d\n", id, notes.Snapshot().Notes[0].ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title (unchanged when omitted)")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content (unchanged when omitted)")
	return cmd
}

func newNotesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			notes := controller.NewNotes(a.client, a.log)
			if err := notes.Delete(ctx, id); err != nil {
				return fmt.Errorf("%s: %w", notes.Snapshot().Error, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}
}

func submitError(notes *controller.Notes, err error) error {
	if msg := notes.Snapshot().Error; msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid note id %q", errs.ErrValidation, s)
	}
	return id, nil
}

func find(notes []model.Note, id int64) (model.Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}

func printNotes(w io.Writer, notes []model.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCONTENT\tCREATED")
	for _, n := range notes {
		created := ""
		if n.CreatedAt != nil {
			created = n.CreatedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, oneLine(n.Title), oneLine(n.Content), created)
	}
	return tw.Flush()
}

// oneLine keeps table rows on a single line and caps long fields.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 40 {
		return string(r[:39]) + "…"
	}
	return s
}
