package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hcissey0/lecture-notes-app/internal/db"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
)

type notesQuery func(ctx context.Context, notes repository.NoteRepository, args []string) ([]*model.Note, error)

func NotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Inspect the note catalog",
	}

	var (
		limit     int
		orderBy   string
		ascending bool
		course    string
		lecturer  string
	)
	list := notesCommand("list", "List notes, newest first by default", cobra.NoArgs,
		func(ctx context.Context, notes repository.NoteRepository, _ []string) ([]*model.Note, error) {
			switch {
			case course != "":
				return notes.ByCourse(ctx, course)
			case lecturer != "":
				return notes.ByLecturer(ctx, lecturer)
			}
			return notes.List(ctx, repository.ListOptions{OrderBy: orderBy, Ascending: ascending, Limit: limit})
		})
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of notes (0 for all)")
	list.Flags().StringVar(&orderBy, "order", "created_at", "sort column")
	list.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	list.Flags().StringVar(&course, "course", "", "only notes for this course code")
	list.Flags().StringVar(&lecturer, "lecturer", "", "only notes by this lecturer")
	list.MarkFlagsMutuallyExclusive("course", "lecturer")

	search := notesCommand("search <query>", "Search titles, courses, lecturers and descriptions", cobra.ExactArgs(1),
		func(ctx context.Context, notes repository.NoteRepository, args []string) ([]*model.Note, error) {
			return notes.Search(ctx, args[0])
		})

	var top int
	popular := notesCommand("popular", "List the most downloaded notes", cobra.NoArgs,
		func(ctx context.Context, notes repository.NoteRepository, _ []string) ([]*model.Note, error) {
			return notes.Popular(ctx, top)
		})
	popular.Flags().IntVar(&top, "limit", 10, "number of notes")

	cmd.AddCommand(list, search, popular, facetsCmd())
	return cmd
}

func facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the distinct courses and lecturers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			notes := repository.NewNoteRepository(database)
			courses, err := notes.Courses(cmd.Context())
			if err != nil {
				return err
			}
			lecturers, err := notes.Lecturers(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string][]string{
				"courses":   courses,
				"lecturers": lecturers,
			})
		},
	}
}

func notesCommand(use, short string, args cobra.PositionalArgs, query notesQuery) *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			notes, err := query(cmd.Context(), repository.NewNoteRepository(database), args)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			return printNotes(cmd.OutOrStdout(), notes)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return c
}

func printNotes(w io.Writer, notes []*model.Note) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOURSE\tLECTURER\tUPLOADER\tVIEWS\tDOWNLOADS\tCREATED")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			n.ID, n.Title, n.Course, n.Lecturer, n.UploaderName,
			n.ViewCount, n.DownloadCount, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
