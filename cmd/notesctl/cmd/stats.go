package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hcissey0/lecture-notes-app/internal/db"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
)

func StatsCmd() *cobra.Command {
	var (
		userID string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show platform totals, or one user's totals with --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			notes := repository.NewNoteRepository(database)
			out := cmd.OutOrStdout()

			if userID != "" {
				stats, err := notes.UserStats(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, stats)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "notes\t%d\n", stats.TotalNotes)
				fmt.Fprintf(tw, "views\t%d\n", stats.TotalViews)
				fmt.Fprintf(tw, "downloads\t%d\n", stats.TotalDownloads)
				return tw.Flush()
			}

			stats, err := notes.PlatformStats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, stats)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "notes\t%d\n", stats.TotalNotes)
			fmt.Fprintf(tw, "users\t%d\n", stats.TotalUsers)
			fmt.Fprintf(tw, "views\t%d\n", stats.TotalViews)
			fmt.Fprintf(tw, "downloads\t%d\n", stats.TotalDownloads)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "profile id to report on")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
