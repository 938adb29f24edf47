package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hcissey0/lecture-notes-app/cmd/notesctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "notesctl",
		Short:        "Operator tools for the lecture notes service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.NotesCmd())
	rootCmd.AddCommand(cmd.StatsCmd())
	rootCmd.AddCommand(cmd.UsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
