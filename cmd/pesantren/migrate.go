package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pesantren/internal/database"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if !migrateStatus {
			return database.Migrate(ctx, db)
		}

		states, err := database.MigrationStatus(ctx, db)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, s := range states {
			state, at := "pending", "-"
			if s.Applied {
				state, at = "applied", s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, state, at, s.Path)
		}
		return tw.Flush()
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print migration status instead of migrating")
	rootCmd.AddCommand(migrateCmd)
}
