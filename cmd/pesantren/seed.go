package main

import (
	"github.com/spf13/cobra"

	"pesantren/internal/database"
)

var seedSections string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the first admin, default settings and default sections",
	Long: `Seeds an empty database. Existing rows are never modified, so the
command is safe to run repeatedly. --sections replaces the embedded
default sections file with a YAML file of the same shape.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		db, err := database.Connect(cmd.Context(), cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		return database.Seed(db, database.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			SectionsFile:  seedSections,
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedSections, "sections", "", "YAML file with settings and sections to seed")
	rootCmd.AddCommand(seedCmd)
}
