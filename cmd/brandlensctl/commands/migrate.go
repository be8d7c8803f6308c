package commands

import (
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens/internal/platform/db"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if err := db.MigrateUp(cmd.Context(), s.PGDSN); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied migration versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			return db.MigrationStatus(cmd.Context(), s.PGDSN, cmd.OutOrStdout())
		},
	})
	return cmd
}
