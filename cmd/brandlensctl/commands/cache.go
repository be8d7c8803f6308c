package commands

import (
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens/internal/analytics"
	"github.com/brandlens/brandlens/internal/platform/cache"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the analytics cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "bump",
		Short: "Invalidate every cached analytics result",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			client, err := cache.New(cmd.Context(), s.RedisAddr)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ver, err := analytics.NewCache(client, 0).Bump(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("cache version %d\n", ver)
			return nil
		},
	})
	return cmd
}
