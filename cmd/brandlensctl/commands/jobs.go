package commands

import (
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens/jobs"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}
	cmd.AddCommand(jobsTriggerCmd(), jobsStatsCmd(), jobsListCmd())
	return cmd
}

func jobsTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <name>",
		Short: "Enqueue a job with its default payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := jobs.NewTaskByName(args[0])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(jobs.TaskNames(), ", "))
			}
			s, err := loadSettings()
			if err != nil {
				return err
			}
			client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: s.RedisAddr})
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			info, err := client.Enqueue(cmd.Context(), task, asynq.MaxRetry(3))
			if err != nil {
				return err
			}
			cmd.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
}

func jobsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue depth for the default queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.RedisAddr})
			defer func() { _ = inspector.Close() }()

			stats, err := jobs.InspectQueue(inspector)
			if err != nil {
				return err
			}
			cmd.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return nil
		},
	}
}

func jobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs that can be triggered",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range jobs.TaskNames() {
				cmd.Println(name)
			}
			return nil
		},
	}
}
