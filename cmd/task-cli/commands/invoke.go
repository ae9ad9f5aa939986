package commands

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/async"
	"github.com/openkcm/tenancy/internal/config"
	asyncUtils "github.com/openkcm/tenancy/utils/async"
)

var ErrUnsupportedTask = errors.New("unknown task name or not supported")

func NewInvokeCmd(ctx context.Context, asyncClient async.Client) *cobra.Command {
	var (
		taskName  string
		retention time.Duration
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invoke a scheduled task",
		Long: "Invoke a scheduled task immediately by providing its task name.\n" +
			"The purge task accepts a retention overriding the configured one.\n" +
			"For example: task-cli invoke --task " + config.TypeNamespacePurge + " --retention 24h",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var payload []byte

			switch taskName {
			case config.TypeNamespacePurge:
				if cmd.Flags().Changed("retention") {
					b, err := asyncUtils.NewPurgePayload(retention).ToBytes()
					if err != nil {
						cmd.PrintErrf("Failed to create payload: %v\n", err)
						return err
					}

					payload = b
				}
			case config.TypeTenantMetrics:
			default:
				cmd.PrintErrf("Unknown task name or not supported: %s\n", taskName)
				return ErrUnsupportedTask
			}

			taskInfo, err := asyncClient.Enqueue(asynq.NewTask(taskName, payload))
			if err != nil {
				cmd.PrintErrf("Failed to enqueue task: %v\n", err)
				return err
			}

			cmd.Printf("Task %s enqueued with ID: %s\n", taskName, taskInfo.ID)

			return nil
		},
	}

	cmd.SetContext(ctx)
	cmd.Flags().StringVar(&taskName, "task", "", "Task name to invoke")
	cmd.Flags().DurationVar(&retention, "retention", 0, "Purge retention override")

	err := cmd.MarkFlagRequired("task")
	if err != nil {
		cmd.PrintErrf("failed to mark flag 'task' as required: %v\n", err)
	}

	return cmd
}
