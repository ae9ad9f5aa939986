package commands

import (
	"context"

	"github.com/spf13/cobra"
)

func NewQueuesCmd(ctx context.Context, asyncInspector Inspector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queues",
		Short: "List queues",
		Long:  "List the queues known to the task system",
		RunE: func(cmd *cobra.Command, _ []string) error {
			queues, err := asyncInspector.Queues()
			if err != nil {
				cmd.PrintErrf("Failed to list queues: %v\n", err)
				return err
			}

			cmd.Println("List of asynq queues:")

			for _, q := range queues {
				cmd.Printf("- %s\n", q)
			}

			return nil
		},
	}

	cmd.SetContext(ctx)

	return cmd
}
