package commands

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

const (
	pageSize    = 10
	historyDays = 7
)

type Inspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	History(queue string, days int) ([]*asynq.DailyStats, error)
	ListPendingTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListActiveTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListCompletedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
}

type statsView struct {
	flag  string
	usage string
	fetch func(i Inspector, queue string, page int) (any, error)
}

func taskList(
	list func(Inspector, string, ...asynq.ListOption) ([]*asynq.TaskInfo, error),
) func(Inspector, string, int) (any, error) {
	return func(i Inspector, queue string, page int) (any, error) {
		return list(i, queue, asynq.PageSize(pageSize), asynq.Page(page))
	}
}

var statsViews = []statsView{
	{
		flag:  "queue-info",
		usage: "Show queue info",
		fetch: func(i Inspector, queue string, _ int) (any, error) { return i.GetQueueInfo(queue) },
	},
	{
		flag:  "weekly-history",
		usage: "Show weekly history",
		fetch: func(i Inspector, queue string, _ int) (any, error) { return i.History(queue, historyDays) },
	},
	{flag: "pending-tasks", usage: "Show pending tasks", fetch: taskList(Inspector.ListPendingTasks)},
	{flag: "active-tasks", usage: "Show active tasks", fetch: taskList(Inspector.ListActiveTasks)},
	{flag: "complete-tasks", usage: "Show complete tasks", fetch: taskList(Inspector.ListCompletedTasks)},
	{flag: "archived-tasks", usage: "Show archived tasks", fetch: taskList(Inspector.ListArchivedTasks)},
}

// NewStatsCmd prints one view of a queue as JSON. Task listings are
// paginated by pageSize.
func NewStatsCmd(ctx context.Context, asyncInspector Inspector) *cobra.Command {
	var (
		queue string
		page  int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show Asynq task queue statistics",
		Long: "Show Asynq task queue statistics.\n" +
			"Specify the queue name and the type of statistics to display.\n" +
			"Use the --page flag to navigate through task listings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, view := range statsViews {
				selected, _ := cmd.Flags().GetBool(view.flag)
				if !selected {
					continue
				}

				stats, err := view.fetch(asyncInspector, queue, page)
				if err != nil {
					cmd.PrintErrf("Failed to get %s: %v\n", view.flag, err)
					return err
				}

				out, err := json.MarshalIndent(stats, "", "\t")
				if err != nil {
					return err
				}

				cmd.Println(string(out))

				return nil
			}

			return nil
		},
	}

	cmd.SetContext(ctx)
	cmd.Flags().StringVar(&queue, "queue", "", "Queue name")
	cmd.Flags().IntVar(&page, "page", 0, "Page number for paginated results")

	flags := make([]string, 0, len(statsViews))
	for _, view := range statsViews {
		cmd.Flags().Bool(view.flag, false, view.usage)
		flags = append(flags, view.flag)
	}

	cmd.MarkFlagsMutuallyExclusive(flags...)
	cmd.MarkFlagsOneRequired(flags...)

	err := cmd.MarkFlagRequired("queue")
	if err != nil {
		cmd.PrintErrf("failed to mark flag 'queue' as required: %v\n", err)
	}

	return cmd
}
