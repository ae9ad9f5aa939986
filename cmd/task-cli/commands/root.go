package commands

import (
	"context"

	"github.com/spf13/cobra"

	cliUtils "github.com/openkcm/tenancy/utils/cli"
)

func NewRootCmd(ctx context.Context) *cobra.Command {
	return cliUtils.NewRootCmdWithInfinitySleep(
		ctx,
		"task",
		"Async Task CLI",
		"CLI tool to inspect the task queues and invoke the tenancy background tasks.",
	)
}
