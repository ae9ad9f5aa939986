package main

import (
	"context"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/cmd/task-cli/commands"
	"github.com/openkcm/tenancy/internal/async"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/utils/cmd"
)

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise the logger")
	}

	asyncApp, err := async.New(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to create the async app")
	}
	defer func() { _ = asyncApp.Shutdown(ctx) }()

	inspector := asyncApp.Inspector()
	defer inspector.Close()

	rootCmd := commands.NewRootCmd(ctx)
	rootCmd.AddCommand(commands.NewStatsCmd(ctx, inspector))
	rootCmd.AddCommand(commands.NewQueuesCmd(ctx, inspector))
	rootCmd.AddCommand(commands.NewInvokeCmd(ctx, asyncApp.Client()))

	err = rootCmd.ExecuteContext(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "error executing command")
	}

	return nil
}

func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{Env: constants.APIName + "_task_cli"})
	os.Exit(exitCode)
}
