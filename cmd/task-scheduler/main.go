package main

import (
	"context"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/async"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/utils/cmd"
)

const AppName = "scheduler"

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	scheduler, err := async.New(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to create the scheduler")
	}

	// RunScheduler blocks until asynq receives SIGTERM or SIGINT
	err = scheduler.RunScheduler()
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to start the scheduler job")
	}

	err = scheduler.Shutdown(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to shutdown the scheduler")
	}

	log.Info(ctx, "shutting down scheduler")

	return nil
}

func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{Env: "TASK_SCHEDULER"})
	os.Exit(exitCode)
}
