package main

import (
	"context"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/async"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/utils/cmd"
)

const AppName = "worker"

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	worker, err := async.New(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to create the worker")
	}

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting database connection")
	}

	metrics, err := manager.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating metrics")
	}

	tm := manager.NewTenantManager(sql.NewRepository(dbCon), cfg.Tenancy, manager.WithMetrics(metrics))

	// RunWorker blocks until asynq receives SIGTERM or SIGINT
	err = worker.RunWorker(ctx, tm)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to start the worker")
	}

	err = worker.Shutdown(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "%s", async.ErrClientShutdown.Error())
	}

	log.Info(ctx, "shutting down worker")

	return nil
}

func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{Env: "TASK_WORKER"})
	os.Exit(exitCode)
}
