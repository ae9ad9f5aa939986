package main

import (
	"context"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/tenant-manager/cli"
	"github.com/openkcm/tenancy/utils/cmd"
)

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to initialise db connection")
	}

	r := sql.NewRepository(dbCon)

	migrator, err := db.NewMigrator(r, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to create migrator")
	}

	metrics, err := manager.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to create metrics")
	}

	tm := manager.NewTenantManager(r, cfg.Tenancy, manager.WithMetrics(metrics))

	err = cli.NewCommandFactory(tm, migrator).SetupCommands(ctx).ExecuteContext(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "error executing command")
	}

	return nil
}

func main() {
	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{Env: "TENANT_MANAGER_CLI"})
	os.Exit(exitCode)
}
