package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/samber/oops"

	root "github.com/openkcm/tenancy"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/daemon"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/db/dsn"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/cmd"
)

var (
	gracefulShutdownSec     = flag.Int64("graceful-shutdown", 1, "graceful shutdown seconds")
	gracefulShutdownMessage = flag.String("graceful-shutdown-message", "Graceful shutdown in %d seconds",
		"graceful shutdown message")
)

const (
	healthStatusTimeoutS  = 5 * time.Second
	postgresDriverName    = "pgx"
	statusMetricsInterval = time.Minute
)

type statusRefresher interface {
	RefreshStatusMetrics(ctx context.Context) (map[model.TenantStatus]int, error)
}

// - Opens the database and brings the shared schema up to date
// - Starts the status server
// - Starts the tenancy API server
func run(ctx context.Context, cfg *config.Config) error {
	err := commoncfg.UpdateConfigVersion(&cfg.BaseConfig, root.BuildVersion)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting database")
	}

	startStatusServer(ctx, cfg)

	s, err := daemon.NewTenancyServer(cfg, dbCon)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating tenancy server")
	}

	if cfg.Telemetry.Metrics.Prometheus.Enabled {
		go monitorTenantStatuses(ctx, s.Manager, statusMetricsInterval)
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting tenancy api server")
	}

	<-ctx.Done()

	err = s.Close(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

// monitorTenantStatuses keeps the tenants-per-status gauge current until
// ctx is done.
func monitorTenantStatuses(ctx context.Context, refresher statusRefresher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "stopping tenant status monitoring")
			return
		case <-ticker.C:
			_, err := refresher.RefreshStatusMetrics(ctx)
			if err != nil {
				log.Error(ctx, "failed to refresh tenant status metrics", err)
			}
		}
	}
}

func startStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions := []health.Option{
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeoutS),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "readiness status changed", slog.String("status", string(state.Status)))
		}),
	}

	dsnFromConfig, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		log.Error(ctx, "Could not load DSN from database config", err)
	} else {
		healthOptions = append(healthOptions,
			health.WithDatabaseChecker(
				postgresDriverName,
				dsnFromConfig,
			),
		)
	}

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Failure on the status server", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
}

// main is the entry point for the application. It is intentionally kept small
// because it is hard to test, which would lower test coverage.
func main() {
	flag.Parse()

	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{
		GracefulShutdownSec:     *gracefulShutdownSec,
		GracefulShutdownMessage: *gracefulShutdownMessage,
		Env:                     constants.APIName,
	})
	os.Exit(exitCode)
}
