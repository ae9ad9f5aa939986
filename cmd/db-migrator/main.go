package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/utils/cmd"
)

const (
	defaultGracefulShutdown = 1
	targetOptions           = "shared, all, or tenant"
	typeOptions             = "data or schema"
)

var (
	gracefulShutdownSec     = flag.Int64("graceful-shutdown", defaultGracefulShutdown, "graceful shutdown seconds")
	gracefulShutdownMessage = flag.String(
		"graceful-shutdown-message",
		"Graceful shutdown in %d seconds",
		"graceful shutdown message",
	)
	version       = flag.Int64("version", 0, "run migration until targeted version")
	rollback      = flag.Bool("r", false, "run down migrations (rollback)")
	target        = flag.String("target", string(db.AllTarget), "migration target ("+targetOptions+")")
	migrationType = flag.String("type", string(db.SchemaMigration), "migration type ("+typeOptions+")")
)

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting database connection")
	}

	m, err := db.NewMigrator(sql.NewRepository(dbCon), cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating migrator")
	}

	return migrate(ctx, m, db.Migration{
		Downgrade: *rollback,
		Type:      db.MigrationType(*migrationType),
		Target:    db.MigrationTarget(*target),
	}, *version)
}

func migrate(ctx context.Context, m db.Migrator, req db.Migration, version int64) error {
	log.Info(ctx, "Running migrations",
		slog.String("target", string(req.Target)),
		slog.String("type", string(req.Type)),
		slog.Bool("downgrade", req.Downgrade),
		slog.Int64("version", version),
	)

	if version != 0 {
		return m.MigrateTo(ctx, req, version)
	}

	return m.MigrateToLatest(ctx, req)
}

// main is the entry point for the application. It is intentionally kept small
// because it is hard to test, which would lower test coverage.
func main() {
	flag.Parse()

	exitCode := cmd.RunFuncWithSignalHandling(run, cmd.RunFlags{
		GracefulShutdownSec:     *gracefulShutdownSec,
		GracefulShutdownMessage: *gracefulShutdownMessage,
		Env:                     "DB_MIGRATOR",
	})
	os.Exit(exitCode)
}
