package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	// goose opens postgres connections through the pgx stdlib driver
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db/dsn"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

type (
	MigrationType   string
	MigrationTarget string
	migrateFunc     func(ctx context.Context, db *sql.DB, dir string) error
)

const (
	DataMigrationTable                   = "goose_db_data_version"
	SchemaMigrationTable                 = "goose_db_schema_version"
	SharedSchema                         = "public"
	SchemaMigration      MigrationType   = "schema"
	DataMigration        MigrationType   = "data"
	SharedTarget         MigrationTarget = "shared"
	TenantTarget         MigrationTarget = "tenant"
	AllTarget            MigrationTarget = "all"
)

var ErrUnsupportedMigration = errors.New("unsupported migration")

type migrator struct {
	r   repo.Repo
	dsn string
	cfg *config.Config
}

type Migration struct {
	Downgrade bool
	Type      MigrationType
	Target    MigrationTarget
}

type Migrator interface {
	MigrateTenantToLatest(ctx context.Context, tenant *model.Tenant) error
	MigrateToLatest(ctx context.Context, migration Migration) error
	MigrateTo(ctx context.Context, migration Migration, version int64) error
}

func NewMigrator(r repo.Repo, cfg *config.Config) (Migrator, error) {
	dsn, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &migrator{
		r:   r,
		dsn: dsn,
		cfg: cfg,
	}, nil
}

// MigrateToLatest runs migrations onto the latest version
// For migrations with Downgrade false, it runs all migrations up to and including the latest version
// For migrations with Downgrade true, it downgrades the latest version
func (m *migrator) MigrateToLatest(
	ctx context.Context,
	migration Migration,
) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownContext(ctx, db, dir)
		}

		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo runs migrations up-to a specific version
// For migrations with Downgrade false, it migrates up to the specified version
// For migrations with Downgrade true, it downgrades until the DB is the specified version
func (m *migrator) MigrateTo(
	ctx context.Context,
	migration Migration,
	version int64,
) error {
	return m.migrate(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}

		return goose.UpToContext(ctx, db, dir, version)
	})
}

// MigrateTenantToLatest brings a single namespace up to date: namespace
// models first, then the tenant schema migrations.
func (m *migrator) MigrateTenantToLatest(ctx context.Context, tenant *model.Tenant) error {
	mig := Migration{
		Type:   SchemaMigration,
		Target: TenantTarget,
	}

	return m.migrateTenant(ctx, mig, tenant, goose.UpContext)
}

func (m *migrator) migrate(
	ctx context.Context,
	migration Migration,
	f migrateFunc,
) error {
	switch migration.Target {
	case SharedTarget:
		return m.runMigration(ctx, migration, SharedSchema, f)
	case TenantTarget:
		return m.migrateTenants(ctx, migration, f)
	case AllTarget:
		mig := migration
		mig.Target = SharedTarget

		err := m.runMigration(ctx, mig, SharedSchema, f)
		if err != nil {
			return err
		}

		mig.Target = TenantTarget

		return m.migrateTenants(ctx, mig, f)
	default:
		return ErrUnsupportedMigration
	}
}

// migrateTenants walks every registered tenant, including inactive ones
// whose namespace still exists.
func (m *migrator) migrateTenants(
	ctx context.Context,
	migration Migration,
	f migrateFunc,
) error {
	query := repo.NewQuery().Order(repo.OrderField{Field: repo.IDField, Direction: repo.Asc})

	return repo.ProcessInBatch(ctx, m.r, query, repo.DefaultLimit, func(tenants []*model.Tenant) error {
		for _, t := range tenants {
			err := m.migrateTenant(ctx, migration, t, f)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (m *migrator) migrateTenant(
	ctx context.Context,
	migration Migration,
	t *model.Tenant,
	f migrateFunc,
) error {
	err := model.ValidateSchemaName(t.SchemaName)
	if err != nil {
		return err
	}

	ctx = model.LogInjectTenant(ctx, t)

	// goose migrations run on top of the model tables
	if !migration.Downgrade && migration.Type == SchemaMigration {
		err = m.r.MigrateNamespace(ctx, t.SchemaName)
		if err != nil {
			return err
		}
	}

	log.Debug(ctx, "Running tenant migration")

	return m.runMigration(ctx, migration, t.SchemaName, f)
}

func (m *migrator) runMigration(
	ctx context.Context,
	migration Migration,
	schema string,
	f migrateFunc,
) error {
	dbCon, err := m.newSchemaDBCon(migration, schema)
	if err != nil {
		return err
	}
	defer dbCon.Close()

	dir, err := m.getMigrationDir(migration)
	if err != nil {
		return err
	}

	return f(ctx, dbCon, dir)
}

func (m *migrator) newSchemaDBCon(
	migration Migration,
	schema string,
) (*sql.DB, error) {
	schema = QuoteSchema(schema)

	var table string

	switch migration.Type {
	case DataMigration:
		table = fmt.Sprintf("%s.%s", schema, DataMigrationTable)
	case SchemaMigration:
		table = fmt.Sprintf("%s.%s", schema, SchemaMigrationTable)
	default:
		return nil, ErrUnsupportedMigration
	}

	dsn := fmt.Sprintf("%s search_path=%s", m.dsn, schema)

	db, err := goose.OpenDBWithDriver(string(goose.DialectPostgres), dsn)
	if err != nil {
		return nil, err
	}

	goose.SetTableName(table)

	return db, nil
}

func QuoteSchema(schema string) string {
	return fmt.Sprintf("\"%s\"", schema)
}

func (m *migrator) getMigrationDir(mig Migration) (string, error) {
	dirs := m.cfg.Database.Migrator

	switch {
	case mig.Type == SchemaMigration && mig.Target == SharedTarget:
		return dirs.Shared.Schema, nil
	case mig.Type == SchemaMigration && mig.Target == TenantTarget:
		return dirs.Tenant.Schema, nil
	case mig.Type == DataMigration && mig.Target == SharedTarget:
		return dirs.Shared.Data, nil
	case mig.Type == DataMigration && mig.Target == TenantTarget:
		return dirs.Tenant.Data, nil
	default:
		return "", ErrUnsupportedMigration
	}
}
