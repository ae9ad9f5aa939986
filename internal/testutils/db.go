package testutils

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo/sql"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

var TestDB = config.Database{
	Host: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "localhost",
	},
	User: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "postgres",
	},
	Secret: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "secret",
	},
	Name: "tenancy",
	Port: "5432",
}

type TestDBConfig struct {
	// TenantCount is the number of active tenants with a migrated
	// namespace created up front
	TenantCount int

	// MaxOpenConns caps the pool of the returned connection
	MaxOpenConns int
}

// NewTestDB creates a database dedicated to the calling test in the shared
// postgres container and connects to it with the shared schema migrated.
// It returns the connection, the database config and the ids of the
// tenants created up front.
func NewTestDB(tb testing.TB, cfg TestDBConfig) (*multitenancy.DB, config.Database, []string) {
	tb.Helper()

	dbCfg := config.Database{}
	StartPostgresSQL(tb, &dbCfg)

	admin, err := db.StartDBConnection(tb.Context(), dbCfg, nil)
	require.NoError(tb, err)

	name := processNameForDB(tb.Name())
	require.NoError(tb, admin.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "%s" WITH (FORCE)`, name)).Error)
	require.NoError(tb, admin.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, name)).Error)
	closeDB(admin)

	dbCfg.Name = name
	dbCfg.MaxOpenConns = cfg.MaxOpenConns

	con, err := db.StartDB(tb.Context(), &config.Config{Database: dbCfg})
	require.NoError(tb, err)

	tb.Cleanup(func() {
		closeDB(con)
	})

	tenantIDs := make([]string, 0, cfg.TenantCount)
	for range cfg.TenantCount {
		tenant := NewTenant(func(t *model.Tenant) {
			t.Status = model.TenantStatusActive
		})
		CreateTenantWithNamespace(tb, con, tenant)
		tenantIDs = append(tenantIDs, tenant.ID)
	}

	return con, dbCfg, tenantIDs
}

// CreateTenantWithNamespace inserts the registry row and migrates the
// tenant's namespace.
func CreateTenantWithNamespace(tb testing.TB, con *multitenancy.DB, tenant *model.Tenant) {
	tb.Helper()

	require.NoError(tb, con.WithContext(tb.Context()).Create(tenant).Error)
	require.NoError(tb, sql.NewRepository(con).MigrateNamespace(tb.Context(), tenant.SchemaName))
}

// ScopedContext returns a context bound to the namespace of tenantID.
func ScopedContext(ctx context.Context, tenantID string) context.Context {
	return tenancyctx.BindScope(ctx, tenancyctx.Scope{
		TenantID:   tenantID,
		SchemaName: model.SchemaNameFor(tenantID),
	})
}

// CurrentSchema returns the first schema of the search_path of a pooled
// connection.
func CurrentSchema(tb testing.TB, con *multitenancy.DB) string {
	tb.Helper()

	var schema string
	require.NoError(tb, con.Raw("SELECT current_schema()").Scan(&schema).Error)

	return schema
}

func closeDB(con *multitenancy.DB) {
	sqlDB, err := con.DB.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

const maxPSQLIdentifier = 63

var invalidDBChars = regexp.MustCompile(`[^a-z0-9_]+`)

// tb.Name() returns following format TESTA/SUBTESTB
// Postgres does not support names with "/" character and has max len 63 char
func processNameForDB(n string) string {
	name := strings.ToLower(n)
	name = strings.ReplaceAll(name, "/", "_")
	name = invalidDBChars.ReplaceAllString(name, "")

	if len(name) > maxPSQLIdentifier {
		name = name[:maxPSQLIdentifier]
	}

	return name
}
