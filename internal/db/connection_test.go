package db_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/testutils"
)

var errForced = errors.New("forced error")

type errorPlugin struct{}

func (errorPlugin) Name() string {
	return "errorPlugin"
}

func (errorPlugin) Initialize(_ *gorm.DB) error {
	return errForced
}

func TestStartDBConnectionPlugins(t *testing.T) {
	dbCfg := config.Database{}
	testutils.StartPostgresSQL(t, &dbCfg)

	t.Run("should error on plugin initialisation failure", func(t *testing.T) {
		dbConn, err := db.StartDBConnectionPlugins(
			t.Context(),
			dbCfg,
			[]config.Database{},
			map[string]gorm.Plugin{"error": errorPlugin{}},
		)

		require.ErrorIs(t, err, db.ErrStartingDBCon)
		require.Nil(t, dbConn)
	})

	t.Run("should start db connection with replicas", func(t *testing.T) {
		dbConn, err := db.StartDBConnectionPlugins(
			t.Context(),
			dbCfg,
			[]config.Database{dbCfg},
			map[string]gorm.Plugin{},
		)
		require.NoError(t, err)
		require.NotNil(t, dbConn)
	})

	t.Run("should error start db connection with invalid replicas", func(t *testing.T) {
		dbConn, err := db.StartDBConnectionPlugins(
			t.Context(),
			dbCfg,
			[]config.Database{{}},
			map[string]gorm.Plugin{},
		)
		require.ErrorIs(t, err, db.ErrLoadingReplicaDialectors)
		require.Nil(t, dbConn)
	})
}

func TestStartDBConnection(t *testing.T) {
	dbCfg := config.Database{}
	testutils.StartPostgresSQL(t, &dbCfg)

	t.Run("should start db connection when config is valid", func(t *testing.T) {
		dbCfg := dbCfg
		dbCfg.MaxOpenConns = 3

		dbConn, err := db.StartDBConnection(t.Context(), dbCfg, nil)
		require.NoError(t, err)

		sqlDB, err := dbConn.DB.DB()
		require.NoError(t, err)
		assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("should error on missing host", func(t *testing.T) {
		_, err := db.StartDBConnection(t.Context(), config.Database{}, nil)
		require.ErrorIs(t, err, db.ErrLoadingDsnFromDBConfig)
	})
}

func TestStartDB(t *testing.T) {
	_, dbCfg, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})

	conn, err := db.StartDB(t.Context(), &config.Config{Database: dbCfg})
	require.NoError(t, err)

	assert.True(t, conn.Migrator().HasTable("public.tenants"))
}
