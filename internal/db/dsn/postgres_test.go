package dsn_test

import (
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/db/dsn"
)

func embedded(v string) commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: v}
}

func TestFromDBConfig(t *testing.T) {
	t.Run("Should build dsn", func(t *testing.T) {
		res, err := dsn.FromDBConfig(config.Database{
			Name:   "tenancy",
			Port:   "5432",
			Host:   embedded("localhost"),
			User:   embedded("postgres"),
			Secret: embedded("secret"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "host=localhost user=postgres password=secret dbname=tenancy port=5432", res)
	})

	t.Run("Should fail on unknown source", func(t *testing.T) {
		_, err := dsn.FromDBConfig(config.Database{
			Host: commoncfg.SourceRef{Source: "unknown"},
		})
		assert.ErrorIs(t, err, dsn.ErrLoadingDatabaseHost)
	})
}
