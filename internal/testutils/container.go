package testutils

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/openkcm/tenancy/internal/config"
)

const (
	postgresContainer = "testcontainers-tenancy-postgresql-shared"
	redisContainer    = "testcontainers-tenancy-redis-shared"
)

// StartPostgresSQL starts (or reuses) the shared postgres container and
// points cfg at it. An empty cfg is filled from TestDB first.
func StartPostgresSQL(
	tb testing.TB,
	cfg *config.Database,
	opts ...testcontainers.ContainerCustomizer,
) {
	tb.Helper()

	if cfg.Name == "" {
		*cfg = TestDB
	}

	// Do it like this so the user specified override the defaults
	options := append([]testcontainers.ContainerCustomizer{
		postgres.WithDatabase(cfg.Name),
		postgres.WithUsername(cfg.User.Value),
		postgres.WithPassword(cfg.Secret.Value),
		postgres.BasicWaitStrategies(),
		testcontainers.WithStartupCommand(testcontainers.NewRawCommand([]string{
			"postgres",
			"-c", "max_connections=1000",
		})),
		testcontainers.WithReuseByName(postgresContainer),
	}, opts...)

	service, err := postgres.Run(tb.Context(),
		"postgres:16-alpine",
		options...,
	)
	require.NoError(tb, err)

	p, err := service.MappedPort(tb.Context(), nat.Port("5432"))
	require.NoError(tb, err)

	host, err := service.Host(tb.Context())
	require.NoError(tb, err)

	cfg.Port = p.Port()
	cfg.Host = commoncfg.SourceRef{
		Value:  host,
		Source: commoncfg.EmbeddedSourceValue,
	}
}

// StartRedis starts (or reuses) the shared redis container and points cfg
// at it.
func StartRedis(
	tb testing.TB,
	cfg *config.Scheduler,
	opts ...testcontainers.ContainerCustomizer,
) {
	tb.Helper()

	options := append([]testcontainers.ContainerCustomizer{
		testcontainers.WithReuseByName(redisContainer),
	}, opts...)

	service, err := redis.Run(tb.Context(),
		"redis:7",
		options...,
	)
	require.NoError(tb, err)

	port, err := service.MappedPort(tb.Context(), nat.Port("6379"))
	require.NoError(tb, err)

	host, err := service.Host(tb.Context())
	require.NoError(tb, err)

	cfg.TaskQueue.Port = port.Port()
	cfg.TaskQueue.Host = commoncfg.SourceRef{
		Value:  host,
		Source: commoncfg.EmbeddedSourceValue,
	}
}
