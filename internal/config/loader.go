package config

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"

	"github.com/openkcm/tenancy/internal/constants"
)

//nolint:mnd
var defaultConfig = map[string]any{
	"Tenancy": map[string]any{
		"ReservedSubdomain":    "www",
		"DefaultPageSize":      constants.DefaultPageSize,
		"MaxPageSize":          constants.MaxPageSize,
		"IDGenerationAttempts": 5,
	},
	"Database": map[string]any{
		"Migrator": map[string]any{
			"Shared": map[string]string{"Schema": "migrations/shared/schema", "Data": "migrations/shared/data"},
			"Tenant": map[string]string{"Schema": "migrations/tenant/schema", "Data": "migrations/tenant/data"},
		},
	},
}

func LoadConfig(opts ...commoncfg.Option) (*Config, error) {
	cfg := &Config{}

	// Options passed by the caller come last so they override the defaults
	options := make([]commoncfg.Option, 0, 2+len(opts))
	options = append(options,
		commoncfg.WithDefaults(defaultConfig),
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
	)

	options = append(options, opts...)

	loader := commoncfg.NewLoader(
		cfg,
		options...,
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to load config")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}
