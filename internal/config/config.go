package config

import (
	"errors"
	"strings"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrNonDefinedTaskType       = errors.New("task type is unknown")
	ErrRepeatedTaskType         = errors.New("task type is specified more than once")
	ErrEmptyBaseDomain          = errors.New("tenancy base domain must be specified")
	ErrInvalidPageSize          = errors.New("default page size must be between 1 and max page size")
	ErrInvalidRetention         = errors.New("purge retention must not be negative")
	ErrLoadMTLSConfig           = errors.New("failed to load mTLS config")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database   `yaml:"database"`
	DatabaseReplicas []Database `yaml:"databaseReplicas"`
	Scheduler        Scheduler  `yaml:"scheduler"`
	HTTP             HTTPServer `yaml:"http"`
	Tenancy          Tenancy    `yaml:"tenancy"`
}

func (c *Config) Validate() error {
	err := c.Scheduler.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Tenancy.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	return nil
}

// Tenancy holds the tenant routing and lifecycle settings
type Tenancy struct {
	// BaseDomain is the domain tenant subdomains live under, e.g. example.com
	BaseDomain string `yaml:"baseDomain"`
	// ReservedSubdomain is a placeholder label that never names a tenant
	ReservedSubdomain string `yaml:"reservedSubdomain,omitempty"`

	DefaultPageSize int `yaml:"defaultPageSize,omitempty"`
	MaxPageSize     int `yaml:"maxPageSize,omitempty"`

	// PurgeRetention is how long an inactive tenant keeps its namespace
	// before the purge task drops it. Zero disables purging.
	PurgeRetention time.Duration `yaml:"purgeRetention,omitempty"`

	// IDGenerationAttempts bounds the retries on tenant id collisions
	IDGenerationAttempts uint `yaml:"idGenerationAttempts,omitempty"`
}

func (t *Tenancy) Validate() error {
	if strings.TrimSpace(t.BaseDomain) == "" {
		return ErrEmptyBaseDomain
	}

	if t.DefaultPageSize < 1 || t.DefaultPageSize > t.MaxPageSize {
		return ErrInvalidPageSize
	}

	if t.PurgeRetention < 0 {
		return ErrInvalidRetention
	}

	return nil
}

// Scheduler holds a scheduler config
type Scheduler struct {
	TaskQueue Redis
	Tasks     []Task
}

func (s *Scheduler) Validate() error {
	checkedTasks := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		_, found := DefinedTasks[task.TaskType]
		if !found {
			return ErrNonDefinedTaskType
		}

		_, found = checkedTasks[task.TaskType]
		if found {
			return ErrRepeatedTaskType
		}

		checkedTasks[task.TaskType] = struct{}{}
	}

	return nil
}

// Task holds a task config
type Task struct {
	Cronspec string
	TaskType string
	Retries  int
}

// Redis holds Redis client config
type Redis struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	Port      string              `yaml:"port"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
	ACL       RedisACL            `yaml:"acl"`
}

type RedisACL struct {
	Enabled  bool                `yaml:"enabled"`
	Password commoncfg.SourceRef `yaml:"password"`
	Username commoncfg.SourceRef `yaml:"username"`
}

// Database holds database config
type Database struct {
	Name   string              `yaml:"name"`
	Port   string              `yaml:"port"`
	Host   commoncfg.SourceRef `yaml:"host"`
	User   commoncfg.SourceRef `yaml:"user"`
	Secret commoncfg.SourceRef `yaml:"secret"`

	// MaxOpenConns caps the connection pool, zero keeps the driver default
	MaxOpenConns int      `yaml:"maxOpenConns,omitempty"`
	Migrator     Migrator `yaml:"migrator,omitempty"`
}

// Migrator holds the goose migration directories
type Migrator struct {
	Shared MigrationDirs `yaml:"shared,omitempty"`
	Tenant MigrationDirs `yaml:"tenant,omitempty"`
}

type MigrationDirs struct {
	Schema string `yaml:"schema,omitempty"`
	Data   string `yaml:"data,omitempty"`
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}
