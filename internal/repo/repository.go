package repo

import (
	"context"
	"errors"
)

// TransactionFunc is func signature for Transaction.
type TransactionFunc func(context.Context, Repo) error

// Repo defines an interface for Repository operations.
//
// Resources that are not shared run inside the namespace of the tenant
// scope carried by ctx.
type Repo interface {
	Create(ctx context.Context, resource Resource) error
	// CreateIfAbsent inserts resource unless a row with the same
	// conflict columns exists. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, resource Resource, conflictColumns ...string) (bool, error)
	List(ctx context.Context, resource Resource, result any, query Query) (int, error)
	Delete(ctx context.Context, resource Resource, query Query) (bool, error)
	First(ctx context.Context, resource Resource, query Query) (bool, error)
	Patch(ctx context.Context, resource Resource, query Query) (bool, error)
	Set(ctx context.Context, resource Resource) error
	Transaction(ctx context.Context, txFunc TransactionFunc) error

	// MigrateNamespace creates the namespace if needed and brings every
	// namespace model up to date in it.
	MigrateNamespace(ctx context.Context, schemaName string) error
	// DropNamespace drops the namespace and everything in it.
	DropNamespace(ctx context.Context, schemaName string) error
	NamespaceExists(ctx context.Context, schemaName string) (bool, error)
}

// Resource defines the interface for Resource operations.
type Resource interface {
	IsSharedModel() bool
	TableName() string
}

const DefaultLimit = 100

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUniqueConstraint   = errors.New("unique constraint violation")
	ErrCreateResource     = errors.New("failed to create resource")
	ErrUpdateResource     = errors.New("failed to update resource")
	ErrDeleteResource     = errors.New("failed to delete resource")
	ErrGetResource        = errors.New("failed to get resource")
	ErrSetResource        = errors.New("failed to set resource")
	ErrTransaction        = errors.New("failed to execute transaction")
	ErrWithTenant         = errors.New("failed to use tenant from context")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMigratingNamespace = errors.New("failed to migrate namespace models")
	ErrDroppingNamespace  = errors.New("failed to drop namespace")
	ErrNamespaceLookup    = errors.New("failed to look up namespace")
	ErrNamespaceMissing   = errors.New("tenant namespace does not exist")
)

// ProcessInBatch retrieves and processes records in batches from the database based on the provided query parameters.
// It iterates through all matching records using pagination to avoid loading large datasets into memory.
// Processing stops immediately if processFunc returns an error.
func ProcessInBatch[T Resource](
	ctx context.Context,
	repo Repo,
	baseQuery *Query,
	batchSize int,
	processFunc func([]*T) error,
) error {
	offset := 0

	for {
		var items []*T

		query := *baseQuery
		query.Limit = batchSize
		query.Offset = offset

		count, err := repo.List(ctx, *new(T), &items, query)
		if err != nil {
			return err
		}

		err = processFunc(items)
		if err != nil {
			return err
		}

		offset += batchSize

		if offset >= count {
			break
		}
	}

	return nil
}
