package sql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/violations"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

const PublicSchema = "public"

var ErrUnsupportedOrderDirective = errors.New("unsupported order directive")

// ResourceRepository represents the repository for managing Resource data.
type ResourceRepository struct {
	db *multitenancy.DB
}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(db *multitenancy.DB) *ResourceRepository {
	return &ResourceRepository{
		db: db,
	}
}

// WithTenant runs GORM actions in the namespace the resource belongs to.
//
// Shared resources use schema qualified tables and run directly. Any other
// resource runs on a single connection whose search_path is set to the
// scope's namespace first and reset before the connection is released.
func (r *ResourceRepository) WithTenant(
	ctx context.Context,
	resource repo.Resource,
	fn func(tx *multitenancy.DB) error,
) error {
	if resource.IsSharedModel() {
		return fn(r.db.WithContext(ctx))
	}

	schemaName, err := r.schemaFor(ctx)
	if err != nil {
		return err
	}

	if r.inTransaction() {
		// The transaction already pins one connection, bind it for this call.
		reset, err := r.db.UseTenant(ctx, schemaName)

		defer func() {
			if reset != nil {
				resetErr := reset()
				if resetErr != nil {
					log.Error(ctx, "error resetting tenant", resetErr)
				}
			}
		}()

		if err != nil {
			return errs.Wrap(repo.ErrWithTenant, err)
		}

		return namespaceErr(fn(r.db.WithContext(ctx)))
	}

	var fnErr error

	txErr := r.db.WithContext(ctx).WithTenant(
		ctx, schemaName, func(tx *multitenancy.DB) error {
			fnErr = fn(tx)
			return fnErr
		},
	)
	if fnErr != nil {
		return namespaceErr(fnErr)
	}

	if txErr != nil {
		return errs.Wrap(repo.ErrTransaction, namespaceErr(txErr))
	}

	return nil
}

// namespaceErr marks statements that ran against a dropped or never
// provisioned namespace.
func namespaceErr(err error) error {
	if violations.IsMissingNamespace(err) {
		return errs.Wrap(repo.ErrNamespaceMissing, err)
	}

	return err
}

// schemaFor resolves the namespace of the scope bound to ctx. Without a
// bound scope the raw tenant id is looked up in the registry and only an
// active tenant is accepted.
func (r *ResourceRepository) schemaFor(ctx context.Context) (string, error) {
	var schemaName string

	scope, err := tenancyctx.ExtractScope(ctx)
	if err == nil {
		schemaName = scope.SchemaName
	} else {
		tenantID, err := tenancyctx.ExtractTenantID(ctx)
		if err != nil {
			return "", errs.Wrap(repo.ErrWithTenant, errs.Wrap(errs.ErrMissingTenantContext, err))
		}

		var existingTenant model.Tenant

		err = r.db.WithContext(ctx).Where(repo.IDField+" = ?", tenantID).First(&existingTenant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.Wrap(repo.ErrTenantNotFound, errs.ErrUnknownTenant)
		} else if err != nil {
			return "", errs.Wrap(repo.ErrWithTenant, err)
		}

		if !existingTenant.IsActive() {
			return "", errs.Wrap(repo.ErrWithTenant, errs.ErrTenantNotActive)
		}

		schemaName = existingTenant.SchemaName
	}

	err = model.ValidateSchemaName(schemaName)
	if err != nil {
		return "", errs.Wrap(repo.ErrWithTenant, err)
	}

	return schemaName, nil
}

func (r *ResourceRepository) inTransaction() bool {
	committer, ok := r.db.Statement.ConnPool.(gorm.TxCommitter)
	return ok && committer != nil
}

// Create adds meta information and stores a Resource.
func (r *ResourceRepository) Create(ctx context.Context, resource repo.Resource) error {
	return r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			err := tx.Create(resource).Error
			if err != nil {
				if violations.IsUniqueConstraint(err) {
					return errs.Wrap(repo.ErrUniqueConstraint, err)
				}

				log.Error(ctx, "error creating resource", err)

				return errs.Wrap(repo.ErrCreateResource, err)
			}

			return nil
		},
	)
}

// CreateIfAbsent inserts the resource and silently skips it when one of the
// conflict columns already holds the same value.
func (r *ResourceRepository) CreateIfAbsent(
	ctx context.Context,
	resource repo.Resource,
	conflictColumns ...string,
) (bool, error) {
	var inserted bool

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			columns := make([]clause.Column, 0, len(conflictColumns))
			for _, c := range conflictColumns {
				columns = append(columns, clause.Column{Name: c})
			}

			res := tx.Clauses(clause.OnConflict{
				Columns:   columns,
				DoNothing: true,
			}).Create(resource)
			if res.Error != nil {
				log.Error(ctx, "error creating resource", res.Error)
				return errs.Wrap(repo.ErrCreateResource, res.Error)
			}

			inserted = res.RowsAffected > 0

			return nil
		},
	)

	return inserted, err
}

// List retrieves records from the database based on the provided query parameters and model.
// Result is an address
func (r *ResourceRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	var count int64

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyQuery(tx.Model(result), query)
			if err != nil {
				return err
			}

			db = db.Count(&count)
			if db.Error != nil {
				return errs.Wrap(repo.ErrGetResource, db.Error)
			}

			for _, order := range query.OrderFields {
				switch order.Direction {
				case repo.Desc:
					db = db.Order(order.Field + " desc")
				case repo.Asc:
					db = db.Order(order.Field + " asc")
				default:
					return ErrUnsupportedOrderDirective
				}
			}

			res := applyPagination(db, query).Find(result)
			if res.Error != nil {
				return errs.Wrap(repo.ErrGetResource, res.Error)
			}

			return nil
		},
	)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
// If no query is provided it deletes the item by the primaryKey
func (r *ResourceRepository) Delete(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var result *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyQuery(tx.Clauses(clause.Returning{}), query)
			if err != nil {
				return err
			}

			result = db.Delete(resource)
			if result.Error != nil {
				log.Error(ctx, "error deleting resource", result.Error)
				return errs.Wrap(repo.ErrDeleteResource, result.Error)
			}

			return nil
		},
	)
	if err != nil {
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// First fill given Resource with data, if found. Given Resource is used as query data.
// It will find the resource with the primary key as the where condition by omition
func (r *ResourceRepository) First(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyQuery(tx.Model(resource), query)
			if err != nil {
				return err
			}

			res = db.First(resource)
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrRecordNotFound) {
					return errs.Wrap(repo.ErrNotFound, res.Error)
				}

				log.Error(ctx, "error finding the resource", res.Error)

				return errs.Wrap(repo.ErrGetResource, res.Error)
			}

			return nil
		},
	)
	if err != nil {
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// Patch will patch the resource with primary key as the where condition.
//
// It returns true if a record was patched successfully,
// and error if there was an error during the patch.
func (r *ResourceRepository) Patch(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			db, err := applyQuery(tx.Model(resource), query)
			if err != nil {
				return err
			}

			res = applyUpdateQuery(db.Clauses(clause.Returning{}), query).Updates(resource)

			err = res.Error
			if err != nil {
				if violations.IsUniqueConstraint(err) {
					return errs.Wrap(repo.ErrUniqueConstraint, err)
				}

				log.Error(ctx, "error updating resource", err)

				return err
			}

			return nil
		},
	)
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	return res.RowsAffected > 0, nil
}

// Set will create an item or update it if it already exists
// It returns an error if there was an error during the operation
func (r *ResourceRepository) Set(ctx context.Context, resource repo.Resource) error {
	return r.WithTenant(
		ctx, resource, func(tx *multitenancy.DB) error {
			err := tx.Clauses(
				clause.OnConflict{
					UpdateAll: true,
				},
			).Create(resource).Error
			if err != nil {
				log.Error(ctx, "error setting the resource", err)
				return errs.Wrap(repo.ErrSetResource, err)
			}

			return nil
		},
	)
}

// Transaction wraps a function inside a database transaction.
// If txFunc returns no error the transaction is committed, otherwise it is
// rolled back. Cancelling ctx aborts the statement in flight and the
// transaction rolls back.
// Note: please dont use Goroutines inside the txFunc as this might lead to panic.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := r.db.WithContext(ctx).Transaction(
		func(tx *multitenancy.DB) error {
			return txFunc(ctx, NewRepository(tx))
		},
	)
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func (r *ResourceRepository) MigrateNamespace(ctx context.Context, schemaName string) error {
	err := model.ValidateSchemaName(schemaName)
	if err != nil {
		return errs.Wrap(repo.ErrMigratingNamespace, err)
	}

	err = r.db.WithContext(ctx).Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, schemaName)).Error
	if err != nil {
		return errs.Wrap(repo.ErrMigratingNamespace, err)
	}

	err = r.db.WithContext(ctx).MigrateTenantModels(ctx, schemaName)
	if err != nil {
		return errs.Wrap(repo.ErrMigratingNamespace, err)
	}

	return nil
}

func (r *ResourceRepository) DropNamespace(ctx context.Context, schemaName string) error {
	err := model.ValidateSchemaName(schemaName)
	if err != nil {
		return errs.Wrap(repo.ErrDroppingNamespace, err)
	}

	err = r.db.WithContext(ctx).Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS "%s" CASCADE`, schemaName)).Error
	if err != nil {
		return errs.Wrap(repo.ErrDroppingNamespace, err)
	}

	return nil
}

func (r *ResourceRepository) NamespaceExists(ctx context.Context, schemaName string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", schemaName).
		Scan(&count).Error
	if err != nil {
		return false, errs.Wrap(repo.ErrNamespaceLookup, err)
	}

	return count > 0, nil
}

// apply update operations on the db action
//
//nolint:unqueryvet
func applyUpdateQuery(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.UpdateFields.All {
		db = db.Select("*")
	}

	if !query.UpdateFields.All && len(query.UpdateFields.Fields) > 0 {
		db = db.Select(query.UpdateFields.Fields)
	}

	return db
}

// applyQuery applies the where part of the query to the database.
func applyQuery(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	if len(query.CompositeKeyGroup) == 0 {
		return db, nil
	}

	baseQuery := db.Session(&gorm.Session{NewDB: true})

	for i, ck := range query.CompositeKeyGroup {
		tk, err := handleCompositeKey(db, ck.CompositeKey)
		if err != nil {
			return nil, err
		}

		if i == 0 || ck.IsStrict {
			baseQuery = baseQuery.Where(tk)
			continue
		}

		baseQuery = baseQuery.Or(tk)
	}

	return db.Where(baseQuery), nil
}

func applyPagination(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.Limit <= 0 {
		query.Limit = repo.DefaultLimit
	}

	return db.Offset(query.Offset).Limit(query.Limit)
}

// handleCompositeKey applies the composite key to the query.
func handleCompositeKey(db *gorm.DB, compositeKey repo.CompositeKey) (*gorm.DB, error) {
	tx := db.Session(&gorm.Session{NewDB: true})

	for _, cond := range compositeKey.Conds {
		entry := cond.Value
		if entry.Err != nil {
			return nil, entry.Err
		}

		tx = applyFieldCondition(tx, cond.Field, entry.Key, compositeKey.IsStrict)
	}

	return tx, nil
}

func applyFieldCondition(tx *gorm.DB, field string, key repo.Key, isStrict bool) *gorm.DB {
	switch key.Operation {
	case repo.GreaterThan, repo.LessThan, repo.NotEqual:
		return applyCondition(tx, field, string(key.Operation), key.Value, isStrict)
	case repo.ILike:
		return applyCondition(tx, field, "ILIKE", key.Value, isStrict)
	case repo.EqualFold:
		return applyCondition(tx, "lower("+field+")", "=", strings.ToLower(fmt.Sprint(key.Value)), isStrict)
	default:
		v := reflect.ValueOf(key.Value)
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			return applyCondition(tx, field, "IN", key.Value, isStrict)
		}

		return applyCondition(tx, field, "=", key.Value, isStrict)
	}
}

func applyCondition(tx *gorm.DB, field, operator string, value any, isStrict bool) *gorm.DB {
	if isStrict {
		return tx.Where(fmt.Sprintf("%s %s (?)", field, operator), value)
	}

	return tx.Or(fmt.Sprintf("%s %s ?", field, operator), value)
}
