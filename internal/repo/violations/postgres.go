package violations

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// see https://www.postgresql.org/docs/16/errcodes-appendix.html
const (
	PgUniqueErrCode         = "23505"
	PgInvalidSchemaErrCode  = "3F000"
	PgUndefinedTableErrCode = "42P01"
)

// IsUniqueConstraint checks if the error is a unique constraint violation
func IsUniqueConstraint(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgError *pgconn.PgError

	return errors.As(err, &pgError) && pgError.Code == PgUniqueErrCode
}

// IsMissingNamespace checks if the error comes from a statement against a
// namespace or table that does not exist.
func IsMissingNamespace(err error) bool {
	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) {
		return false
	}

	return pgError.Code == PgInvalidSchemaErrCode || pgError.Code == PgUndefinedTableErrCode
}
