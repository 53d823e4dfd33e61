package store

import (
	"errors"

	"user-management/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps driver failures onto the domain taxonomy: unique violations
// become conflicts, foreign key violations become input errors and everything
// else is a store error carrying the cause.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict.Wrap(err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.InputError(domain.CodeReferentialIntegrity, "referenced record does not exist").Wrap(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrConflict.WithDetails(map[string]string{"constraint": pgErr.ConstraintName}).Wrap(err)
		case pgForeignKeyViolation:
			return domain.InputError(domain.CodeReferentialIntegrity, "referenced record does not exist").
				WithDetails(map[string]string{"constraint": pgErr.ConstraintName}).Wrap(err)
		}
	}
	return domain.StoreError(op, err)
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
