package db

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == foreignKeyViolation
}

func IsUniqueViolation(err error) bool {
	return sqlState(err) == uniqueViolation
}
