// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"foodgram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes translated into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgUniqueViolation || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed")
}

func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

func isCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgCheckViolation || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "check constraint failed")
}

// notFoundOrInternal maps gorm.ErrRecordNotFound to NOT_FOUND and anything else to INTERNAL.
func notFoundOrInternal(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// clampLimit keeps list limits inside [1, 100].
func clampLimit(limit int) int {
	if limit <= 0 {
		return 6
	}
	if limit > 100 {
		return 100
	}
	return limit
}
