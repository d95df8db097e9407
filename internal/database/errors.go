package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"postboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// SQLSTATE codes raised by PostgreSQL integrity checks.
const (
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// TranslateError maps a driver or gorm error onto the application error taxonomy.
// It returns nil for nil and leaves an *models.AppError untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AppError{Code: models.CodeNotFound, Message: "Record not found", Err: err}
	}

	if msg, ok := constraintMessage(err); ok {
		return models.NewConstraintError(msg, err)
	}

	if isConnectionError(err) {
		return models.NewConnectionError(err)
	}

	return models.NewInternalError(err)
}

func isConstraintError(err error) bool {
	_, ok := constraintMessage(err)
	return ok
}

func constraintMessage(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return "Foreign key constraint violated", true
		case pgNotNullViolation:
			return "Required column is missing", true
		case pgUniqueViolation:
			return "Unique constraint violated", true
		case pgCheckViolation:
			return "Check constraint violated", true
		}
		return "", false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return "Foreign key constraint violated", true
		case sqlite3.ErrConstraintNotNull:
			return "Required column is missing", true
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return "Unique constraint violated", true
		default:
			return "Constraint violated", true
		}
	}

	return "", false
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// database/sql does not export its closed-pool error.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. Class 57: operator intervention (shutdown).
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57")
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrCantOpen || liteErr.Code == sqlite3.ErrNotADB
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
