package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"postboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{
			name: "sqlite foreign key",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey},
			code: models.CodeConstraintViolation,
		},
		{
			name: "sqlite not null",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull},
			code: models.CodeConstraintViolation,
		},
		{
			name: "sqlite cannot open",
			err:  sqlite3.Error{Code: sqlite3.ErrCantOpen},
			code: models.CodeConnection,
		},
		{
			name: "postgres foreign key",
			err:  &pgconn.PgError{Code: "23503", Message: "insert or update on table \"posts\" violates foreign key constraint"},
			code: models.CodeConstraintViolation,
		},
		{
			name: "postgres not null wrapped",
			err:  fmt.Errorf("insert post: %w", &pgconn.PgError{Code: "23502"}),
			code: models.CodeConstraintViolation,
		},
		{
			name: "postgres admin shutdown",
			err:  &pgconn.PgError{Code: "57P01"},
			code: models.CodeConnection,
		},
		{
			name: "postgres connection failure",
			err:  &pgconn.PgError{Code: "08006"},
			code: models.CodeConnection,
		},
		{
			name: "bad connection",
			err:  driver.ErrBadConn,
			code: models.CodeConnection,
		},
		{
			name: "network error",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			code: models.CodeConnection,
		},
		{
			name: "record not found",
			err:  gorm.ErrRecordNotFound,
			code: models.CodeNotFound,
		},
		{
			name: "anything else",
			err:  errors.New("syntax error near SELEKT"),
			code: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)
			var appErr *models.AppError
			if assert.ErrorAs(t, got, &appErr) {
				assert.Equal(t, tt.code, appErr.Code)
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	original := models.NewValidationError("bad input")
	assert.Same(t, original, TranslateError(original))
}
