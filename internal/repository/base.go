// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"postboard/internal/database"
	"postboard/internal/models"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

type base struct {
	db *gorm.DB
}

// run executes fn inside a repository span, records its latency and
// translates any driver error into a models.AppError.
func (b base) run(ctx context.Context, operation, table string, fn func(db *gorm.DB) error) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, b.db.Dialector.Name(), operation, table)
	done := observability.TrackQuery(operation, table)
	defer func() {
		done()
		observability.EndSpan(span, err)
	}()

	if err = fn(b.db.WithContext(ctx)); err != nil {
		err = database.TranslateError(err)
		code := models.CodeInternal
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			code = appErr.Code
		}
		observability.StoreErrors.WithLabelValues(operation, code).Inc()
	}
	return err
}
