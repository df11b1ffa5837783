package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// on returns tx when the caller is inside a transaction, db otherwise.
func on(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// day renders a calendar date for comparison against DATE columns.
func day(t time.Time) string { return t.Format(dateLayout) }

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
