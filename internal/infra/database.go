package infra

import (
	"fmt"

	"github.com/leodymann/wi-api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx. When autoMigrate is set
// the schema is created / updated and the idempotent patches GORM cannot
// express (partial indexes, check constraints) are applied.
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&model.User{},
		&model.Client{},
		&model.Product{},
		&model.ProductImage{},
		&model.Sale{},
		&model.Promissory{},
		&model.Installment{},
		&model.Finance{},
	}
}

// RunMigrations creates the schema and applies the patches. Used at startup
// behind AUTO_MIGRATE and by the integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// eligibleIndexSQL builds the partial index backing the candidate query of
// one channel: only rows that can still be dispatched are indexed.
func eligibleIndexSQL(ch model.Channel) string {
	name := fmt.Sprintf("idx_%s_%seligible", ch.Table, ch.Prefix)
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = '%[1]s') THEN
    CREATE INDEX %[1]s ON %[2]s (due_date, id)
      WHERE status = 'PENDING' AND %[3]s IN ('PENDING', 'FAILED');
  END IF;
END $$`, name, ch.Table, ch.Column("status"))
}

// staleIndexSQL backs the stale-claim sweep.
func staleIndexSQL(ch model.Channel) string {
	name := fmt.Sprintf("idx_%s_%ssending", ch.Table, ch.Prefix)
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = '%[1]s') THEN
    CREATE INDEX %[1]s ON %[2]s (%[3]s) WHERE %[4]s = 'SENDING';
  END IF;
END $$`, name, ch.Table, ch.Column("claimed_at"), ch.Column("status"))
}

func checkSQL(table, name, expr string) string {
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
    ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
  END IF;
END $$`, table, name, expr)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded, so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	var patches []string
	for _, ch := range model.Channels {
		patches = append(patches, eligibleIndexSQL(ch), staleIndexSQL(ch))
	}
	patches = append(patches,
		checkSQL("sales", "chk_sales_amounts",
			"total > 0 AND discount >= 0 AND entry_amount >= 0 AND entry_amount <= total"),
		checkSQL("promissories", "chk_promissories_amounts",
			"total >= 0 AND entry_amount >= 0 AND daily_fee >= 0"),
		checkSQL("installments", "chk_installments_number", "number >= 1"),
	)

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 80)], err)
		}
	}
	return nil
}
