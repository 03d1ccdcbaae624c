// Package migrations evolves the schema through ordered, recorded steps.
package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kendall-kelly/box-erp-api/models"
	"gorm.io/gorm"
)

// SchemaMigration records an applied step.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false" json:"version"`
	Name      string    `gorm:"not null" json:"name"`
	AppliedAt time.Time `gorm:"not null" json:"appliedAt"`
}

// TableName specifies the table name for the SchemaMigration model
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Step is one idempotent schema change.
type Step struct {
	Version int
	Name    string
	Apply   func(tx *gorm.DB) error
}

// Runner applies steps that are not yet recorded in schema_migrations.
type Runner struct {
	db    *gorm.DB
	log   *slog.Logger
	steps []Step
}

// NewRunner creates a runner over the given steps. Steps must have increasing versions.
func NewRunner(db *gorm.DB, log *slog.Logger, steps []Step) *Runner {
	return &Runner{db: db, log: log, steps: steps}
}

// Default returns a runner over the application's schema history.
func Default(db *gorm.DB, log *slog.Logger) *Runner {
	return NewRunner(db, log, Steps())
}

// Run applies every pending step, each in its own transaction.
// It returns the number of steps applied.
func (r *Runner) Run(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)

	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return 0, err
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	count := 0
	last := 0
	for _, step := range r.steps {
		if step.Version <= last {
			return count, fmt.Errorf("migration %d (%s) is out of order", step.Version, step.Name)
		}
		last = step.Version
		if done[step.Version] {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Apply(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return count, fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Name, err)
		}

		r.log.Info("migration applied",
			slog.Int("version", step.Version),
			slog.String("name", step.Name),
		)
		count++
	}

	return count, nil
}

// Applied lists recorded migrations in version order.
func (r *Runner) Applied(ctx context.Context) ([]SchemaMigration, error) {
	var applied []SchemaMigration
	if err := r.db.WithContext(ctx).Order("version").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	return applied, nil
}

// Steps returns the schema history in order.
func Steps() []Step {
	return []Step{
		{Version: 1, Name: "core_tables", Apply: createCoreTables},
		{Version: 2, Name: "order_phase_columns", Apply: addOrderPhaseColumns},
		{Version: 3, Name: "lookup_indexes", Apply: createLookupIndexes},
	}
}

func createCoreTables(tx *gorm.DB) error {
	return tx.AutoMigrate(models.All()...)
}

// Orders created before payment terms existed lack these columns.
func addOrderPhaseColumns(tx *gorm.DB) error {
	migrator := tx.Migrator()
	for _, field := range []string{
		"PaymentMethod",
		"MaturityDays",
		"Prepayment",
		"GofrePrice",
		"GofreVatRate",
		"ShippingPrice",
		"ShippingVatRate",
	} {
		if migrator.HasColumn(&models.Order{}, field) {
			continue
		}
		if err := migrator.AddColumn(&models.Order{}, field); err != nil {
			return fmt.Errorf("add orders.%s: %w", field, err)
		}
	}
	return nil
}

func createLookupIndexes(tx *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_notifications_unread_user ON notifications (user_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_unread_role ON notifications (role_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_stock_items_product_qty ON stock_items (product_id, quantity)",
		"CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages (sender_id, receiver_id)",
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
