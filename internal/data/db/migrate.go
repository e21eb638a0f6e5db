package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureGraphIndexes(db)
}

// EnsureGraphIndexes adds the read-path indexes that struct tags cannot express.
// Statements are valid on both Postgres and SQLite.
func EnsureGraphIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_wcr_pending_model_created
		   ON weight_change_requests(model_id, created_at)
		   WHERE status = 'pending';`,
		`CREATE INDEX IF NOT EXISTS idx_model_versions_model_created
		   ON model_versions(model_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_models_owner_created
		   ON models(owner_id, created_at);`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure graph indexes: %w", err)
		}
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Running migrations")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Migration failed", "error", err)
		return err
	}
	return nil
}
