package db

import (
	"fmt"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Verification records
		&types.Submission{},
		&types.ImageVerification{},

		// Fact library
		&types.Keyword{},
		&types.Fact{},

		// Jobs / worker
		&types.JobRun{},
	)
}

// EnsureIndexes adds the Postgres-only indexes AutoMigrate cannot express.
func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_run_runnable
		ON job_run (status, created_at)
		WHERE deleted_at IS NULL AND status IN ('queued', 'failed', 'running');
	`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_runnable: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_submission_user_created
		ON submission (user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_submission_user_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_image_verification_user_created
		ON image_verification (user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_image_verification_user_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_fact_created
		ON fact (created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_fact_created: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureIndexes(s.db); err != nil {
		s.log.Error("Index migration failed", "error", err)
		return err
	}
	return nil
}
