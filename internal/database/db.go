package database

import (
	"fmt"
	"time"

	"store-ratings/internal/logging"
	"store-ratings/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open connects to postgres, retrying while the database starts up, and
// migrates the schema. The caller owns the returned handle.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logging.Gorm(log),
			TranslateError: true,
		})
		if err == nil {
			log.Info("connected to DB successfully")
			break
		}

		log.WithError(err).Warn("failed to connect to DB")
		time.Sleep(retryBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates tables, the unique (user_id, store_id) rating
// index and the cascading foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Rating{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// e-mail уникален без учёта регистра
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_email_lower ON stores (LOWER(email))`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
