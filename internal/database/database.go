package database

import (
	"fmt"
	"strings"

	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection and migrates the schema.
func NewDatabase(cfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Each connection to an in-memory sqlite database sees its own empty
	// database, so pin the pool to a single connection.
	if strings.Contains(cfg.DSN, ":memory:") || strings.Contains(cfg.DSN, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the tables for every model. Existing rows are kept.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.InvestorProfile{},
		&models.AllocationModel{},
		&models.Fund{},
		&models.Holding{},
		&models.ExecutionLog{},
		&models.ChatMessage{},
		&models.CoachingAnalysis{},
		&models.AllocationChange{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
