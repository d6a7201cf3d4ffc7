// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Account{},
		&models.CreatorRecord{},
		&models.ContentRecord{},
		&models.AssetRecord{},
		&models.ListingRecord{},
		&models.CollaborationRecord{},
		&models.LedgerEvent{},
		&models.Transfer{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_ledger_address ON accounts(ledger_address)",

		// Creator read-model indexes
		"CREATE INDEX IF NOT EXISTS idx_creator_records_type_active ON creator_records(creator_type, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_creator_records_earnings ON creator_records(total_earnings DESC)",

		// Content read-model indexes
		"CREATE INDEX IF NOT EXISTS idx_content_records_creator ON content_records(creator)",
		"CREATE INDEX IF NOT EXISTS idx_content_records_type_category ON content_records(content_type, category)",
		"CREATE INDEX IF NOT EXISTS idx_content_records_for_sale ON content_records(for_sale, price)",
		"CREATE INDEX IF NOT EXISTS idx_content_records_tags ON content_records USING GIN(tags)",
		"CREATE INDEX IF NOT EXISTS idx_content_records_created_at ON content_records(created_at DESC)",

		// Asset and listing indexes
		"CREATE INDEX IF NOT EXISTS idx_asset_records_owner ON asset_records(owner)",
		"CREATE INDEX IF NOT EXISTS idx_asset_records_intelligent ON asset_records(is_intelligent)",
		"CREATE INDEX IF NOT EXISTS idx_listing_records_open ON listing_records(is_open, deadline)",
		"CREATE INDEX IF NOT EXISTS idx_listing_records_seller ON listing_records(seller)",

		// Collaboration indexes
		"CREATE INDEX IF NOT EXISTS idx_collaboration_records_status ON collaboration_records(status, deadline)",
		"CREATE INDEX IF NOT EXISTS idx_collaboration_records_proposer ON collaboration_records(proposer)",

		// Journal indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_kind_time ON ledger_events(kind, ledger_time DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_address_kind ON transfers(address, kind)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status, created_at DESC)",

		// Full-text search indexes
		"CREATE INDEX IF NOT EXISTS idx_content_records_search ON content_records USING GIN(to_tsvector('english', title))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB, adminAddress string) error {
	log.Println("Seeding initial data...")

	// Create default admin account bound to the ledger admin address
	var adminCount int64
	db.Model(&models.Account{}).Where("ledger_address = ?", adminAddress).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.Account{
			Username:      "admin",
			Email:         "admin@creator-ledger.local",
			LedgerAddress: adminAddress,
			Status:        models.AccountStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		log.Println("Default admin account created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
