package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/actionsum/worktrack/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "worktrack.db"
	defaultDBDir  = ".config/worktrack"

	// the agent writes while `worktrack history` reads from another process
	connParams = "?_busy_timeout=5000&_journal_mode=WAL"
)

// DB is the upload history store shared by the agent and the CLI.
type DB struct {
	*gorm.DB
}

// GetDefaultDBPath returns ~/.config/worktrack/worktrack.db.
func GetDefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, defaultDBDir, defaultDBName), nil
}

// Connect opens the history database, creating its directory if needed.
// An empty path selects GetDefaultDBPath.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath+connParams), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// Initialize creates or migrates the screenshot_logs and error_logs tables.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.ScreenshotLog{}, &models.ErrorLog{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return nil
}

// JournalMode reports the SQLite journal mode in effect.
func (db *DB) JournalMode() (string, error) {
	var mode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		return "", fmt.Errorf("failed to read journal mode: %w", err)
	}
	return mode, nil
}

// Close releases the pooled SQLite handles.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
