// internal/infrastructure/database/postgres/connection.go
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection wraps the GORM database handle
type Connection struct {
	db *gorm.DB
}

// NewConnection opens a PostgreSQL connection and configures the pool
func NewConnection(cfg *config.Config) (*Connection, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Println("✅ Database connection established successfully")

	return &Connection{db: db}, nil
}

// GetDB returns the GORM database instance
func (c *Connection) GetDB() *gorm.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health verifies the database is reachable
func (c *Connection) Health() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
