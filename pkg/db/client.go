package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/angelmondragon/storefront/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the local GORM connection that backs durable client state.
type Client struct {
	conn *gorm.DB
}

// New opens (creating if needed) the sqlite database at path and migrates the given models.
func New(ctx context.Context, path string, logg *logger.Logger, models ...any) (*Client, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY between our own goroutines.
	sqlDB.SetMaxOpenConns(1)

	client := &Client{conn: conn}
	if len(models) > 0 {
		if err := client.Migrate(ctx, models...); err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	if logg != nil {
		logg.Debug(ctx, "local database ready")
	}

	return client, nil
}

// Migrate creates or updates the tables of the given models.
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	if err := c.conn.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrating local database: %w", err)
	}
	return nil
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
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
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
