package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Merco74/ScoutPlateform/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func New(cfg config.DatabaseConfig) (*bun.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)

	db, err := NewWithDSN(dsn)
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)
	return db, nil
}

// NewWithDSN opens and pings a connection with a custom DSN (useful for testing)
func NewWithDSN(dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected successfully")
	return db, nil
}

func configurePool(db *bun.DB, cfg config.DatabaseConfig) {
	sqlDB := db.DB

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxIdleConns(maxIdle)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 300
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 60
	}
	sqlDB.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime_seconds", connMaxLifetime,
		"conn_max_idle_time_seconds", connMaxIdleTime,
	)
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// Index describes a secondary index created after the tables exist.
type Index struct {
	Name    string
	Model   interface{}
	Columns []string
}

func RunMigrations(ctx context.Context, db *bun.DB, models []interface{}, indexes ...Index) error {
	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model: %w", err)
		}
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.Model).
			Index(idx.Name).
			Column(idx.Columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
		}
	}

	slog.Info("database migrations completed successfully")
	return nil
}
