// Package database opens the configured SQL backend and applies migrations.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
)

// Dialect names a supported backend. The values double as goose dialects.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// DB wraps the connection pool with a statement builder bound to the
// dialect's placeholder format.
type DB struct {
	*sqlx.DB
	Dialect Dialect
	QB      sq.StatementBuilderType
}

// DSN renders the driver-specific connection string.
func DSN(cfg config.Database) (Dialect, string, error) {
	switch Dialect(cfg.Driver) {
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Pass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		// DATETIME -> time.Time, always UTC
		mc.ParseTime = true
		mc.Loc = time.UTC
		// RowsAffected counts matched rows, so conditional updates that
		// leave values unchanged still report success
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return MySQL, mc.FormatDSN(), nil
	case Postgres, "pgx":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Pass),
			Host:     net.JoinHostPort(cfg.Host, cfg.Port),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return Postgres, u.String(), nil
	case SQLite, "sqlite":
		return SQLite, fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", cfg.Path), nil
	}
	return "", "", errors.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	dialect, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	if dialect == SQLite {
		// a single writer avoids SQLITE_BUSY between concurrent transactions
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping")
	}
	return &DB{
		DB:      db,
		Dialect: dialect,
		QB:      sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
	}, nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}
