// Package database stores workspace projects in SQLite or MySQL through
// database/sql, with the schema managed by golang-migrate.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/cherry/cherry-cli/internal/logging"
	"github.com/cherry/cherry-cli/internal/project"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

//go:embed migrations
var migrations embed.FS

var dbLog = logging.New("db")

// Options selects the backing store. Path is used by sqlite, DSN by mysql.
type Options struct {
	Driver string
	Path   string
	DSN    string
}

// DB owns the connection pool. Repositories handed out by DB share it.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to the configured store and applies pending migrations.
func Open(opts Options) (*DB, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		conn *sql.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = openSQLite(opts.Path)
	case DriverMySQL:
		conn, err = openMySQL(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (expected sqlite or mysql)", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing sqlite database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	conn, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between our own goroutines.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return conn, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("missing mysql dsn")
	}
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return conn, nil
}

// Migrate applies every pending up migration for the active driver.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrations, "migrations/"+db.driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer src.Close()

	var target migratedb.Driver
	switch db.driver {
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db.conn, &migratemysql.Config{})
	default:
		target, err = migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	// Not closing m: its database driver would close the shared pool.
	m, err := migrate.NewWithInstance("iofs", src, db.driver, target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		dbLog.Debug("schema ready", "driver", db.driver, "version", version, "dirty", dirty)
	}
	return nil
}

func (db *DB) Driver() string { return db.driver }

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) ProjectRepository() project.Repository {
	return newProjectRepository(db.conn, db.driver)
}
