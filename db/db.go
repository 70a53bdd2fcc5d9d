// Package db provides database connectivity and migration functionality for the BancoNova back end.
// It handles establishing connections for the two supported dialects (PostgreSQL through a pgx
// pool, MySQL through sqlx), and running the embedded schema migrations with golang-migrate.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	// `time` is used for setting timeouts and connection pool configurations.
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	// `iofs` lets golang-migrate read migrations from an embed.FS, so the binary carries its own schema.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	// `pgxpool` is part of the `jackc/pgx` suite, providing a robust connection pool for PostgreSQL.
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	// `_ "github.com/lib/pq"` registers the "postgres" driver for database/sql, which is
	// the handle golang-migrate's postgres driver runs on.
	_ "github.com/lib/pq"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/config"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	maxConnIdleTime = 10 * time.Minute
	maxConnLifetime = 30 * time.Minute
	connectTimeout  = 10 * time.Second
	pingTimeout     = 5 * time.Second
)

// Direction selects which way RunMigrations moves the schema.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Handle holds whichever connection the configured driver needs. Exactly one
// of Postgres or MySQL is non-nil.
type Handle struct {
	Postgres *pgxpool.Pool
	MySQL    *sqlx.DB
}

// Open connects to the datastore selected by cfg.Driver.
func Open(cfg *config.DatabaseConfig) (*Handle, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := NewPostgresPool(cfg)
		if err != nil {
			return nil, err
		}
		return &Handle{Postgres: pool}, nil
	case config.DriverMySQL:
		conn, err := NewMySQL(cfg)
		if err != nil {
			return nil, err
		}
		return &Handle{MySQL: conn}, nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
}

// Ping verifies the connection is alive. Used by the health check.
func (h *Handle) Ping(ctx context.Context) error {
	if h.Postgres != nil {
		return h.Postgres.Ping(ctx)
	}
	if h.MySQL != nil {
		return h.MySQL.PingContext(ctx)
	}
	return errors.New("no database connection")
}

// Close releases the underlying pool.
func (h *Handle) Close() {
	if h.Postgres != nil {
		h.Postgres.Close()
	}
	if h.MySQL != nil {
		_ = h.MySQL.Close()
	}
}

// PostgresDSN builds a URL-style DSN understood by both pgx and lib/pq.
func PostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), cfg.DBName,
	)
}

// MySQLDSN builds a go-sql-driver DSN. parseTime makes DATE/TIMESTAMP columns scan into time.Time.
func MySQLDSN(cfg *config.DatabaseConfig) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}

// NewPostgresPool establishes a pgxpool connection pool and verifies it with a ping.
func NewPostgresPool(cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	// `pgxpool.ParseConfig` parses the DSN string into a `pgxpool.Config` struct.
	poolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.MaxConnLifetime = maxConnLifetime

	// Use a context with a timeout for the pool creation process.
	// This prevents indefinite blocking if the database is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), pingTimeout)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close() // Clean up on connection failure
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}

	return pool, nil
}

// NewMySQL opens a sqlx handle on go-sql-driver/mysql with the same pool limits as the PostgreSQL pool.
func NewMySQL(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	conn, err := sqlx.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error opening mysql database %s", cfg.DBName), err)
	}

	conn.SetMaxOpenConns(cfg.MaxSize)
	conn.SetMaxIdleConns(cfg.MaxSize)
	conn.SetConnMaxIdleTime(maxConnIdleTime)
	conn.SetConnMaxLifetime(maxConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the mysql database %s", cfg.DBName), err)
	}

	return conn, nil
}

// RunMigrations applies (or reverts, for Down) the embedded migrations of the configured dialect.
// Files follow golang-migrate's naming: {version}_{description}.{up|down}.sql.
// MySQL migrations hold exactly one statement each because go-sql-driver does not
// allow multiple statements per Exec without the multiStatements flag.
func RunMigrations(cfg *config.DatabaseConfig, direction Direction, logger *slog.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	// m.Close() returns two errors, one for source and one for database.
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("error closing migrator", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	switch direction {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	// `migrate.ErrNoChange` is returned if there is nothing to apply, which is not an actual error.
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewDatabaseError(fmt.Sprintf("failed to run migrations %s", direction), err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return apperror.NewDatabaseError("failed to read migration version", verr)
	}
	logger.Info("migrations applied", "driver", cfg.Driver, "direction", direction.String(), "version", version, "dirty", dirty)
	return nil
}

func newMigrator(cfg *config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to open embedded migrations", err)
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		sqlDB, err := sql.Open("postgres", PostgresDSN(cfg))
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to open migration connection", err)
		}
		driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
		if err != nil {
			_ = sqlDB.Close()
			return nil, apperror.NewDatabaseError("failed to create postgres migration driver", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, cfg.DBName, driver)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to create migrator", err)
		}
		return m, nil
	case config.DriverMySQL:
		sqlDB, err := sql.Open("mysql", MySQLDSN(cfg))
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to open migration connection", err)
		}
		driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
		if err != nil {
			_ = sqlDB.Close()
			return nil, apperror.NewDatabaseError("failed to create mysql migration driver", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, cfg.DBName, driver)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to create migrator", err)
		}
		return m, nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
}
