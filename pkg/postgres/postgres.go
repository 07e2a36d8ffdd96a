package postgres

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errx "github.com/fredgpt/server/internal/core/error"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes the relational store holding meeting records and the
// FRASER title catalog. The sqlite driver exists for local runs and tests.
type Config struct {
	Driver     string `envconfig:"PG_DRIVER" default:"postgres"`
	Host       string `envconfig:"PG_HOST"`
	Port       int    `envconfig:"PG_PORT" default:"5432"`
	Name       string `envconfig:"PG_NAME" default:"fomc"`
	User       string `envconfig:"PG_USER"`
	Password   string `envconfig:"PG_PASS"`
	SSLMode    string `envconfig:"PG_SSLMODE" default:"prefer"`
	SQLitePath string `envconfig:"PG_SQLITE_PATH" default:"fomc.db"`

	MaxOpenConns    int `envconfig:"PG_MAX_OPEN_CONNS" default:"10"`
	ConnMaxLifetime int `envconfig:"PG_CONN_MAX_LIFETIME_MINUTES" default:"30"`
}

// Validate fails fast on missing connection parameters.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" || c.User == "" || c.Password == "" {
			return errx.Config("PG_HOST, PG_USER and PG_PASS are required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errx.Config("PG_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return errx.Config("unsupported PG_DRIVER %q", c.Driver)
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) dialector() gorm.Dialector {
	if c.Driver == DriverSQLite {
		return sqlite.Open(c.SQLitePath)
	}
	return postgres.Open(c.DSN())
}

func (c *Config) New() (*gorm.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(c.dialector(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", c.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetime) * time.Minute)
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
