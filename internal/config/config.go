package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBDriver   string // mysql | postgres | sqlite
	DBLogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisEnabled bool
	RedisAddr    string
	RedisDB      int

	IdempTTLSecs int

	GovInterestRate float64

	DisburseLockTTL    time.Duration
	DisburseTxTimeout  time.Duration
	DisburseMaxRetries int

	LedgerVerifyBatch int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}

// Load reads .env files when present (real env wins), then the environment.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "production"),

		DBDriver:   getenv("DB_DRIVER", "mysql"),
		DBLogLevel: getenv("DB_LOG_LEVEL", "warn"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "farmloan"),
		MySQLUser: getenv("MYSQL_USER", "farmloan"),
		MySQLPass: getenv("MYSQL_PASS", "farmloan"),

		PostgresDSN: getenv("POSTGRES_DSN", ""),
		SQLitePath:  getenv("SQLITE_PATH", "farmloan.db"),

		RedisEnabled: getenvBool("REDIS_ENABLED", true),
		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		GovInterestRate: getenvFloat("GOV_INTEREST_RATE", 0.06),

		DisburseLockTTL:    time.Duration(getenvInt("DISBURSE_LOCK_TTL_SECONDS", 30)) * time.Second,
		DisburseTxTimeout:  getenvDuration("DISBURSE_TX_TIMEOUT", 5*time.Second),
		DisburseMaxRetries: getenvInt("DISBURSE_MAX_RETRIES", 5),

		LedgerVerifyBatch: getenvInt("LEDGER_VERIFY_BATCH", 500),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (mysql|postgres|sqlite)", c.DBDriver)
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		return errors.New("REDIS_ENABLED requires REDIS_ADDR")
	}
	if c.GovInterestRate < 0 || c.GovInterestRate > 1 {
		return fmt.Errorf("GOV_INTEREST_RATE %v out of range [0,1]", c.GovInterestRate)
	}
	if c.DisburseTxTimeout <= 0 || c.DisburseLockTTL <= 0 {
		return errors.New("disbursement timeouts must be positive")
	}
	if c.DisburseMaxRetries < 0 {
		return errors.New("DISBURSE_MAX_RETRIES must be >= 0")
	}
	if c.LedgerVerifyBatch <= 0 {
		return errors.New("LEDGER_VERIFY_BATCH must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime for DATETIME; loc=UTC keeps ledger timestamps canonical
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
