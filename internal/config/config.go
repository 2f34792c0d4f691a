// Package config handles configuration for the gophdesk CLI, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
)

// Store drivers understood by storage.Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Config holds runtime settings.
//
// Fields:
//   - StoreDriver: one of the Driver* constants.
//   - StoreDSN: SQLite file path or PostgreSQL DSN (pgx), depending on the driver.
//   - RedisAddr / RedisPassword / RedisDB / RedisPrefix: redis driver settings.
//   - S3*: object storage settings for the s3 driver.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - AdminUsername / AdminSecret: bootstrap account written on first start.
//   - SimulateLatency and the *Delay fields: artificial network delays.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	StoreDriver string
	StoreDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3Prefix       string

	SecretKey string

	AdminUsername string
	AdminSecret   string

	SimulateLatency bool
	AuthDelay       time.Duration
	ListDelay       time.Duration
	MutateDelay     time.Duration

	LogLevel string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and the bootstrap credentials are not fit for production.
func (c *Config) LoadDefaults() {
	c.StoreDriver = DriverSQLite
	c.StoreDSN = "desk.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "gophdesk:"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Prefix = "gophdesk"
	c.SecretKey = "secretKey"
	c.AdminUsername = "admin"
	c.AdminSecret = "admin123"
	c.SimulateLatency = true
	c.AuthDelay = 500 * time.Millisecond
	c.ListDelay = 400 * time.Millisecond
	c.MutateDelay = 300 * time.Millisecond
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. args are
// the program arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	// an empty secret gets a random one; sessions then end with the process
	if cfg.SecretKey == "" {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.SecretKey = key
	}
	return cfg, nil
}
