package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdesk/internal/flagx"
	"github.com/dmitrijs2005/gophdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer and
// timex fields let a file override only the keys it mentions.
type JsonConfig struct {
	StoreDriver     *string         `json:"store_driver"`
	StoreDSN        *string         `json:"store_dsn"`
	RedisAddr       *string         `json:"redis_addr"`
	RedisPassword   *string         `json:"redis_password"`
	RedisDB         *int            `json:"redis_db"`
	RedisPrefix     *string         `json:"redis_prefix"`
	S3RootUser      *string         `json:"s3_root_user"`
	S3RootPassword  *string         `json:"s3_root_password"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3Prefix        *string         `json:"s3_prefix"`
	SecretKey       *string         `json:"secret_key"`
	AdminUsername   *string         `json:"admin_username"`
	AdminSecret     *string         `json:"admin_secret"`
	SimulateLatency *bool           `json:"simulate_latency"`
	AuthDelay       *timex.Duration `json:"auth_delay"`
	ListDelay       *timex.Duration `json:"list_delay"`
	MutateDelay     *timex.Duration `json:"mutate_delay"`
	LogLevel        *string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setIf(&config.StoreDriver, c.StoreDriver)
	setIf(&config.StoreDSN, c.StoreDSN)
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.RedisPassword, c.RedisPassword)
	setIf(&config.RedisDB, c.RedisDB)
	setIf(&config.RedisPrefix, c.RedisPrefix)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.S3Prefix, c.S3Prefix)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.AdminUsername, c.AdminUsername)
	setIf(&config.AdminSecret, c.AdminSecret)
	setIf(&config.SimulateLatency, c.SimulateLatency)
	setIf(&config.LogLevel, c.LogLevel)

	if c.AuthDelay != nil {
		config.AuthDelay = c.AuthDelay.Duration
	}
	if c.ListDelay != nil {
		config.ListDelay = c.ListDelay.Duration
	}
	if c.MutateDelay != nil {
		config.MutateDelay = c.MutateDelay.Duration
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
