package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdesk/internal/flagx"
)

var flagSpec = flagx.Spec{
	Valued:   []string{"-t", "-d", "-r", "-k", "-v", "-b", "-e", "-g", "-u", "-p"},
	Switches: []string{"-l"},
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-t string   store driver (memory, sqlite, postgres, redis, s3)
//	-d string   store DSN (SQLite file or PostgreSQL DSN)
//	-r string   redis address
//	-k string   token signing secret
//	-v string   log level
//	-b string   S3 bucket name
//	-e string   S3 base endpoint
//	-g string   S3 region
//	-u string   S3 root user
//	-p string   S3 root password
//	-l bool     simulate network latency (use -l=false to disable)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.StoreDriver, "t", config.StoreDriver, "store driver")
	fs.StringVar(&config.StoreDSN, "d", config.StoreDSN, "store DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "token signing secret")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.BoolVar(&config.SimulateLatency, "l", config.SimulateLatency, "simulate network latency")

	if err := fs.Parse(flagSpec.Filter(args)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
