// Package storage opens the key-value backend selected in the config:
// it creates the driver connection, applies embedded goose migrations for
// the SQL drivers, and hands back the kv.Repository with its closer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophdesk/internal/config"
	"github.com/dmitrijs2005/gophdesk/internal/filex"
	"github.com/dmitrijs2005/gophdesk/internal/repositories/kv"
	"github.com/dmitrijs2005/gophdesk/internal/storage/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// Store is an opened backend.
type Store struct {
	repo   kv.Repository
	closer func() error
}

// Repository returns the key-value repository of the store.
func (s *Store) Repository() kv.Repository {
	return s.repo
}

// Close releases the driver connection.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Test seams.
var (
	openDB         = sql.Open
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	newRedisClient = func(opts *redis.Options) redis.UniversalClient {
		return redis.NewClient(opts)
	}
	newS3Client = defaultS3Client
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Open connects to the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return &Store{repo: kv.NewMemoryRepository()}, nil
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverRedis:
		return openRedis(ctx, cfg)
	case config.DriverS3:
		return openS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Store, error) {
	if filex.IsFileDSN(cfg.StoreDSN) {
		if _, err := filex.EnsureParentDir(cfg.StoreDSN); err != nil {
			return nil, err
		}
	}

	db, err := openDB("sqlite", cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time, and :memory: databases live on one connection
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, migrations.SQLite, "sqlite3", "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{repo: kv.NewSQLiteRepository(db), closer: db.Close}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := openDB("pgx", cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runMigrations(ctx, db, migrations.Postgres, "postgres", "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{repo: kv.NewPostgresRepository(db), closer: db.Close}, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (*Store, error) {
	client := newRedisClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{repo: kv.NewRedisRepository(client, cfg.RedisPrefix), closer: client.Close}, nil
}

func openS3(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &Store{repo: kv.NewS3Repository(client, cfg.S3Bucket, cfg.S3Prefix)}, nil
}

func defaultS3Client(ctx context.Context, cfg *config.Config) (kv.S3API, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		// MinIO and most self-hosted endpoints need path-style addressing
		o.UsePathStyle = true
	}), nil
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
