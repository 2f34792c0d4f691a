package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophdesk/internal/auth"
	"github.com/dmitrijs2005/gophdesk/internal/buildinfo"
	"github.com/dmitrijs2005/gophdesk/internal/cli"
	"github.com/dmitrijs2005/gophdesk/internal/config"
	"github.com/dmitrijs2005/gophdesk/internal/directory"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
	"github.com/dmitrijs2005/gophdesk/internal/storage"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn(ctx, "store close failed", "error", err)
		}
	}()

	issuer := auth.NewTokenIssuer(cfg.SecretKey)

	opts := []directory.Option{
		directory.WithLogger(logger.With("component", "directory")),
		directory.WithBootstrap(cfg.AdminUsername, cfg.AdminSecret),
	}
	if cfg.SimulateLatency {
		opts = append(opts, directory.WithLatency(directory.Latency{
			Auth:   cfg.AuthDelay,
			List:   cfg.ListDelay,
			Mutate: cfg.MutateDelay,
		}))
	}

	svc := directory.NewService(store.Repository(), issuer, opts...)
	if err := svc.Initialize(ctx); err != nil {
		return err
	}
	logger.Debug(ctx, "directory ready", "driver", cfg.StoreDriver)

	app := cli.NewApp(svc, issuer, os.Stdin, os.Stdout, logger.With("component", "cli"))
	return app.Run(ctx)
}
