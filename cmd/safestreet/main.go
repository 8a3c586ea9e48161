package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/safestreet/internal/client/api"
	"github.com/shandysiswandi/safestreet/internal/client/cli"
	"github.com/shandysiswandi/safestreet/internal/client/session"
	"golang.org/x/term"
)

func main() {
	configPath := flag.String("config", "safestreet.yaml", "client config file")
	debug := flag.Bool("debug", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("safestreet client failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.ServerURL, cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	store, err := session.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		return err
	}
	defer store.Close()

	app := cli.New(cli.Options{
		API:      client,
		Sessions: session.NewManager(store),
		In:       os.Stdin,
		Out:      os.Stdout,
		TTY:      term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
	})

	return app.Run(ctx)
}
