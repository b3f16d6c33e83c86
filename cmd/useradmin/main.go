// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Command useradmin is the operator tool for accounts and schema.

# Usage

	useradmin create -username <name> -email <addr> [-role moderator|admin]
	useradmin migrate up
	useradmin migrate down [-steps N]

The password for create is read from the terminal without echo, or from the
first lines of stdin when stdin is not a terminal.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/chirper/internal/platform/config"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/migration"
	pgstore "github.com/taibuivan/chirper/internal/platform/postgres"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/auth"
)

const usage = `usage:
  useradmin create -username <name> -email <addr> [-role moderator|admin]
  useradmin migrate up
  useradmin migrate down [-steps N]`

var errUsage = errors.New(usage)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})).With(slog.String("app", constants.AppName), slog.String("component", "useradmin"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], log, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, log *slog.Logger, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args[0] {
	case "create":
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		tokens, err := sec.NewTokenService(cfg.SessionSecret)
		if err != nil {
			return err
		}

		// No avatar can be supplied from the command line, so no image pipeline.
		service := auth.NewService(
			auth.NewUserRepository(pool),
			tokens,
			sec.NewPasswordHasher(cfg.BcryptCost),
			nil,
			auth.Options{TokenTTL: cfg.TokenTTL, PhoneRegion: cfg.PhoneRegion},
			log,
		)
		return runCreate(ctx, args[1:], service, newTerminalPrompt(os.Stdin, out), out)

	case "migrate":
		return runMigrate(args[1:], cfg.DatabaseURL, cfg.MigrationPath, log, out)

	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func runMigrate(args []string, dsn, path string, log *slog.Logger, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "up":
		if err := migration.RunUp(dsn, path, log); err != nil {
			return err
		}
	case "down":
		flags := newFlagSet("migrate down")
		steps := flags.Int("steps", 1, "number of migrations to roll back")
		if err := flags.Parse(args[1:]); err != nil {
			return errUsage
		}
		if *steps < 1 {
			return fmt.Errorf("-steps must be positive\n%w", errUsage)
		}
		if err := migration.RunDown(dsn, path, *steps, log); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migrate direction %q\n%w", args[0], errUsage)
	}

	_, err := fmt.Fprintf(out, "migrate %s: done\n", args[0])
	return err
}
