// Command apilabctl runs maintenance tasks against the API Lab database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/config"
	"github.com/apilab/apilab/internal/repository"
	"github.com/apilab/apilab/internal/seed"
)

const commandTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(os.Stderr, "apilabctl:", err)
		os.Exit(1)
	}
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "apilabctl:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "apilabctl",
		Usage:     "manage the API Lab database",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres://, postgresql:// or sqlite://<path>",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "sqlite://apilab.db",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply schema migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "roll back every migration (PostgreSQL only)"},
				},
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "insert the default accounts and todos into an empty database",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "reset even when users already exist"},
				},
				Action: runSeed,
			},
			{
				Name:   "reset",
				Usage:  "delete all todos and request logs, then restore the default data",
				Action: runReset,
			},
			{
				Name:      "hash-password",
				Usage:     "print the argon2id hash of a password",
				ArgsUsage: "<password>",
				Action:    runHashPassword,
			},
			{
				Name:  "token",
				Usage: "issue a bearer token for a user id",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user-id", Required: true},
					&cli.StringFlag{
						Name:    "secret",
						EnvVars: []string{"JWT_SECRET_KEY"},
						Value:   config.DefaultJWTSecret,
					},
				},
				Action: runToken,
			},
		},
	}
}

func runMigrate(c *cli.Context) error {
	databaseURL := c.String("database-url")
	isPostgres := strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://")

	if c.Bool("down") {
		if !isPostgres {
			return errors.New("--down is only supported for PostgreSQL")
		}
		if err := repository.MigrateDown(databaseURL); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "migrations rolled back")
		return nil
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	store.Close()

	fmt.Fprintln(c.App.Writer, "migrations applied")
	return nil
}

func runSeed(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	seeder := seed.NewSeeder(store, quietLogger())
	if c.Bool("force") {
		result, err := seeder.Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "seeded %d users and %d todos\n", result.Users, result.Todos)
		return nil
	}

	seeded, err := seeder.EnsureSeeded(ctx)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(c.App.Writer, "database already has users, nothing to do")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "seeded default data (%s / %s)\n", seed.AdminEmail, seed.UserEmail)
	return nil
}

func runReset(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	result, err := seed.NewSeeder(store, quietLogger()).Reset(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "reset complete: %d users, %d todos\n", result.Users, result.Todos)
	return nil
}

func runHashPassword(c *cli.Context) error {
	password := c.Args().First()
	if password == "" {
		return errors.New("password argument is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hash)
	return nil
}

func runToken(c *cli.Context) error {
	issued, err := auth.NewTokenIssuer(c.String("secret")).Issue(c.Int64("user-id"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, issued.Token)
	return nil
}

func openStore(c *cli.Context) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	store, err := repository.Open(ctx, c.String("database-url"), repository.Options{Migrate: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
