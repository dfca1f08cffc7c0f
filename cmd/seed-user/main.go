// Command seed-user creates an account directly in the document store,
// bypassing the HTTP forms. Useful for fixtures and local development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/avatarly/avatarly/internal/repository"
	"github.com/avatarly/avatarly/internal/service"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type options struct {
	databaseURL string
	name        string
	email       string
	age         string
	password    string
	migrate     bool
	format      string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if opts.migrate {
		if err := repository.Migrate(ctx, opts.databaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	repo, err := repository.New(ctx, opts.databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewAccountService(repo, nil, nil, logger)

	user, err := svc.Register(ctx, service.RegisterInput{
		Name:     opts.name,
		Email:    opts.email,
		Age:      opts.age,
		Password: opts.password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			return fmt.Errorf("email %s already registered", opts.email)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return writeOutput(stdout, opts.format, output{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("seed-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := &options{}
	fs.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	fs.StringVar(&opts.name, "name", "", "Display name")
	fs.StringVar(&opts.email, "email", "", "Email address")
	fs.StringVar(&opts.age, "age", "", "Age (free text)")
	fs.StringVar(&opts.password, "password", os.Getenv("SEED_PASSWORD"), "Password (defaults to $SEED_PASSWORD)")
	fs.BoolVar(&opts.migrate, "migrate", false, "Apply migrations before inserting")
	fs.StringVar(&opts.format, "format", "plain", "Output format: plain or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	for _, f := range []struct{ name, value string }{
		{"name", opts.name},
		{"email", opts.email},
		{"age", opts.age},
		{"password", opts.password},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%s is required", f.name)
		}
	}

	opts.format = strings.ToLower(opts.format)
	if opts.format != "plain" && opts.format != "json" {
		return nil, errors.New("invalid format; use plain or json")
	}

	return opts, nil
}

func writeOutput(w io.Writer, format string, out output) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprintln(w, out.UserID)
	return err
}
