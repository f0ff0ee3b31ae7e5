// Plume - backend for a document editor with AI writing suggestions.
// Entry point: flag parsing and the serve/migrate commands.

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plumenote/plume/internal/infra/config"
	"github.com/plumenote/plume/internal/infra/sqlite"
	"github.com/plumenote/plume/internal/server"
	"github.com/plumenote/plume/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("plume", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp {
		printHelp(out)
		return 0
	}

	command := "serve"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(out, "plume: %v\n", err) //nolint:errcheck
		return 1
	}

	switch command {
	case "serve":
		return serve(cfg, out)
	case "migrate":
		return migrate(cfg, out)
	default:
		fmt.Fprintf(out, "plume: unknown command %q\n", command) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// openDB opens the configured database and applies pending migrations.
func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := sqlite.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return db, nil
}

// migrate applies pending migrations and exits.
func migrate(cfg config.Config, out io.Writer) int {
	db, err := openDB(cfg)
	if err != nil {
		fmt.Fprintf(out, "plume: migrate: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "plume: migrate: %v\n", err) //nolint:errcheck
		return 1
	}
	fmt.Fprintf(out, "migrations applied, schema version %d\n", v) //nolint:errcheck
	return 0
}

// serve runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func serve(cfg config.Config, out io.Writer) int {
	db, err := openDB(cfg)
	if err != nil {
		fmt.Fprintf(out, "plume: %v\n", err) //nolint:errcheck
		return 1
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srv := server.NewServer(db, srvCfg, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(out, "plume: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(out, "plume: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	}
}

func printHelp(out io.Writer) {
	helpText := `Plume - document editor backend with AI writing suggestions

Usage:
  plume [options] [command]

Options:
  --version    Show version information
  --help       Show this help message
  --config     Path to YAML config file

Commands:
  serve        Start the server (default)
  migrate      Run database migrations and exit

Examples:
  plume --version
  plume --config plume.yaml serve
  plume migrate`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
