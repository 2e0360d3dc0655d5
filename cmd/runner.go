package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/acx/internal/repositories"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores and the ledger are opened lazily: most commands need only one of them.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.SourceStore
	dest       services.DestinationStore
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
	closers    []func() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Source      services.SourceStore
	Destination services.DestinationStore
	DB          *sql.DB
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		dest:       opts.Destination,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        time.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, auditCommand, quotaCommand, exportCommand, historyCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. to keep logs off a TUI's screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig reads the --config file when it exists; otherwise the defaults stay in place.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	if err := config.Validate(); err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("loaded config", "path", path)
	return ctx, nil
}

// sourceStore returns the configured source store, connecting on first use.
func (r *Runner) sourceStore(ctx context.Context) (services.SourceStore, error) {
	if r.source != nil {
		return r.source, nil
	}
	store, err := services.NewFirebaseStore(ctx, r.config.Source, shared.WithLogger(r.logger, "store", "source"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source project: %w", err)
	}
	r.source = store
	r.closers = append(r.closers, store.Close)
	return store, nil
}

// destinationStore returns the configured destination store, connecting on first use.
func (r *Runner) destinationStore(ctx context.Context) (services.DestinationStore, error) {
	if r.dest != nil {
		return r.dest, nil
	}
	store, err := services.NewFirebaseStore(ctx, r.config.Destination, shared.WithLogger(r.logger, "store", "destination"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to destination project: %w", err)
	}
	r.dest = store
	r.closers = append(r.closers, store.Close)
	return store, nil
}

// ledger returns the run repository, opening and migrating the database on first use.
func (r *Runner) ledger() (*repositories.RunRepository, error) {
	if r.db == nil {
		db, err := shared.OpenLedger(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open run ledger: %w", err)
		}
		r.db = db
		r.closers = append(r.closers, db.Close)
	}
	return repositories.NewRunRepository(r.db), nil
}

// Close releases every store and database the runner opened itself.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("failed to close resource", "error", err)
		}
	}
	r.closers = nil
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
