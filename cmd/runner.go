package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"habitvault/internal/backups"
	"habitvault/internal/models"
	"habitvault/internal/services"
	"habitvault/internal/shared"
	"habitvault/internal/store"
	"habitvault/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	store   store.Store
	repo    *backups.Repository
	gateway services.Gateway
	engine  *tasks.ImportEngine
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Store   store.Store
	Gateway services.Gateway
	Logger  *log.Logger
	Output  io.Writer
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
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Gateway == nil {
		opts.Gateway = services.NewHabiticaService(services.HabiticaOpts{
			BaseURL:  opts.Config.API.BaseURL,
			ClientID: opts.Config.API.ClientID,
			Limiter:  services.LimiterForRPM(opts.Config.API.RequestsPerMinute),
		})
	}

	repo := backups.NewRepository(opts.Store, opts.Logger)
	engine := tasks.NewImportEngine(opts.Gateway)

	return &Runner{
		config:  opts.Config,
		store:   opts.Store,
		repo:    repo,
		gateway: opts.Gateway,
		engine:  engine,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, profileCommand, backupCommand, importCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// credentials resolves the active credential pair: a profile saved in the
// store wins over the static pair in the config file.
func (r *Runner) credentials() (models.Credentials, error) {
	var creds models.Credentials

	if raw, err := r.store.Get(models.CredentialsKey); err == nil {
		if err := json.Unmarshal([]byte(raw), &creds); err != nil {
			return creds, fmt.Errorf("%w: stored profile is unreadable", shared.ErrInvalidConfig)
		}
		if creds.Valid() {
			return creds, nil
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return creds, err
	}

	creds = models.Credentials{
		UserID:   r.config.Credentials.UserID,
		APIToken: r.config.Credentials.APIToken,
	}
	if !creds.Valid() {
		return creds, fmt.Errorf("%w: run 'habitvault profile set' or fill in config.toml", shared.ErrMissingCredentials)
	}
	return creds, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
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
