package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"habitvault/internal/models"
	"habitvault/internal/shared"
	"habitvault/internal/tasks"
)

// ImportRun verifies the target account and replays a backup's tasks into it.
func (r *Runner) ImportRun(ctx context.Context, cmd *cli.Command) error {
	source, backup, err := r.importSource(cmd)
	if err != nil {
		return err
	}

	creds := models.Credentials{
		UserID:   strings.TrimSpace(cmd.String("user-id")),
		APIToken: strings.TrimSpace(cmd.String("token")),
	}
	if !creds.Valid() {
		if creds, err = r.credentials(); err != nil {
			return err
		}
	}

	session := tasks.NewSession(backup)
	session.SetCredentials(creds)
	if err := applySelection(session, cmd); err != nil {
		return err
	}

	r.logger.Info("starting import", "source", source, "selected", session.SelectedCount())
	r.writePlain("Importing %d of %d tasks from %s\n\n", session.SelectedCount(), len(backup.Tasks), source)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.VerifyTarget:
				r.writePlain("🔑 %s\n", update.Message)
			case tasks.CreateTasks:
				r.writePlain("   %s\n", update.Message)
			case tasks.ImportDone:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	if err := r.engine.VerifyTarget(ctx, session, progressCh); err != nil {
		close(progressCh)
		return err
	}

	result, runErr := r.engine.RunImport(ctx, session, progressCh)
	close(progressCh)

	if result == nil {
		return runErr
	}

	r.writePlainln("═══════════════════════════════════════")
	if runErr != nil {
		r.writePlain("Import Stopped\n")
	} else {
		r.writePlain("Import Complete!\n")
	}
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Target: %s\n", session.TargetUsername())
	r.writePlain("Created: %d/%d\n", result.SuccessCount, result.TotalSelected)

	if result.FailedCount > 0 {
		r.writePlain("\nFailed to create %d tasks:\n", result.FailedCount)
		for _, attempt := range result.Results {
			if attempt.Error != nil {
				r.writePlain("  - [%s] %s: %v\n", attempt.Task.Type, attempt.Task.Text, attempt.Error)
			}
		}
		if skipped := result.TotalSelected - len(result.Results); skipped > 0 {
			r.writePlain("%d selected tasks were not attempted.\n", skipped)
		}
	}

	return runErr
}

// importSource loads the backup named by --backup or --file, exactly one of
// which must be set.
func (r *Runner) importSource(cmd *cli.Command) (string, *models.Backup, error) {
	key := cmd.String("backup")
	path := cmd.String("file")

	switch {
	case key != "" && path != "":
		return "", nil, fmt.Errorf("%w: --backup and --file are mutually exclusive", shared.ErrInvalidFlag)
	case key != "":
		backup, err := r.repo.Load(key)
		return fmt.Sprintf("backup %s", key), backup, err
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read backup file: %w", err)
		}
		backup, err := r.repo.LoadFromFile(data)
		return path, backup, err
	default:
		return "", nil, fmt.Errorf("%w: one of --backup or --file", shared.ErrMissingArgument)
	}
}

// applySelection marks the session's tasks from the --task positions when
// given, otherwise from the optional --type filter.
func applySelection(session *tasks.ImportSession, cmd *cli.Command) error {
	positions := cmd.StringSlice("task")
	if len(positions) == 0 {
		return filterSelection(session, cmd.String("type"))
	}

	for _, raw := range positions {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(session.Backup.Tasks) {
			return fmt.Errorf("%w: task position '%s' (1-%d)", shared.ErrInvalidFlag, raw, len(session.Backup.Tasks))
		}
		if !session.Selected(n - 1) {
			session.Toggle(n - 1)
		}
	}
	return nil
}
