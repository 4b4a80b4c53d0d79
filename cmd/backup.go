package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"habitvault/internal/formatter"
	"habitvault/internal/models"
	"habitvault/internal/shared"
	"habitvault/internal/tasks"
)

// BackupCreate fetches the account's tasks and stores a new backup snapshot.
func (r *Runner) BackupCreate(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	r.logger.Info("creating backup", "user_id", creds.UserID)
	r.writePlain("Creating backup...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	backup, err := r.engine.CreateBackup(ctx, creds, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	var key string
	if !cmd.Bool("no-save") {
		if key, err = r.repo.Save(backup); err != nil {
			return err
		}
	}

	written, err := formatter.WriteJSONExport(backup, cmd.String("output"))
	if err != nil {
		return err
	}

	counts := backup.Counts()
	r.writePlainln("═══════════════════════════════════════")
	r.writePlain("Backup Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Account: %s\n", backup.Metadata.Username)
	r.writePlain("Tasks: %d (%d habits, %d dailies, %d todos)\n",
		counts.Total(), counts.Habits, counts.Dailys, counts.Todos)
	r.writePlain("File: %s\n", written)
	if key != "" {
		r.writePlain("Key: %s\n", key)
	}
	return nil
}

// BackupList prints stored backups, newest first.
func (r *Runner) BackupList(ctx context.Context, cmd *cli.Command) error {
	records, err := r.repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No backups stored. Run 'habitvault backup create' first.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Stored Backups (%d)", len(records)))
	for _, record := range records {
		c := record.Counts
		r.writePlain("%s\n", record.Key)
		r.writePlain("  %s • %s • %d tasks (%d/%d/%d)\n",
			record.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			record.Username, c.Total(), c.Habits, c.Dailys, c.Todos)
	}
	return nil
}

// BackupShow prints a stored backup's summary or its full JSON document.
func (r *Runner) BackupShow(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: backup key", shared.ErrMissingArgument)
	}

	backup, err := r.repo.Load(key)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(backup, cmd.Bool("pretty"))
	}
	if cmd.Bool("markdown") {
		data, err := formatter.ExportToMarkdown(backup)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	if cmd.Bool("csv") {
		data, err := formatter.ExportToCSV(backup)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	counts := backup.Counts()
	r.writePlainHeader(fmt.Sprintf("Backup for %s", backup.Metadata.Username))
	r.writePlain("Created: %s\n", backup.Metadata.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	r.writePlain("Source: %s\n", backup.Metadata.Source)
	r.writePlain("Tasks: %d (%d habits, %d dailies, %d todos)\n\n",
		counts.Total(), counts.Habits, counts.Dailys, counts.Todos)

	for i, task := range backup.Tasks {
		r.writePlain("%d. [%s] %s\n", i+1, task.Type, task.Text)
	}
	return nil
}

// BackupDelete removes a stored backup.
func (r *Runner) BackupDelete(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: backup key", shared.ErrMissingArgument)
	}

	if _, err := r.repo.Load(key); err != nil {
		return err
	}
	if err := r.repo.Delete(key); err != nil {
		return err
	}

	r.logger.Info("backup deleted", "key", key)
	r.writePlain("✓ Deleted backup %s\n", key)
	return nil
}

// BackupExport writes a stored backup to a file in the requested format.
func (r *Runner) BackupExport(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: backup key", shared.ErrMissingArgument)
	}

	backup, err := r.repo.Load(key)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	format := cmd.String("format")

	var written string
	switch format {
	case "json":
		written, err = formatter.WriteJSONExport(backup, output)
	case "csv":
		written, err = formatter.WriteCSVExport(backup, output)
	case "markdown", "md":
		written, err = formatter.WriteMarkdownExport(backup, output)
	case "text", "txt":
		written, err = formatter.WriteTextExport(backup, output)
	default:
		return fmt.Errorf("%w: format '%s' (must be json, csv, markdown, or text)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	r.logger.Info("backup exported", "key", key, "format", format, "path", written)
	r.writePlain("✓ Exported backup to %s\n", written)
	return nil
}

// BackupLoad reads a backup document from a JSON file and stores it.
func (r *Runner) BackupLoad(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	backup, err := r.repo.LoadFromFile(data)
	if err != nil {
		return err
	}

	key, err := r.repo.Save(backup)
	if err != nil {
		return err
	}

	counts := backup.Counts()
	r.writePlain("✓ Loaded backup for %s (%d tasks) as %s\n",
		backup.Metadata.Username, counts.Total(), key)
	return nil
}

// filterSelection marks the session's tasks matching the optional type
// filter. An empty filter selects everything.
func filterSelection(session *tasks.ImportSession, typeFilter string) error {
	if typeFilter == "" {
		session.SelectAll("", true)
		return nil
	}

	tt, ok := models.ParseTaskType(typeFilter)
	if !ok {
		return fmt.Errorf("%w: type '%s' (must be habit, daily, or todo)", shared.ErrInvalidFlag, typeFilter)
	}
	session.SelectAll(tt, true)
	return nil
}
