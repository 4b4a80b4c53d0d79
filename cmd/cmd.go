// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// profileCommand handles the stored credential pair.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage Habitica credentials",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Save a user ID and API token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Usage:    "Habitica user ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "Habitica API token",
						Required: true,
					},
				},
				Action: r.ProfileSet,
			},
			{
				Name:   "show",
				Usage:  "Show the active credentials (token masked)",
				Action: r.ProfileShow,
			},
			{
				Name:   "verify",
				Usage:  "Check the active credentials against the Habitica API",
				Action: r.ProfileVerify,
			},
			{
				Name:   "clear",
				Usage:  "Remove the stored credential pair",
				Action: r.ProfileClear,
			},
		},
	}
}

// backupCommand handles backup snapshots.
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "backup",
		Aliases: []string{"bk"},
		Usage:   "Create and manage task backups",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Fetch all tasks, store a new backup, and write the export file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export file path (defaults to habitica_backup_<user>_<date>.json)",
					},
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "Write the export file only, skip the local store",
					},
				},
				Action: r.BackupCreate,
			},
			{
				Name:  "list",
				Usage: "List stored backups, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BackupList,
			},
			{
				Name:  "show",
				Usage: "Show a stored backup",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the backup document as JSON",
					},
					&cli.BoolFlag{
						Name:  "markdown",
						Usage: "Output the backup as Markdown",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output the task list as CSV",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.BackupShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a stored backup",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.BackupDelete,
			},
			{
				Name:  "export",
				Usage: "Write a stored backup to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, text)",
						Value:   "json",
					},
				},
				Action: r.BackupExport,
			},
			{
				Name:  "load",
				Usage: "Load a backup document from a JSON file into the store",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.BackupLoad,
			},
		},
	}
}

// importCommand handles replaying backups into an account.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import backed-up tasks into an account",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Verify the target account and create the selected tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "backup",
						Aliases: []string{"b"},
						Usage:   "Backup key to import from (see 'backup list')",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Backup JSON file to import from instead of a stored key",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only import tasks of this type (habit, daily, or todo)",
					},
					&cli.StringSliceFlag{
						Name:  "task",
						Usage: "Only import the task at this position (repeatable, 1-based; see 'backup show')",
					},
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Target user ID (defaults to the active profile)",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Target API token (defaults to the active profile)",
					},
				},
				Action: r.ImportRun,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive backup restores.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and importing backups",
		Action:  r.TUI,
	}
}
