package ui

import (
	"habitvault/internal/backups"
	"habitvault/internal/models"
	"habitvault/internal/tasks"
)

// Messages delivered to the [Model] by commands.

type backupsFetchedMsg struct {
	records []backups.Record
	err     error
}

type backupLoadedMsg struct {
	record backups.Record
	backup *models.Backup
	err    error
}

type verifiedMsg struct {
	username string
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type importCompleteMsg struct {
	result *tasks.ImportRunResult
	err    error
}
