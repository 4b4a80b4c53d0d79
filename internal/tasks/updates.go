package tasks

import (
	"fmt"

	"habitvault/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	VerifyTarget Phase = iota
	FetchProfile
	FetchTasks
	BuildBackup
	CreateTasks
	ImportDone
)

func (p Phase) String() string {
	switch p {
	case VerifyTarget:
		return "verify_target"
	case FetchProfile:
		return "fetch_profile"
	case FetchTasks:
		return "fetch_tasks"
	case BuildBackup:
		return "build_backup"
	case CreateTasks:
		return "create_tasks"
	case ImportDone:
		return "import_done"
	default:
		return ""
	}
}

func verifyingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyTarget,
		Step:    1,
		Total:   1,
		Message: "Verifying target account credentials...",
	}
}

func verifiedUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Target account verified: %s", username),
		Data:    username,
	}
}

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   2,
		Message: "Fetching account profile...",
	}
}

func fetchTasksUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTasks,
		Step:    2,
		Total:   2,
		Message: "Fetching habits, dailies, and todos...",
	}
}

func backupBuiltUpdate(backup *models.Backup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildBackup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Backup assembled: %d tasks for %s", len(backup.Tasks), backup.Metadata.Username),
		Data:    backup,
	}
}

// CreateTasks updates carry the completed-create count in Step, never the
// index of an in-flight attempt.

func taskCreatedUpdate(completed, total int, task models.Task) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTasks,
		Step:    completed,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Created %s: %s", completed, total, task.Type, task.Text),
	}
}

func taskFailedUpdate(completed, total int, task models.Task, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTasks,
		Step:    completed,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %v", task.Text, err),
	}
}

func importDoneUpdate(result *ImportRunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    result.TotalSelected,
		Total:   result.TotalSelected,
		Message: fmt.Sprintf("Import finished: %d created, %d failed", result.SuccessCount, result.FailedCount),
		Data:    result,
	}
}
