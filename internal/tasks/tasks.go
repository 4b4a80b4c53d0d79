// package tasks implements backup import operations against a task service account.
//
// The core abstraction is ImportEngine, which verifies the target account,
// assembles backups, and replays selected tasks into the account. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"habitvault/internal/models"
	"habitvault/internal/services"
	"habitvault/internal/shared"
)

// DefaultCreateDelay is the pause inserted between consecutive task
// creations so bursts of imports stay under the service's rate limits.
const DefaultCreateDelay = 200 * time.Millisecond

// State tracks an import session through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateVerifying
	StateReady
	StateImporting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateReady:
		return "ready"
	case StateImporting:
		return "importing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// TaskImportResult represents the result of attempting to create a single task.
type TaskImportResult struct {
	Task    models.Task  // Task as it appears in the backup
	Created *models.Task // Created task (nil if the create failed)
	Error   error        // Error if the create failed
}

// ImportRunResult contains all data from an import run.
type ImportRunResult struct {
	Results       []TaskImportResult // Individual create results, in attempt order
	SuccessCount  int                // Number of tasks created
	FailedCount   int                // Number of failed creates
	TotalSelected int                // Tasks selected for this run
}

// ImportSession holds the mutable state of one backup-to-account import:
// the source backup, the target credentials, verification status, and the
// task selection. Sessions are single-goroutine; the engine mutates them.
type ImportSession struct {
	Backup      *models.Backup
	Credentials models.Credentials

	state          State
	verified       bool
	targetUsername string
	selection      map[int]bool
}

// NewSession creates an idle session for importing from the given backup.
func NewSession(backup *models.Backup) *ImportSession {
	return &ImportSession{
		Backup:    backup,
		state:     StateIdle,
		selection: make(map[int]bool),
	}
}

// State reports the session's current lifecycle state.
func (s *ImportSession) State() State { return s.state }

// Verified reports whether the target account passed verification.
func (s *ImportSession) Verified() bool { return s.verified }

// TargetUsername returns the profile name confirmed during verification.
func (s *ImportSession) TargetUsername() string { return s.targetUsername }

// SetCredentials replaces the target credentials. Any prior verification
// no longer applies, so the session drops back to idle.
func (s *ImportSession) SetCredentials(creds models.Credentials) {
	s.Credentials = creds
	s.verified = false
	s.targetUsername = ""
	s.state = StateIdle
}

// Toggle flips the selection of the task at index i. Out-of-range indices
// are ignored.
func (s *ImportSession) Toggle(i int) {
	if s.Backup == nil || i < 0 || i >= len(s.Backup.Tasks) {
		return
	}
	if s.selection[i] {
		delete(s.selection, i)
	} else {
		s.selection[i] = true
	}
}

// Selected reports whether the task at index i is selected.
func (s *ImportSession) Selected(i int) bool { return s.selection[i] }

// SelectedCount returns the number of selected tasks.
func (s *ImportSession) SelectedCount() int { return len(s.selection) }

// SelectAll sets the selection of every task of the given type. The zero
// type applies to every task regardless of type.
func (s *ImportSession) SelectAll(tt models.TaskType, selected bool) {
	if s.Backup == nil {
		return
	}
	for i, task := range s.Backup.Tasks {
		if tt != "" && task.Type != tt {
			continue
		}
		if selected {
			s.selection[i] = true
		} else {
			delete(s.selection, i)
		}
	}
}

// SelectedTasks returns the selected tasks in backup document order,
// regardless of the order they were selected in.
func (s *ImportSession) SelectedTasks() []models.Task {
	if s.Backup == nil {
		return nil
	}
	indices := make([]int, 0, len(s.selection))
	for i := range s.selection {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	selected := make([]models.Task, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, s.Backup.Tasks[i])
	}
	return selected
}

// ImportEngine drives backup creation and import runs against a Gateway.
type ImportEngine struct {
	gateway services.Gateway
	delay   time.Duration
}

// NewImportEngine creates an ImportEngine backed by the provided gateway.
func NewImportEngine(gateway services.Gateway) *ImportEngine {
	return &ImportEngine{
		gateway: gateway,
		delay:   DefaultCreateDelay,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// CreateBackup fetches the account's profile and full task collections and
// assembles them into a backup document.
func (e *ImportEngine) CreateBackup(ctx context.Context, creds models.Credentials, progress chan<- ProgressUpdate) (*models.Backup, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("%w: user ID and API token are required", shared.ErrMissingCredentials)
	}

	e.sendProgress(progress, fetchProfileUpdate())
	e.sendProgress(progress, fetchTasksUpdate())

	export, err := e.gateway.FetchAllTasks(ctx, creds)
	if err != nil {
		return nil, err
	}

	backup := models.NewBackup(export.Tasks, export.Username)
	e.sendProgress(progress, backupBuiltUpdate(backup))
	return backup, nil
}

// VerifyTarget confirms the session's credentials against the account
// service and records the target profile name. On success the session is
// ready to import; on failure it returns to idle.
func (e *ImportEngine) VerifyTarget(ctx context.Context, session *ImportSession, progress chan<- ProgressUpdate) error {
	if !session.Credentials.Valid() {
		return fmt.Errorf("%w: user ID and API token are required", shared.ErrMissingCredentials)
	}

	session.state = StateVerifying
	e.sendProgress(progress, verifyingUpdate())

	name, err := e.gateway.FetchProfileName(ctx, session.Credentials)
	if err != nil {
		session.state = StateIdle
		session.verified = false
		return err
	}

	session.verified = true
	session.targetUsername = name
	session.state = StateReady
	e.sendProgress(progress, verifiedUpdate(name))
	return nil
}

// RunImport creates the session's selected tasks in the target account,
// sequentially and in backup document order, pausing between consecutive
// creates to respect service rate limits. The run stops at the first
// failed create; tasks after the failure are not attempted.
func (e *ImportEngine) RunImport(ctx context.Context, session *ImportSession, progress chan<- ProgressUpdate) (*ImportRunResult, error) {
	selected := session.SelectedTasks()
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no tasks selected for import", shared.ErrNoSelection)
	}
	if !session.verified {
		return nil, fmt.Errorf("%w: verify the target account before importing", shared.ErrNotVerified)
	}

	session.state = StateImporting
	total := len(selected)
	result := &ImportRunResult{
		Results:       make([]TaskImportResult, 0, total),
		TotalSelected: total,
	}

	for i, task := range selected {
		if i > 0 {
			if err := e.pause(ctx); err != nil {
				session.state = StateFailed
				return result, err
			}
		}

		created, err := e.gateway.CreateTask(ctx, session.Credentials, task)
		if err != nil {
			result.Results = append(result.Results, TaskImportResult{Task: task, Error: err})
			result.FailedCount++
			session.state = StateFailed
			e.sendProgress(progress, taskFailedUpdate(result.SuccessCount, total, task, err))
			return result, err
		}

		result.Results = append(result.Results, TaskImportResult{Task: task, Created: created})
		result.SuccessCount++
		e.sendProgress(progress, taskCreatedUpdate(result.SuccessCount, total, task))
	}

	session.state = StateCompleted
	e.sendProgress(progress, importDoneUpdate(result))
	return result, nil
}

// pause waits the inter-create delay, bailing out early if the context is
// cancelled.
func (e *ImportEngine) pause(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
