package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"habitvault/internal/shared"
)

// BackupSource identifies this tool in every backup it produces.
const BackupSource = "habitvault"

// BackupMetadata describes when, by what, and for whom a backup was created.
type BackupMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	Source    string    `json:"source"`
	Username  string    `json:"username"`
}

// Backup is the portable snapshot of one account's tasks plus metadata.
// Built once at export time and never mutated in place; any external edit
// produces a new document that must re-pass [UnmarshalBackup] on load.
type Backup struct {
	Metadata BackupMetadata `json:"metadata"`
	Tasks    []Task         `json:"tasks"`
}

// NewBackup builds a backup document from a fetched task sequence, stamping
// the current time and the fixed source constant. Task order is preserved
// exactly.
func NewBackup(tasks []Task, username string) *Backup {
	if tasks == nil {
		tasks = []Task{}
	}
	return &Backup{
		Metadata: BackupMetadata{
			CreatedAt: time.Now().UTC(),
			Source:    BackupSource,
			Username:  username,
		},
		Tasks: tasks,
	}
}

// Marshal produces the canonical pretty-printed JSON encoding, suitable for
// both file export and storage persistence. Round-trips exactly through
// [UnmarshalBackup].
func (b *Backup) Marshal() ([]byte, error) {
	return shared.MarshalJSON(b, true)
}

// Counts tallies the document's tasks by type.
func (b *Backup) Counts() TaskCounts {
	return CountTasks(b.Tasks)
}

// TasksByType returns the document-order subsequence of tasks of one type.
func (b *Backup) TasksByType(tt TaskType) []Task {
	var out []Task
	for _, t := range b.Tasks {
		if t.Type == tt {
			out = append(out, t)
		}
	}
	return out
}

// UnmarshalBackup decodes and structurally validates a backup document.
//
// Malformed JSON wraps [shared.ErrParse]. Well-formed text that is not an
// object, lacks a metadata object, or whose tasks field is not an array
// wraps [shared.ErrValidation]. Individual task fields are not validated.
func UnmarshalBackup(data []byte) (*Backup, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}

	var shell map[string]json.RawMessage
	if err := json.Unmarshal(data, &shell); err != nil {
		return nil, fmt.Errorf("%w: backup must be a JSON object", shared.ErrValidation)
	}

	metaRaw, ok := shell["metadata"]
	if !ok || string(metaRaw) == "null" {
		return nil, fmt.Errorf("%w: missing metadata object", shared.ErrValidation)
	}
	var metadata BackupMetadata
	if err := json.Unmarshal(metaRaw, &metadata); err != nil {
		return nil, fmt.Errorf("%w: invalid metadata object: %v", shared.ErrValidation, err)
	}

	tasksRaw, ok := shell["tasks"]
	if !ok || string(tasksRaw) == "null" {
		return nil, fmt.Errorf("%w: tasks must be an array", shared.ErrValidation)
	}
	var tasks []Task
	if err := json.Unmarshal(tasksRaw, &tasks); err != nil {
		return nil, fmt.Errorf("%w: tasks must be an array: %v", shared.ErrValidation, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}

	return &Backup{Metadata: metadata, Tasks: tasks}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFilename derives the conventional export file name,
// habitica_backup_<username>_<date>.json, with the username lowercased and
// non-alphanumerics collapsed to underscores.
func ExportFilename(username string, at time.Time) string {
	safe := unsafeFilenameChars.ReplaceAllString(strings.ToLower(username), "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "user"
	}
	return fmt.Sprintf("habitica_backup_%s_%s.json", safe, at.Format("2006-01-02"))
}
