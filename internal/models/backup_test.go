package models

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"habitvault/internal/shared"
)

func sampleTasks() []Task {
	up, down := true, false
	return []Task{
		{ID: "h1", Type: TaskHabit, Text: "Drink water", Up: &up, Down: &down, CounterUp: 3},
		{ID: "d1", Type: TaskDaily, Text: "Journal", Frequency: "daily", EveryX: 1, Notes: "before bed"},
		{ID: "t1", Type: TaskTodo, Text: "File taxes", Priority: 2, Checklist: []ChecklistItem{
			{Text: "Gather forms", Completed: true, ID: "c1"},
			{Text: "Submit", Completed: false, ID: "c2"},
		}},
	}
}

func TestNewBackup(t *testing.T) {
	tasks := sampleTasks()
	before := time.Now().UTC()
	backup := NewBackup(tasks, "TestUser")
	after := time.Now().UTC()

	if backup.Metadata.Source != BackupSource {
		t.Errorf("Source = %q, want %q", backup.Metadata.Source, BackupSource)
	}
	if backup.Metadata.Username != "TestUser" {
		t.Errorf("Username = %q, want TestUser", backup.Metadata.Username)
	}
	if backup.Metadata.CreatedAt.Before(before) || backup.Metadata.CreatedAt.After(after) {
		t.Errorf("CreatedAt %v not within [%v, %v]", backup.Metadata.CreatedAt, before, after)
	}

	if len(backup.Tasks) != len(tasks) {
		t.Fatalf("got %d tasks, want %d", len(backup.Tasks), len(tasks))
	}
	for i := range tasks {
		if backup.Tasks[i].ID != tasks[i].ID {
			t.Errorf("task %d: order not preserved, got %q want %q", i, backup.Tasks[i].ID, tasks[i].ID)
		}
	}

	t.Run("nil tasks become empty sequence", func(t *testing.T) {
		b := NewBackup(nil, "u")
		if b.Tasks == nil || len(b.Tasks) != 0 {
			t.Errorf("Tasks = %#v, want empty non-nil slice", b.Tasks)
		}
	})
}

func TestBackupRoundTrip(t *testing.T) {
	backup := NewBackup(sampleTasks(), "RoundTrip User")

	data, err := backup.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded, err := UnmarshalBackup(data)
	if err != nil {
		t.Fatalf("UnmarshalBackup failed: %v", err)
	}

	if !decoded.Metadata.CreatedAt.Equal(backup.Metadata.CreatedAt) {
		t.Errorf("CreatedAt changed: %v != %v", decoded.Metadata.CreatedAt, backup.Metadata.CreatedAt)
	}
	decoded.Metadata.CreatedAt = backup.Metadata.CreatedAt
	if !reflect.DeepEqual(decoded, backup) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", decoded, backup)
	}
}

func TestUnmarshalBackup(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"malformed json", `{not json`, shared.ErrParse},
		{"truncated", `{"metadata": {"username":`, shared.ErrParse},
		{"missing metadata", `{"tasks": []}`, shared.ErrValidation},
		{"null metadata", `{"metadata": null, "tasks": []}`, shared.ErrValidation},
		{"missing tasks", `{"metadata": {"createdAt": "2024-01-01T00:00:00Z", "source": "x", "username": "u"}}`, shared.ErrValidation},
		{"null tasks", `{"metadata": {}, "tasks": null}`, shared.ErrValidation},
		{"tasks not an array", `{"metadata": {}, "tasks": {"id": "t1"}}`, shared.ErrValidation},
		{"top level array", `[1, 2, 3]`, shared.ErrValidation},
		{"valid empty", `{"metadata": {"createdAt": "2024-01-01T00:00:00Z", "source": "x", "username": "u"}, "tasks": []}`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backup, err := UnmarshalBackup([]byte(tc.input))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if backup.Tasks == nil {
				t.Error("expected non-nil task sequence")
			}
		})
	}

	t.Run("permissive task fields", func(t *testing.T) {
		// Unknown type and missing text load fine; they fail later, if at
		// all, when the remote service rejects them on import.
		input := `{"metadata": {"username": "u"}, "tasks": [{"id": "x", "type": "reward"}, {"id": "y"}]}`
		backup, err := UnmarshalBackup([]byte(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(backup.Tasks) != 2 {
			t.Fatalf("got %d tasks, want 2", len(backup.Tasks))
		}
		if counts := backup.Counts(); counts.Total() != 0 {
			t.Errorf("unknown types should not be counted, got %+v", counts)
		}
	})
}

func TestTasksByType(t *testing.T) {
	backup := NewBackup(sampleTasks(), "u")

	habits := backup.TasksByType(TaskHabit)
	if len(habits) != 1 || habits[0].ID != "h1" {
		t.Errorf("TasksByType(habit) = %+v", habits)
	}
	if got := backup.TasksByType(TaskType("reward")); got != nil {
		t.Errorf("expected nil for unknown type, got %+v", got)
	}
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		username string
		want     string
	}{
		{"Alice", "habitica_backup_alice_2024-03-15.json"},
		{"Frodo Baggins!", "habitica_backup_frodo_baggins_2024-03-15.json"},
		{"@@@", "habitica_backup_user_2024-03-15.json"},
		{"", "habitica_backup_user_2024-03-15.json"},
	}
	for _, tc := range cases {
		if got := ExportFilename(tc.username, at); got != tc.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tc.username, got, tc.want)
		}
	}

	for _, tc := range cases {
		if strings.ContainsAny(tc.want, " !@") {
			t.Errorf("unsafe characters leaked into %q", tc.want)
		}
	}
}
