package backups

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"habitvault/internal/models"
	"habitvault/internal/shared"
	"habitvault/internal/store"
)

func testRepository(t *testing.T) (*Repository, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	logger := shared.NewLogger(io.Discard)
	return NewRepository(s, logger), s
}

func TestRepositorySave(t *testing.T) {
	repo, s := testRepository(t)

	backup := models.NewBackup([]models.Task{{ID: "t1", Type: models.TaskTodo, Text: "one"}}, "alice")

	key, err := repo.Save(backup)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Errorf("key %q missing prefix %q", key, KeyPrefix)
	}

	value, err := s.Get(key)
	if err != nil {
		t.Fatalf("stored entry missing: %v", err)
	}
	decoded, err := models.UnmarshalBackup([]byte(value))
	if err != nil {
		t.Fatalf("stored entry does not round-trip: %v", err)
	}
	if decoded.Metadata.Username != "alice" || len(decoded.Tasks) != 1 {
		t.Errorf("stored document mismatch: %+v", decoded)
	}

	t.Run("keys are distinct within the same millisecond", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 10; i++ {
			k, err := repo.Save(backup)
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if seen[k] {
				t.Fatalf("duplicate key %q", k)
			}
			seen[k] = true
		}
	})

	t.Run("save notifies store observers", func(t *testing.T) {
		notified := 0
		s.Subscribe(func(string) { notified++ })
		if _, err := repo.Save(backup); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if notified != 1 {
			t.Errorf("observers notified %d times, want 1", notified)
		}
	})
}

func TestRepositoryList(t *testing.T) {
	repo, s := testRepository(t)

	// Three documents with distinct creation times, inserted out of order.
	stamps := []time.Time{
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, stamp := range stamps {
		backup := &models.Backup{
			Metadata: models.BackupMetadata{CreatedAt: stamp, Source: models.BackupSource, Username: "u"},
			Tasks: []models.Task{
				{ID: "h1", Type: models.TaskHabit},
				{ID: "h2", Type: models.TaskHabit},
				{ID: "d1", Type: models.TaskDaily},
			},
		}
		data, err := backup.Marshal()
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		s.Set(KeyPrefix+string(rune('a'+i)), string(data))
	}

	records, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Errorf("records not sorted descending: %v before %v", records[i-1].CreatedAt, records[i].CreatedAt)
		}
	}

	counts := records[0].Counts
	if counts.Habits != 2 || counts.Dailys != 1 || counts.Todos != 0 {
		t.Errorf("counts = %+v, want {habits:2 dailys:1 todos:0}", counts)
	}
}

func TestRepositoryListSkipsCorruptEntries(t *testing.T) {
	repo, s := testRepository(t)

	good := models.NewBackup(nil, "survivor")
	data, _ := good.Marshal()
	s.Set(KeyPrefix+"good", string(data))
	s.Set(KeyPrefix+"bad", "{not json")
	s.Set(KeyPrefix+"worse", `{"tasks": []}`)

	records, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want exactly the 1 valid entry", len(records))
	}
	if records[0].Username != "survivor" {
		t.Errorf("unexpected record %+v", records[0])
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo, s := testRepository(t)

	key, err := repo.Save(models.NewBackup(nil, "u"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	notified := 0
	s.Subscribe(func(string) { notified++ })

	if err := repo.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(key); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("entry still present after delete: %v", err)
	}
	if notified != 1 {
		t.Errorf("observers notified %d times, want 1", notified)
	}
}

func TestRepositoryLoadFromFile(t *testing.T) {
	repo, s := testRepository(t)

	t.Run("valid document", func(t *testing.T) {
		backup := models.NewBackup([]models.Task{{ID: "t", Type: models.TaskTodo, Text: "x"}}, "u")
		data, _ := backup.Marshal()

		loaded, err := repo.LoadFromFile(data)
		if err != nil {
			t.Fatalf("LoadFromFile failed: %v", err)
		}
		if len(loaded.Tasks) != 1 {
			t.Errorf("got %d tasks, want 1", len(loaded.Tasks))
		}
	})

	t.Run("errors pass through untouched", func(t *testing.T) {
		if _, err := repo.LoadFromFile([]byte("{not json")); !errors.Is(err, shared.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
		if _, err := repo.LoadFromFile([]byte(`{"tasks": []}`)); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("store is not touched", func(t *testing.T) {
		keys, _ := s.Keys("")
		if len(keys) != 0 {
			t.Errorf("LoadFromFile wrote to the store: %v", keys)
		}
	})
}
