package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"habitvault/internal/backups"
	"habitvault/internal/models"
	"habitvault/internal/store"
	"habitvault/internal/tasks"
	th "habitvault/internal/testing"
)

func importReadyModel(t *testing.T) *Model {
	t.Helper()

	engine := tasks.NewImportEngine(&th.MockGateway{ProfileName: "Bob"})
	repo := backups.NewRepository(store.NewMemoryStore(), nil)
	m := NewModel(context.Background(), repo, engine, models.Credentials{UserID: "u", APIToken: "k"})

	backup := models.NewBackup([]models.Task{{Text: "a", Type: models.TaskTodo}}, "alice")
	m.session = tasks.NewSession(backup)
	m.session.SetCredentials(m.creds)
	if err := engine.VerifyTarget(context.Background(), m.session, nil); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	m.session.SelectAll("", true)
	return m
}

// The import goroutine must never write to the model; the run's outcome has
// to arrive as a message so that only Update mutates state while View reads it.
func TestImportOutcomeFlowsThroughMessages(t *testing.T) {
	m := importReadyModel(t)
	m.view = ImportView

	cmd := m.startImport()
	for i := 0; i < 10; i++ {
		msg := cmd()
		if msg == nil {
			t.Fatal("unexpected nil message before completion")
		}

		if complete, ok := msg.(importCompleteMsg); ok {
			if m.result != nil || m.err != nil {
				t.Error("model was mutated outside Update")
			}
			if complete.result == nil || complete.result.SuccessCount != 1 {
				t.Fatalf("outcome = %+v, err = %v", complete.result, complete.err)
			}

			m.Update(complete)
			if m.view != ResultView {
				t.Errorf("view = %v, want ResultView", m.view)
			}
			if m.result == nil || m.result.SuccessCount != 1 {
				t.Errorf("result = %+v", m.result)
			}
			return
		}

		update, ok := msg.(progressUpdateMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		if m.result != nil {
			t.Error("model result set before the completion message")
		}

		var next tea.Cmd
		if _, next = m.Update(update); next == nil {
			t.Fatal("expected Update to keep waiting for progress")
		}
		cmd = next
	}
	t.Fatal("import never completed")
}
