package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"habitvault/internal/models"
	"habitvault/internal/shared"
)

var testCreds = models.Credentials{UserID: "user-1", APIToken: "token-1"}

func testService(t *testing.T, handler http.HandlerFunc) *HabiticaService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHabiticaService(HabiticaOpts{BaseURL: server.URL})
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status >= 200 && status < 300,
		"data":    data,
		"message": message,
	})
}

func TestNewHabiticaService(t *testing.T) {
	svc := NewHabiticaService(HabiticaOpts{})
	if svc.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", svc.baseURL, DefaultBaseURL)
	}
	if svc.clientID != DefaultClientID {
		t.Errorf("clientID = %q, want %q", svc.clientID, DefaultClientID)
	}
	if svc.httpClient != http.DefaultClient {
		t.Error("expected http.DefaultClient")
	}
}

func TestLimiterForRPM(t *testing.T) {
	if LimiterForRPM(0) != nil || LimiterForRPM(-5) != nil {
		t.Error("expected nil limiter for non-positive RPM")
	}
	limiter := LimiterForRPM(60)
	if limiter == nil {
		t.Fatal("expected limiter")
	}
	if got := float64(limiter.Limit()); got != 1.0 {
		t.Errorf("limit = %v requests/sec, want 1.0", got)
	}
}

func TestFetchProfileName(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/user" {
				t.Errorf("path = %q, want /user", r.URL.Path)
			}
			if r.Header.Get("x-api-user") != testCreds.UserID {
				t.Errorf("x-api-user = %q", r.Header.Get("x-api-user"))
			}
			if r.Header.Get("x-api-key") != testCreds.APIToken {
				t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
			}
			if r.Header.Get("x-client") != DefaultClientID {
				t.Errorf("x-client = %q", r.Header.Get("x-client"))
			}
			writeEnvelope(w, http.StatusOK, map[string]any{"profile": map[string]string{"name": "Alice"}}, "")
		})

		name, err := svc.FetchProfileName(context.Background(), testCreds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "Alice" {
			t.Errorf("name = %q, want Alice", name)
		}
	})

	t.Run("Missing Profile Name", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]any{}, "")
		})

		name, err := svc.FetchProfileName(context.Background(), testCreds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "Unknown User" {
			t.Errorf("name = %q, want Unknown User", name)
		}
	})

	t.Run("Rejected Credentials", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "There is no account that uses those credentials.")
		})

		_, err := svc.FetchProfileName(context.Background(), testCreds)
		if !errors.Is(err, shared.ErrAuth) {
			t.Fatalf("error = %v, want ErrAuth", err)
		}
		if !strings.Contains(err.Error(), "no account that uses those credentials") {
			t.Errorf("service message not propagated: %v", err)
		}
	})

	t.Run("Unparsable Error Response", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<html>gateway timeout</html>"))
		})

		_, err := svc.FetchProfileName(context.Background(), testCreds)
		if !errors.Is(err, shared.ErrAuth) {
			t.Fatalf("error = %v, want ErrAuth", err)
		}
		if !strings.Contains(err.Error(), "Check credentials") {
			t.Errorf("expected generic fallback message, got: %v", err)
		}
	})
}

func TestFetchAllTasks(t *testing.T) {
	t.Run("Concatenation Order", func(t *testing.T) {
		// Habits respond slowest; their collection must still come first.
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/user" {
				writeEnvelope(w, http.StatusOK, map[string]any{"profile": map[string]string{"name": "Alice"}}, "")
				return
			}
			switch r.URL.Query().Get("type") {
			case "habits":
				time.Sleep(30 * time.Millisecond)
				writeEnvelope(w, http.StatusOK, []models.Task{
					{ID: "h1", Type: models.TaskHabit, Text: "habit one"},
					{ID: "h2", Type: models.TaskHabit, Text: "habit two"},
				}, "")
			case "dailys":
				writeEnvelope(w, http.StatusOK, []models.Task{
					{ID: "d1", Type: models.TaskDaily, Text: "daily one"},
				}, "")
			case "todos":
				writeEnvelope(w, http.StatusOK, []models.Task{
					{ID: "t1", Type: models.TaskTodo, Text: "todo one"},
				}, "")
			default:
				t.Errorf("unexpected type %q", r.URL.Query().Get("type"))
			}
		})

		export, err := svc.FetchAllTasks(context.Background(), testCreds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantOrder := []string{"h1", "h2", "d1", "t1"}
		if len(export.Tasks) != len(wantOrder) {
			t.Fatalf("got %d tasks, want %d", len(export.Tasks), len(wantOrder))
		}
		for i, id := range wantOrder {
			if export.Tasks[i].ID != id {
				t.Errorf("task %d = %q, want %q", i, export.Tasks[i].ID, id)
			}
		}
		if export.Username != "Alice" {
			t.Errorf("username = %q, want Alice", export.Username)
		}
	})

	t.Run("Sub-Request Failure", func(t *testing.T) {
		var requests atomic.Int32
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.URL.Query().Get("type") == "dailys" {
				writeEnvelope(w, http.StatusTooManyRequests, nil, "Rate limited")
				return
			}
			if r.URL.Path == "/user" {
				writeEnvelope(w, http.StatusOK, map[string]any{"profile": map[string]string{"name": "A"}}, "")
				return
			}
			writeEnvelope(w, http.StatusOK, []models.Task{}, "")
		})

		export, err := svc.FetchAllTasks(context.Background(), testCreds)
		if !errors.Is(err, shared.ErrFetch) {
			t.Fatalf("error = %v, want ErrFetch", err)
		}
		if !strings.Contains(err.Error(), "dailys") {
			t.Errorf("error does not name the failed sub-request: %v", err)
		}
		if !strings.Contains(err.Error(), "Rate limited") {
			t.Errorf("service message not propagated: %v", err)
		}
		if export != nil {
			t.Errorf("expected no partial result, got %+v", export)
		}
		if got := requests.Load(); got != 4 {
			t.Errorf("all four sub-requests should settle, got %d", got)
		}
	})

	t.Run("Unparsable Sub-Request Error", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("type") == "todos" {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("not json"))
				return
			}
			if r.URL.Path == "/user" {
				writeEnvelope(w, http.StatusOK, nil, "")
				return
			}
			writeEnvelope(w, http.StatusOK, []models.Task{}, "")
		})

		_, err := svc.FetchAllTasks(context.Background(), testCreds)
		if !errors.Is(err, shared.ErrFetch) {
			t.Fatalf("error = %v, want ErrFetch", err)
		}
		if !strings.Contains(err.Error(), unknownErrorMessage) {
			t.Errorf("expected generic fallback, got: %v", err)
		}
	})
}

func TestCreateTask(t *testing.T) {
	task := models.Task{
		InternalID: "internal-1",
		OwnerID:    "owner-1",
		ID:         "task-1",
		Text:       "Water the plants",
		Type:       models.TaskDaily,
		CreatedAt:  "2024-01-01T00:00:00.000Z",
		UpdatedAt:  "2024-01-02T00:00:00.000Z",
	}

	t.Run("Strips Service Fields", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/tasks/user" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			for _, field := range []string{"id", "_id", "userId", "createdAt", "updatedAt"} {
				if _, present := body[field]; present {
					t.Errorf("service-managed field %q leaked into submission", field)
				}
			}
			if body["text"] != "Water the plants" {
				t.Errorf("text = %v", body["text"])
			}

			writeEnvelope(w, http.StatusCreated, models.Task{ID: "fresh-id", Text: task.Text, Type: task.Type}, "")
		})

		created, err := svc.CreateTask(context.Background(), testCreds, task)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID != "fresh-id" {
			t.Errorf("created ID = %q, want fresh-id", created.ID)
		}
	})

	t.Run("Rejection Carries Task Text", func(t *testing.T) {
		svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, nil, "Task validation failed")
		})

		_, err := svc.CreateTask(context.Background(), testCreds, task)
		if !errors.Is(err, shared.ErrCreateTask) {
			t.Fatalf("error = %v, want ErrCreateTask", err)
		}
		if !strings.Contains(err.Error(), "Water the plants") {
			t.Errorf("error does not carry the task text: %v", err)
		}
		if !strings.Contains(err.Error(), "Task validation failed") {
			t.Errorf("service message not propagated: %v", err)
		}
	})
}
