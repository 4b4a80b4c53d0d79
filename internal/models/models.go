package models

import "strings"

// TaskType discriminates the three kinds of Habitica tasks.
type TaskType string

const (
	TaskHabit TaskType = "habit"
	TaskDaily TaskType = "daily"
	TaskTodo  TaskType = "todo"
)

// TaskTypes lists all valid task types in display order.
var TaskTypes = []TaskType{TaskHabit, TaskDaily, TaskTodo}

// Valid reports whether t is one of the three known task types.
func (t TaskType) Valid() bool {
	return t == TaskHabit || t == TaskDaily || t == TaskTodo
}

// Collection returns the plural form used by the tasks endpoint query
// parameter (habits, dailys, todos).
func (t TaskType) Collection() string {
	if t == TaskDaily {
		return "dailys"
	}
	return string(t) + "s"
}

// ParseTaskType resolves a singular or plural type name to a TaskType.
func ParseTaskType(s string) (TaskType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "habit", "habits":
		return TaskHabit, true
	case "daily", "dailys", "dailies":
		return TaskDaily, true
	case "todo", "todos":
		return TaskTodo, true
	}
	return "", false
}

// Credentials is the opaque bearer identity for one Habitica account.
// Never validated locally beyond non-emptiness.
type Credentials struct {
	UserID   string `json:"userId"`
	APIToken string `json:"apiToken"`
}

// CredentialsKey is the storage slot holding the saved credential pair.
// A single slot, overwritten on save.
const CredentialsKey = "habitica-credentials"

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool {
	return c.UserID != "" && c.APIToken != ""
}

// ChecklistItem is one ordered sub-item of a task.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	ID        string `json:"id,omitempty"`
}

// Task represents one habit, daily, or to-do item.
//
// InternalID and OwnerID are service-managed identifiers distinct from ID;
// together with CreatedAt/UpdatedAt they are stripped before a task is
// re-submitted to a target account (see [Task.StripServiceFields]).
type Task struct {
	InternalID string         `json:"_id,omitempty"`
	OwnerID    string         `json:"userId,omitempty"`
	Challenge  map[string]any `json:"challenge,omitempty"`
	Group      map[string]any `json:"group,omitempty"`
	ID         string         `json:"id,omitempty"`
	Text       string         `json:"text"`
	Notes      string         `json:"notes,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Type       TaskType       `json:"type"`
	Priority   float64        `json:"priority,omitempty"`
	Value      float64        `json:"value,omitempty"`
	Checklist  []ChecklistItem `json:"checklist,omitempty"`
	Reminders  []any          `json:"reminders,omitempty"`
	CreatedAt  string         `json:"createdAt,omitempty"`
	UpdatedAt  string         `json:"updatedAt,omitempty"`

	// daily specific
	IsDue     *bool  `json:"isDue,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	EveryX    int    `json:"everyX,omitempty"`
	StartDate string `json:"startDate,omitempty"`

	// habit specific
	Up          *bool `json:"up,omitempty"`
	Down        *bool `json:"down,omitempty"`
	CounterUp   int   `json:"counterUp,omitempty"`
	CounterDown int   `json:"counterDown,omitempty"`
}

// StripServiceFields returns a copy of the task with every service-managed
// identifier and timestamp cleared. The target service must assign its own.
func (t Task) StripServiceFields() Task {
	t.InternalID = ""
	t.OwnerID = ""
	t.ID = ""
	t.CreatedAt = ""
	t.UpdatedAt = ""
	return t
}

// TaskCounts tallies a task sequence by type. Unknown types fall outside all
// three buckets.
type TaskCounts struct {
	Habits int `json:"habits"`
	Dailys int `json:"dailys"`
	Todos  int `json:"todos"`
}

// CountTasks derives per-type counts by scanning the given sequence.
func CountTasks(tasks []Task) TaskCounts {
	var counts TaskCounts
	for _, t := range tasks {
		switch t.Type {
		case TaskHabit:
			counts.Habits++
		case TaskDaily:
			counts.Dailys++
		case TaskTodo:
			counts.Todos++
		}
	}
	return counts
}

// Total returns the sum across all three buckets.
func (c TaskCounts) Total() int {
	return c.Habits + c.Dailys + c.Todos
}
