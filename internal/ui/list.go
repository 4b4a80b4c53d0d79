package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"habitvault/internal/backups"
	"habitvault/internal/models"
	"habitvault/internal/tasks"
)

var (
	_ list.Item = backupItem{}
	_ list.Item = taskItem{}
)

// backupItem wraps [backups.Record] to implement [list.Item].
type backupItem struct {
	record backups.Record
}

func (i backupItem) FilterValue() string { return i.record.Username }
func (i backupItem) Title() string {
	return fmt.Sprintf("%s • %s", i.record.CreatedAt.Local().Format("2006-01-02 15:04"), i.record.Username)
}
func (i backupItem) Description() string {
	c := i.record.Counts
	return fmt.Sprintf("%d tasks (%d habits, %d dailies, %d todos)", c.Total(), c.Habits, c.Dailys, c.Todos)
}

// taskItem wraps [models.Task] to implement [list.Item]. The selection
// checkbox reads live session state so toggles render immediately.
type taskItem struct {
	task    models.Task
	index   int
	session *tasks.ImportSession
}

func (i taskItem) FilterValue() string { return i.task.Text }
func (i taskItem) Title() string {
	mark := "[ ]"
	if i.session.Selected(i.index) {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.task.Text)
}
func (i taskItem) Description() string {
	desc := string(i.task.Type)
	if i.task.Notes != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.task.Notes)
	}
	return desc
}
