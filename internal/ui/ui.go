package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"habitvault/internal/backups"
	"habitvault/internal/models"
	"habitvault/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BackupListView ViewState = iota
	TaskListView
	ConfirmView
	ImportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	repo         *backups.Repository
	engine       *tasks.ImportEngine
	creds        models.Credentials
	width        int
	height       int
	backupList   list.Model
	records      []backups.Record
	taskList     list.Model
	record       backups.Record
	session      *tasks.ImportSession
	verifying    bool
	progressChan chan tasks.ProgressUpdate
	doneChan     chan importCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.ImportRunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, repo *backups.Repository, engine *tasks.ImportEngine, creds models.Credentials) *Model {
	return &Model{
		ctx:    ctx,
		view:   BackupListView,
		repo:   repo,
		engine: engine,
		creds:  creds,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by listing stored backups.
func (m *Model) Init() tea.Cmd {
	return m.fetchBackups()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.backupList.Width() == 0 {
			m.backupList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.taskList.Width() == 0 {
			m.taskList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BackupListView:
			return m.handleBackupListKeys(msg)
		case TaskListView:
			return m.handleTaskListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case backupsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.records = msg.records
		items := make([]list.Item, len(msg.records))
		for i, record := range msg.records {
			items[i] = backupItem{record: record}
		}
		m.backupList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.backupList.Title = "Stored Backups"
		m.backupList.SetSize(m.width-4, m.height-8)
		return m, nil

	case backupLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BackupListView
			return m, nil
		}
		m.record = msg.record
		m.session = tasks.NewSession(msg.backup)
		m.session.SetCredentials(m.creds)
		items := make([]list.Item, len(msg.backup.Tasks))
		for i, task := range msg.backup.Tasks {
			items[i] = taskItem{task: task, index: i, session: m.session}
		}
		m.taskList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.taskList.Title = fmt.Sprintf("Tasks in backup for '%s'", msg.backup.Metadata.Username)
		m.taskList.SetSize(m.width-4, m.height-8)
		m.view = TaskListView
		return m, nil

	case verifiedMsg:
		m.verifying = false
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case importCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView && m.view != ConfirmView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BackupListView:
		return m.renderBackupList()
	case TaskListView:
		return m.renderTaskList()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleBackupListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.backupList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(backupItem); ok {
				return m, m.loadBackup(item.record)
			}
		}
	}

	var cmd tea.Cmd
	m.backupList, cmd = m.backupList.Update(msg)
	return m, cmd
}

func (m *Model) handleTaskListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BackupListView
		m.err = nil
		return m, nil
	case " ":
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			m.session.Toggle(item.index)
		}
		return m, nil
	case "a":
		m.session.SelectAll("", true)
		return m, nil
	case "A":
		m.session.SelectAll("", false)
		return m, nil
	case "enter":
		if m.session.SelectedCount() == 0 {
			return m, nil
		}
		m.view = ConfirmView
		m.err = nil
		m.verifying = true
		return m, m.verifyTarget()
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TaskListView
		m.err = nil
		return m, nil
	case "y":
		if m.verifying || !m.session.Verified() {
			return m, nil
		}
		m.view = ImportView
		return m, m.startImport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = BackupListView
		m.session = nil
		m.result = nil
		m.err = nil
		return m, m.fetchBackups()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BackupListView:
		m.backupList, cmd = m.backupList.Update(msg)
	case TaskListView:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchBackups() tea.Cmd {
	return func() tea.Msg {
		records, err := m.repo.List()
		return backupsFetchedMsg{records: records, err: err}
	}
}

func (m *Model) loadBackup(record backups.Record) tea.Cmd {
	return func() tea.Msg {
		backup, err := m.repo.Load(record.Key)
		return backupLoadedMsg{record: record, backup: backup, err: err}
	}
}

func (m *Model) verifyTarget() tea.Cmd {
	return func() tea.Msg {
		err := m.engine.VerifyTarget(m.ctx, m.session, nil)
		return verifiedMsg{username: m.session.TargetUsername(), err: err}
	}
}

// startImport runs the import on its own goroutine. The goroutine never
// touches the model: progress flows through progressChan and the final
// outcome through doneChan, so every model mutation stays in Update.
func (m *Model) startImport() tea.Cmd {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan importCompleteMsg, 1)
	m.progressChan = progressCh
	m.doneChan = done

	go func() {
		result, err := m.engine.RunImport(m.ctx, m.session, progressCh)
		done <- importCompleteMsg{result: result, err: err}
		close(progressCh)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressCh := m.progressChan
	done := m.doneChan
	return func() tea.Msg {
		if progressCh == nil {
			return nil
		}

		update, ok := <-progressCh
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderBackupList() string {
	if m.records == nil {
		return styles.help.Render("Loading stored backups...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.backupList.View(), helpView)
}

func (m *Model) renderTaskList() string {
	importKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "import"),
	)
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, importKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	status := styles.help.Render(fmt.Sprintf("%d of %d selected", m.session.SelectedCount(), len(m.session.Backup.Tasks)))
	return fmt.Sprintf("%s\n%s\n\n%s", m.taskList.View(), status, helpView)
}

func (m *Model) renderConfirm() string {
	if m.verifying {
		return styles.title.Render("Verifying target account...")
	}
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Verification failed: %v\n\nPress esc to go back", m.err))
	}

	title := styles.title.Render(fmt.Sprintf("Import %d tasks into '%s'?", m.session.SelectedCount(), m.session.TargetUsername()))
	counts := models.CountTasks(m.session.SelectedTasks())
	info := fmt.Sprintf("\nHabits: %d\nDailies: %d\nTodos: %d\n", counts.Habits, counts.Dailys, counts.Todos)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing Tasks")

	var phase string
	switch m.progress.Phase {
	case tasks.CreateTasks:
		phase = fmt.Sprintf("Created %d/%d tasks", m.progress.Step, m.progress.Total)
	case tasks.ImportDone:
		phase = "Finishing up..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Import failed: %v\n\nPress r to restart, q to quit", m.err))
		}
		return styles.err.Render("No result available\n\nPress r to restart, q to quit")
	}

	var title string
	if m.err != nil {
		title = styles.err.Render("✗ Import Stopped")
	} else {
		title = styles.ok.Render("✓ Import Complete!")
	}

	info := fmt.Sprintf(
		"\nTarget: %s\nCreated: %d/%d",
		m.session.TargetUsername(),
		m.result.SuccessCount,
		m.result.TotalSelected,
	)

	var failed string
	if m.result.FailedCount > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to create %d tasks:", m.result.FailedCount)))
		for _, attempt := range m.result.Results {
			if attempt.Error != nil {
				failed += fmt.Sprintf("\n  • [%s] %s", attempt.Task.Type, attempt.Task.Text)
			}
		}
		if skipped := m.result.TotalSelected - len(m.result.Results); skipped > 0 {
			failed += fmt.Sprintf("\n%s", styles.warn.Render(fmt.Sprintf("%d selected tasks were not attempted.", skipped)))
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
