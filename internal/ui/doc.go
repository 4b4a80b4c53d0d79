// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for restoring backups:
//  1. [BackupListView] : Browse stored backups
//  2. [TaskListView] : Select tasks to import
//  3. [ConfirmView] : Verify the target account and confirm
//  4. [ImportView] : Monitor real-time progress updates
//  5. [ResultView] : Display created tasks and failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ImportEngine, providing non-blocking status reporting during imports.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
