// package formatter provides functions to export backup documents to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"habitvault/internal/models"
)

// ExportToCSV converts a backup to CSV format with columns: ID, Type, Text, Notes, Priority, Value
func ExportToCSV(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "Text", "Notes", "Priority", "Value"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range backup.Tasks {
		record := []string{
			task.ID,
			string(task.Type),
			task.Text,
			task.Notes,
			strconv.FormatFloat(task.Priority, 'g', -1, 64),
			strconv.FormatFloat(task.Value, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a backup to Markdown format with per-type task sections
func ExportToMarkdown(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Task Backup: %s\n\n", backup.Metadata.Username))
	buf.WriteString(fmt.Sprintf("**Created**: %s\n", backup.Metadata.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", backup.Metadata.Source))

	counts := backup.Counts()
	buf.WriteString(fmt.Sprintf("**Tasks**: %d (%d habits, %d dailies, %d todos)\n\n",
		counts.Total(), counts.Habits, counts.Dailys, counts.Todos))

	sections := []struct {
		title string
		tt    models.TaskType
	}{
		{"Habits", models.TaskHabit},
		{"Dailies", models.TaskDaily},
		{"Todos", models.TaskTodo},
	}

	for _, section := range sections {
		tasks := backup.TasksByType(section.tt)
		if len(tasks) == 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("## %s\n\n", section.title))
		for i, task := range tasks {
			buf.WriteString(fmt.Sprintf("%d. %s", i+1, task.Text))
			if task.Notes != "" {
				buf.WriteString(fmt.Sprintf(" _(%s)_", task.Notes))
			}
			buf.WriteString("\n")
			for _, item := range task.Checklist {
				mark := " "
				if item.Completed {
					mark = "x"
				}
				buf.WriteString(fmt.Sprintf("   - [%s] %s\n", mark, item.Text))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a backup to plain text format
func ExportToText(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Backup: %s\n", backup.Metadata.Username))
	buf.WriteString(fmt.Sprintf("Created: %s\n", backup.Metadata.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("Tasks: %d\n\n", len(backup.Tasks)))

	for i, task := range backup.Tasks {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, task.Type, task.Text))
	}

	return buf.Bytes(), nil
}

// WriteJSONExport writes a backup to disk as its canonical JSON document.
//
// Defaults to the conventional backup filename derived from the username
// and creation date.
func WriteJSONExport(backup *models.Backup, filepath string) (string, error) {
	if filepath == "" {
		filepath = models.ExportFilename(backup.Metadata.Username, backup.Metadata.CreatedAt)
	}

	data, err := backup.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}

// WriteCSVExport writes a backup's task list to disk as CSV.
//
// Defaults to {username}_tasks.csv as the filename.
func WriteCSVExport(backup *models.Backup, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tasks.csv", backup.Metadata.Username)
	}

	csvData, err := ExportToCSV(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport writes a backup to disk as Markdown.
//
// Defaults to {username}_backup.md as the filename.
func WriteMarkdownExport(backup *models.Backup, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_backup.md", backup.Metadata.Username)
	}

	mdData, err := ExportToMarkdown(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes a backup to disk as plain text.
//
// Defaults to {username}_tasks.txt as the filename.
func WriteTextExport(backup *models.Backup, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tasks.txt", backup.Metadata.Username)
	}

	textData, err := ExportToText(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
