package bot

import (
	"fmt"
	"html"
	"strings"

	"taskmanager/internal/models"
)

var statusEmoji = map[models.TaskStatus]string{
	models.StatusTodo:       "🔲",
	models.StatusInProgress: "🔄",
	models.StatusDone:       "✅",
	models.StatusCanceled:   "❌",
}

var priorityEmoji = map[models.TaskPriority]string{
	models.PriorityLow:    "⬇️",
	models.PriorityMedium: "➡️",
	models.PriorityHigh:   "⬆️",
	models.PriorityUrgent: "🔥",
}

var categoryEmoji = map[models.TaskCategory]string{
	models.CategoryPersonal:  "👤",
	models.CategoryWork:      "💼",
	models.CategoryHealth:    "🏥",
	models.CategoryEducation: "📚",
	models.CategoryOther:     "📋",
}

func emojiFor[K comparable](m map[K]string, key K, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// FormatTaskMessage renders one task as a Telegram HTML fragment with
// status, priority and category emoji, the title in bold, and the due
// date (or its absence) on the second line.
func FormatTaskMessage(task models.Task) string {
	dueLine := "No due date"
	if task.DueDate != nil {
		dueLine = "Due: " + task.DueDate.Format("2006-01-02 15:04")
	}

	var b strings.Builder
	b.WriteString(emojiFor(statusEmoji, task.Status, "🔲"))
	b.WriteString(" ")
	b.WriteString(emojiFor(priorityEmoji, task.Priority, "➡️"))
	b.WriteString(" ")
	b.WriteString(emojiFor(categoryEmoji, task.Category, "📋"))
	b.WriteString(" <b>")
	b.WriteString(html.EscapeString(task.Title))
	b.WriteString("</b>\n")
	b.WriteString(dueLine)
	b.WriteString("\n")

	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(task.Description))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatReminderMessage wraps a task message in the reminder banner
// used by the dispatch loop.
func FormatReminderMessage(task models.Task) string {
	return "🔔 <b>Reminder</b> 🔔\n\n" + FormatTaskMessage(task)
}

// formatGroupSection renders one "<emoji> <LABEL>:" block with up to
// limit task titles and a trailing overflow note.
func formatGroupSection(emoji, label string, tasks []models.Task, limit int) string {
	if len(tasks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s <b>%s</b>:\n", emoji, strings.ToUpper(label))
	shown := tasks
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, task := range shown {
		fmt.Fprintf(&b, "- %s\n", html.EscapeString(task.Title))
	}
	if len(tasks) > limit {
		fmt.Fprintf(&b, "  ... and %d more\n", len(tasks)-limit)
	}
	return b.String()
}
