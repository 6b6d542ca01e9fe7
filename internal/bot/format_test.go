package bot

import (
	"strings"
	"testing"
	"time"

	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
)

func TestFormatTaskMessage(t *testing.T) {
	due := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       "Write report",
		Description: "Quarterly numbers",
		Status:      models.StatusInProgress,
		Priority:    models.PriorityHigh,
		Category:    models.CategoryWork,
		DueDate:     &due,
	}

	message := FormatTaskMessage(task)

	for _, want := range []string{"🔄", "⬆️", "💼", "<b>Write report</b>", "Due: 2026-03-15 14:30", "Quarterly numbers"} {
		if !strings.Contains(message, want) {
			t.Errorf("Expected message to contain %q, got %q", want, message)
		}
	}
}

func TestFormatTaskMessage_NoDueDate(t *testing.T) {
	task := models.Task{
		Title:    "Loose end",
		Status:   models.StatusTodo,
		Priority: models.PriorityLow,
		Category: models.CategoryPersonal,
	}

	message := FormatTaskMessage(task)
	if !strings.Contains(message, "No due date") {
		t.Errorf("Expected 'No due date' line, got %q", message)
	}
}

func TestFormatTaskMessage_EscapesHTML(t *testing.T) {
	task := models.Task{
		Title:    "Fix <script> bug",
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		Category: models.CategoryOther,
	}

	message := FormatTaskMessage(task)
	if strings.Contains(message, "<script>") {
		t.Errorf("Expected title to be HTML-escaped, got %q", message)
	}
	if !strings.Contains(message, "&lt;script&gt;") {
		t.Errorf("Expected escaped title, got %q", message)
	}
}

func TestFormatReminderMessage(t *testing.T) {
	task := models.Task{
		Title:    "Water the plants",
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		Category: models.CategoryPersonal,
	}

	message := FormatReminderMessage(task)
	if !strings.HasPrefix(message, "🔔 <b>Reminder</b> 🔔\n\n") {
		t.Errorf("Expected reminder banner prefix, got %q", message)
	}
	if !strings.Contains(message, "Water the plants") {
		t.Errorf("Expected task title in reminder, got %q", message)
	}
}

func TestFormatGroupSection(t *testing.T) {
	tasks := []models.Task{
		{Title: "One"}, {Title: "Two"}, {Title: "Three"},
	}

	section := formatGroupSection("🔥", "urgent", tasks, 2)

	if !strings.Contains(section, "<b>URGENT</b>") {
		t.Errorf("Expected uppercased label, got %q", section)
	}
	if !strings.Contains(section, "- One\n") || !strings.Contains(section, "- Two\n") {
		t.Errorf("Expected first two titles, got %q", section)
	}
	if strings.Contains(section, "- Three") {
		t.Errorf("Expected third title truncated, got %q", section)
	}
	if !strings.Contains(section, "... and 1 more") {
		t.Errorf("Expected overflow note, got %q", section)
	}
}

func TestFormatGroupSection_Empty(t *testing.T) {
	if section := formatGroupSection("🔥", "urgent", nil, 5); section != "" {
		t.Errorf("Expected empty section for no tasks, got %q", section)
	}
}
