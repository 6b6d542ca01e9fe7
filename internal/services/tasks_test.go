package services_test

import (
	"errors"
	"testing"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/services"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

func TestCreateTask_Defaults(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	metrics := newRecordingMetrics()
	service := services.NewTaskService(metrics)

	task, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "Buy groceries"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if task.Status != models.StatusTodo {
		t.Errorf("Expected default status 'todo', got %q", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority 'medium', got %q", task.Priority)
	}
	if task.Category != models.CategoryOther {
		t.Errorf("Expected default category 'other', got %q", task.Category)
	}
	if task.CompletedAt != nil {
		t.Error("Expected CompletedAt to be nil on a fresh task")
	}
	if metrics.created != 1 {
		t.Errorf("Expected 1 creation metric, got %d", metrics.created)
	}
}

func TestUpdateTask_FirstCompletionStampsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	metrics := newRecordingMetrics()
	service := services.NewTaskService(metrics)

	task := createTestTask(t, db, user.ID, "Write report")

	done := models.StatusDone
	updated, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be stamped on completion")
	}
	if metrics.completedCount() != 1 {
		t.Errorf("Expected 1 completion metric, got %d", metrics.completedCount())
	}
}

func TestUpdateTask_RecompletionDoesNotRestamp(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	metrics := newRecordingMetrics()
	service := services.NewTaskService(metrics)

	task := createTestTask(t, db, user.ID, "Write report")

	done := models.StatusDone
	first, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("First completion failed: %v", err)
	}
	firstStamp := *first.CompletedAt

	// Reopen, then complete again.
	todo := models.StatusTodo
	if _, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &todo}); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	second, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("Second completion failed: %v", err)
	}

	if second.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to survive the reopen")
	}
	if !second.CompletedAt.Equal(firstStamp) {
		t.Errorf("Expected CompletedAt %v to be preserved, got %v", firstStamp, *second.CompletedAt)
	}
	if metrics.completedCount() != 1 {
		t.Errorf("Expected exactly 1 completion metric after re-completion, got %d", metrics.completedCount())
	}
}

func TestUpdateTask_SettingDoneTwiceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	metrics := newRecordingMetrics()
	service := services.NewTaskService(metrics)

	task := createTestTask(t, db, user.ID, "Write report")

	done := models.StatusDone
	first, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("First completion failed: %v", err)
	}

	second, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("Second update failed: %v", err)
	}

	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("Expected CompletedAt unchanged, got %v then %v", *first.CompletedAt, *second.CompletedAt)
	}
	if metrics.completedCount() != 1 {
		t.Errorf("Expected 1 completion metric, got %d", metrics.completedCount())
	}
}

func TestUpdateTask_SparseChanges(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	task := createTestTask(t, db, user.ID, "Original title")

	high := models.PriorityHigh
	updated, err := service.UpdateTask(db, user.ID, task.ID, services.TaskUpdate{Priority: &high})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.Title != "Original title" {
		t.Errorf("Expected title untouched, got %q", updated.Title)
	}
	if updated.Priority != models.PriorityHigh {
		t.Errorf("Expected priority 'high', got %q", updated.Priority)
	}
}

func TestUpdateTask_NotOwned(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	service := services.NewTaskService(nil)

	task := createTestTask(t, db, owner.ID, "Private task")

	done := models.StatusDone
	_, err := service.UpdateTask(db, other.ID, task.ID, services.TaskUpdate{Status: &done})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found for foreign task, got: %v", err)
	}
}

func TestGetTasksPaginated_Filters(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	for i, priority := range []models.TaskPriority{
		models.PriorityLow, models.PriorityHigh, models.PriorityHigh,
	} {
		task := createTestTask(t, db, user.ID, "Task")
		task.Priority = priority
		if i == 0 {
			task.Status = models.StatusDone
		}
		if err := db.Save(&task).Error; err != nil {
			t.Fatalf("Failed to seed task: %v", err)
		}
	}

	tasks, total, err := service.GetTasksPaginated(db, user.ID, services.TaskFilter{Priority: "high"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if total != 2 || len(tasks) != 2 {
		t.Errorf("Expected 2 high priority tasks, got total=%d len=%d", total, len(tasks))
	}

	tasks, total, err = service.GetTasksPaginated(db, user.ID, services.TaskFilter{Status: "done"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if total != 1 || len(tasks) != 1 {
		t.Errorf("Expected 1 done task, got total=%d len=%d", total, len(tasks))
	}
}

func TestGetTasksPaginated_Paging(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	for i := 0; i < 15; i++ {
		createTestTask(t, db, user.ID, "Task")
	}

	tasks, total, err := service.GetTasksPaginated(db, user.ID, services.TaskFilter{Page: "2", PageSize: "10"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if total != 15 {
		t.Errorf("Expected total 15, got %d", total)
	}
	if len(tasks) != 5 {
		t.Errorf("Expected 5 tasks on page 2, got %d", len(tasks))
	}
}

func TestDeleteTask_RemovesChildren(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	task := createTestTask(t, db, user.ID, "Doomed task")

	reminder := models.Reminder{
		ID:           uuid.Must(uuid.NewV4()),
		TaskID:       task.ID,
		ReminderTime: time.Now().UTC(),
	}
	if err := db.Create(&reminder).Error; err != nil {
		t.Fatalf("Failed to seed reminder: %v", err)
	}
	end := time.Now().UTC()
	entry := models.TimeTrack{
		ID:        uuid.Must(uuid.NewV4()),
		TaskID:    task.ID,
		StartTime: end.Add(-time.Hour),
		EndTime:   &end,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to seed time track: %v", err)
	}

	if err := service.DeleteTask(db, user.ID, task.ID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var reminderCount, entryCount int64
	db.Model(&models.Reminder{}).Where("task_id = ?", task.ID).Count(&reminderCount)
	db.Model(&models.TimeTrack{}).Where("task_id = ?", task.ID).Count(&entryCount)
	if reminderCount != 0 || entryCount != 0 {
		t.Errorf("Expected children removed, got %d reminders and %d entries", reminderCount, entryCount)
	}
}

func TestCreateRecurring_SecondRuleConflicts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	task := createTestTask(t, db, user.ID, "Weekly review")

	input := services.RecurringInput{Frequency: "weekly", Interval: 1, StartDate: time.Now().UTC()}
	if _, err := service.CreateRecurring(db, user.ID, task.ID, input); err != nil {
		t.Fatalf("First rule failed: %v", err)
	}

	_, err := service.CreateRecurring(db, user.ID, task.ID, input)
	if !errors.Is(err, services.ErrRecurringExists) {
		t.Errorf("Expected ErrRecurringExists, got: %v", err)
	}
}

func TestRecurring_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTaskService(nil)

	task := createTestTask(t, db, user.ID, "Monthly report")

	rule, err := service.CreateRecurring(db, user.ID, task.ID, services.RecurringInput{
		Frequency: "monthly",
	})
	if err != nil {
		t.Fatalf("Create rule failed: %v", err)
	}
	if rule.Interval != 1 {
		t.Errorf("Expected interval defaulted to 1, got %d", rule.Interval)
	}

	freq := "daily"
	interval := 3
	updated, err := service.UpdateRecurring(db, user.ID, task.ID, services.RecurringUpdate{
		Frequency: &freq,
		Interval:  &interval,
	})
	if err != nil {
		t.Fatalf("Update rule failed: %v", err)
	}
	if updated.Frequency != "daily" || updated.Interval != 3 {
		t.Errorf("Expected daily/3, got %s/%d", updated.Frequency, updated.Interval)
	}

	if err := service.DeleteRecurring(db, user.ID, task.ID); err != nil {
		t.Fatalf("Delete rule failed: %v", err)
	}

	_, err = service.GetRecurring(db, user.ID, task.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found after delete, got: %v", err)
	}
}
