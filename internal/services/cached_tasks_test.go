package services_test

import (
	"errors"
	"testing"

	"taskmanager/internal/cache"
	"taskmanager/internal/models"
	"taskmanager/internal/services"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"
)

func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()

	mr := miniredis.RunT(t)
	config := cache.DefaultCacheConfig()
	config.Addr = mr.Addr()
	return cache.NewRedisCache(config)
}

func TestCachedTaskService_ServesFromCache(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewCachedTaskService(services.NewTaskService(nil), newTestCache(t))

	created, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "Cached task"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Remove the row so a hit can only come from the cache.
	if err := db.Delete(&models.Task{}, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("Failed to delete row: %v", err)
	}

	task, err := service.GetTaskByID(db, user.ID, created.ID)
	if err != nil {
		t.Fatalf("Expected cache hit, got: %v", err)
	}
	if task.Title != "Cached task" {
		t.Errorf("Expected cached title, got %q", task.Title)
	}
}

func TestCachedTaskService_CacheHitChecksOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	service := services.NewCachedTaskService(services.NewTaskService(nil), newTestCache(t))

	created, err := service.CreateTask(db, owner.ID, services.TaskInput{Title: "Private task"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = service.GetTaskByID(db, other.ID, created.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found for foreign caller on cache hit, got: %v", err)
	}
}

func TestCachedTaskService_UpdateInvalidates(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewCachedTaskService(services.NewTaskService(nil), newTestCache(t))

	created, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "Old title"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	title := "New title"
	if _, err := service.UpdateTask(db, user.ID, created.ID, services.TaskUpdate{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	task, err := service.GetTaskByID(db, user.ID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if task.Title != "New title" {
		t.Errorf("Expected updated title after invalidation, got %q", task.Title)
	}
}

func TestCachedTaskService_ListInvalidatedOnCreate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewCachedTaskService(services.NewTaskService(nil), newTestCache(t))

	if _, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "First"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, total, err := service.GetTasksPaginated(db, user.ID, services.TaskFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("Expected 1 task, got %d", total)
	}

	if _, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "Second"}); err != nil {
		t.Fatalf("Second create failed: %v", err)
	}

	_, total, err = service.GetTasksPaginated(db, user.ID, services.TaskFilter{})
	if err != nil {
		t.Fatalf("Second list failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected stale list evicted and 2 tasks returned, got %d", total)
	}
}

func TestCachedTaskService_DeleteInvalidates(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewCachedTaskService(services.NewTaskService(nil), newTestCache(t))

	created, err := service.CreateTask(db, user.ID, services.TaskInput{Title: "Doomed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := service.DeleteTask(db, user.ID, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = service.GetTaskByID(db, user.ID, created.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found after delete, got: %v", err)
	}
}
