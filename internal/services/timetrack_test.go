package services_test

import (
	"errors"
	"testing"
	"time"

	"taskmanager/internal/services"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

func TestStartStopTracking(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Deep work")

	entry, err := service.StartTracking(db, user.ID, task.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !entry.Active() {
		t.Error("Expected started entry to be active")
	}

	stopped, err := service.StopTracking(db, user.ID, task.ID)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if stopped.EndTime == nil {
		t.Fatal("Expected EndTime to be set after stop")
	}
	if stopped.Duration == nil {
		t.Fatal("Expected Duration to be set after stop")
	}
	if *stopped.Duration < 0 {
		t.Errorf("Expected non-negative duration, got %d", *stopped.Duration)
	}
}

func TestStartTracking_SecondStartConflicts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Deep work")

	if _, err := service.StartTracking(db, user.ID, task.ID); err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	_, err := service.StartTracking(db, user.ID, task.ID)
	if !errors.Is(err, services.ErrActiveTimeTrack) {
		t.Errorf("Expected ErrActiveTimeTrack, got: %v", err)
	}
}

func TestStartTracking_DifferentTasksAllowed(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	first := createTestTask(t, db, user.ID, "Task one")
	second := createTestTask(t, db, user.ID, "Task two")

	if _, err := service.StartTracking(db, user.ID, first.ID); err != nil {
		t.Fatalf("Start on first task failed: %v", err)
	}
	if _, err := service.StartTracking(db, user.ID, second.ID); err != nil {
		t.Errorf("Start on second task should not conflict, got: %v", err)
	}
}

func TestStopTracking_NoActiveEntry(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Idle task")

	_, err := service.StopTracking(db, user.ID, task.ID)
	if !errors.Is(err, services.ErrNoActiveTimeTrack) {
		t.Errorf("Expected ErrNoActiveTimeTrack, got: %v", err)
	}
}

func TestCreateEntry_DurationDerivedFromBounds(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Measured work")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour + time.Minute + time.Second + 900*time.Millisecond)
	bogus := 42
	entry, err := service.CreateEntry(db, user.ID, task.ID, services.TimeTrackInput{
		StartTime: start,
		EndTime:   &end,
		Duration:  &bogus,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 1h1m1.9s truncates to 3661 whole seconds.
	if entry.Duration == nil || *entry.Duration != 3661 {
		t.Fatalf("Expected duration 3661, got %v", entry.Duration)
	}
}

func TestCreateEntry_OpenEntryConflictsWithActive(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Deep work")

	if _, err := service.StartTracking(db, user.ID, task.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err := service.CreateEntry(db, user.ID, task.ID, services.TimeTrackInput{
		StartTime: time.Now().UTC(),
	})
	if !errors.Is(err, services.ErrActiveTimeTrack) {
		t.Errorf("Expected ErrActiveTimeTrack for a second open entry, got: %v", err)
	}
}

func TestUpdateEntry_RecomputesDuration(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, user.ID, "Measured work")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	entry, err := service.CreateEntry(db, user.ID, task.ID, services.TimeTrackInput{
		StartTime: start,
		EndTime:   &end,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newEnd := start.Add(30 * time.Minute)
	bogus := 1
	updated, err := service.UpdateEntry(db, user.ID, entry.ID, services.TimeTrackUpdate{
		EndTime:  &newEnd,
		Duration: &bogus,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Duration == nil || *updated.Duration != 1800 {
		t.Fatalf("Expected duration recomputed to 1800, got %v", updated.Duration)
	}
}

func TestGetEntry_ForeignTaskForbidden(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	service := services.NewTimeTrackService()

	task := createTestTask(t, db, owner.ID, "Private work")
	end := time.Now().UTC()
	entry, err := service.CreateEntry(db, owner.ID, task.ID, services.TimeTrackInput{
		StartTime: end.Add(-time.Hour),
		EndTime:   &end,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = service.GetEntry(db, other.ID, entry.ID)
	if !errors.Is(err, services.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got: %v", err)
	}
}

func TestGetEntry_MissingEntry(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	_, err := service.GetEntry(db, user.ID, uuid.Must(uuid.NewV4()))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found, got: %v", err)
	}
}

func TestStartTracking_MissingTask(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	service := services.NewTimeTrackService()

	_, err := service.StartTracking(db, user.ID, uuid.Must(uuid.NewV4()))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found, got: %v", err)
	}
}
