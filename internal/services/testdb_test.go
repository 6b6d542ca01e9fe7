package services_test

import (
	"sync"
	"testing"
	"time"

	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Task{},
		&models.RecurringTask{},
		&models.TimeTrack{},
		&models.Reminder{},
		&models.TelegramUser{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_tracks_active
		ON time_tracks (task_id) WHERE end_time IS NULL`).Error
	if err != nil {
		t.Fatalf("Failed to create active tracking index: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		ID:             uuid.Must(uuid.NewV4()),
		Email:          username + "@example.com",
		Username:       username,
		HashedPassword: "not-a-real-hash",
		IsActive:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestTask(t *testing.T, db *gorm.DB, userID uuid.UUID, title string) models.Task {
	t.Helper()

	task := models.Task{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   userID,
		Title:    title,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		Category: models.CategoryOther,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	return task
}

// recordingMetrics counts metric emissions for assertions.
type recordingMetrics struct {
	mu            sync.Mutex
	created       int
	completed     int
	lastDuration  time.Duration
	notifications map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{notifications: make(map[string]int)}
}

func (m *recordingMetrics) TaskCreated(category, priority string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *recordingMetrics) TaskCompleted(category, priority string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
	m.lastDuration = duration
}

func (m *recordingMetrics) NotificationSent(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[status]++
}

func (m *recordingMetrics) completedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}
