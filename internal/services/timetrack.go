package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TimeTrackInput struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	Duration  *int       `json:"duration"`
}

type TimeTrackUpdate struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Duration  *int       `json:"duration"`
}

type TimeTrackService interface {
	CreateEntry(db *gorm.DB, userID, taskID uuid.UUID, input TimeTrackInput) (models.TimeTrack, error)
	ListEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeTrack, error)
	GetEntry(db *gorm.DB, userID, entryID uuid.UUID) (models.TimeTrack, error)
	UpdateEntry(db *gorm.DB, userID, entryID uuid.UUID, changes TimeTrackUpdate) (models.TimeTrack, error)
	DeleteEntry(db *gorm.DB, userID, entryID uuid.UUID) error
	StartTracking(db *gorm.DB, userID, taskID uuid.UUID) (models.TimeTrack, error)
	StopTracking(db *gorm.DB, userID, taskID uuid.UUID) (models.TimeTrack, error)
}

type TimeTrackServiceImpl struct{}

func NewTimeTrackService() *TimeTrackServiceImpl {
	return &TimeTrackServiceImpl{}
}

// durationSeconds truncates to whole seconds, it does not round.
func durationSeconds(start, end time.Time) int {
	return int(end.Sub(start) / time.Second)
}

func (s *TimeTrackServiceImpl) CreateEntry(db *gorm.DB, userID, taskID uuid.UUID, input TimeTrackInput) (models.TimeTrack, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return models.TimeTrack{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.TimeTrack{}, fmt.Errorf("failed to generate entry ID: %w", err)
	}

	entry := models.TimeTrack{
		ID:        id,
		TaskID:    taskID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Duration:  input.Duration,
	}

	// Supplied durations are advisory: when both bounds are known the stored
	// duration is always derived from them.
	if entry.EndTime != nil {
		seconds := durationSeconds(entry.StartTime, *entry.EndTime)
		entry.Duration = &seconds
	}

	if err := db.Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return models.TimeTrack{}, ErrActiveTimeTrack
		}
		return models.TimeTrack{}, err
	}
	return entry, nil
}

func (s *TimeTrackServiceImpl) ListEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeTrack, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return nil, err
	}

	var entries []models.TimeTrack
	err := db.Where("task_id = ?", taskID).Order("start_time asc").Find(&entries).Error
	return entries, err
}

func (s *TimeTrackServiceImpl) GetEntry(db *gorm.DB, userID, entryID uuid.UUID) (models.TimeTrack, error) {
	var entry models.TimeTrack
	if err := db.Where("id = ?", entryID).First(&entry).Error; err != nil {
		return models.TimeTrack{}, err
	}
	if err := checkEntryOwner(db, userID, entry.TaskID); err != nil {
		return models.TimeTrack{}, err
	}
	return entry, nil
}

func (s *TimeTrackServiceImpl) UpdateEntry(db *gorm.DB, userID, entryID uuid.UUID, changes TimeTrackUpdate) (models.TimeTrack, error) {
	entry, err := s.GetEntry(db, userID, entryID)
	if err != nil {
		return models.TimeTrack{}, err
	}

	// Duration is recomputed against the stored start time before any start
	// time change is applied, overriding whatever the caller supplied.
	if changes.EndTime != nil {
		seconds := durationSeconds(entry.StartTime, *changes.EndTime)
		changes.Duration = &seconds
	}

	if changes.StartTime != nil {
		entry.StartTime = *changes.StartTime
	}
	if changes.EndTime != nil {
		entry.EndTime = changes.EndTime
	}
	if changes.Duration != nil {
		entry.Duration = changes.Duration
	}

	if err := db.Save(&entry).Error; err != nil {
		return models.TimeTrack{}, err
	}
	return entry, nil
}

func (s *TimeTrackServiceImpl) DeleteEntry(db *gorm.DB, userID, entryID uuid.UUID) error {
	entry, err := s.GetEntry(db, userID, entryID)
	if err != nil {
		return err
	}
	return db.Delete(&entry).Error
}

func (s *TimeTrackServiceImpl) StartTracking(db *gorm.DB, userID, taskID uuid.UUID) (models.TimeTrack, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return models.TimeTrack{}, err
	}

	var active models.TimeTrack
	err := db.Where("task_id = ? AND end_time IS NULL", taskID).First(&active).Error
	if err == nil {
		return models.TimeTrack{}, ErrActiveTimeTrack
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TimeTrack{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.TimeTrack{}, fmt.Errorf("failed to generate entry ID: %w", err)
	}

	entry := models.TimeTrack{
		ID:        id,
		TaskID:    taskID,
		StartTime: time.Now().UTC(),
	}

	// The partial unique index closes the check-then-insert race between two
	// concurrent starts; the earlier lookup only exists for the common path.
	if err := db.Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return models.TimeTrack{}, ErrActiveTimeTrack
		}
		return models.TimeTrack{}, err
	}
	return entry, nil
}

func (s *TimeTrackServiceImpl) StopTracking(db *gorm.DB, userID, taskID uuid.UUID) (models.TimeTrack, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return models.TimeTrack{}, err
	}

	var entry models.TimeTrack
	err := db.Where("task_id = ? AND end_time IS NULL", taskID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TimeTrack{}, ErrNoActiveTimeTrack
	}
	if err != nil {
		return models.TimeTrack{}, err
	}

	now := time.Now().UTC()
	seconds := durationSeconds(entry.StartTime, now)
	entry.EndTime = &now
	entry.Duration = &seconds

	if err := db.Save(&entry).Error; err != nil {
		return models.TimeTrack{}, err
	}
	return entry, nil
}

func requireTaskOwner(db *gorm.DB, userID, taskID uuid.UUID) error {
	var task models.Task
	return db.Select("id").Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
}

// checkEntryOwner distinguishes a vanished parent task (not found) from a task
// owned by someone else (forbidden).
func checkEntryOwner(db *gorm.DB, userID, taskID uuid.UUID) error {
	var task models.Task
	if err := db.Select("id, user_id").Where("id = ?", taskID).First(&task).Error; err != nil {
		return err
	}
	if task.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
