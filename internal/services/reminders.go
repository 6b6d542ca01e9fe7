package services

import (
	"fmt"
	"time"

	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ReminderInput struct {
	ReminderTime time.Time `json:"reminder_time" binding:"required"`
}

type ReminderUpdate struct {
	ReminderTime *time.Time `json:"reminder_time"`
	IsSent       *bool      `json:"is_sent"`
}

type ReminderService interface {
	CreateReminder(db *gorm.DB, userID, taskID uuid.UUID, input ReminderInput) (models.Reminder, error)
	ListReminders(db *gorm.DB, userID, taskID uuid.UUID) ([]models.Reminder, error)
	GetReminder(db *gorm.DB, userID, reminderID uuid.UUID) (models.Reminder, error)
	UpdateReminder(db *gorm.DB, userID, reminderID uuid.UUID, changes ReminderUpdate) (models.Reminder, error)
	DeleteReminder(db *gorm.DB, userID, reminderID uuid.UUID) error

	DueReminders(db *gorm.DB, now time.Time, window time.Duration) ([]models.Reminder, error)
	MarkSent(db *gorm.DB, reminderID uuid.UUID) (bool, error)
}

type ReminderServiceImpl struct{}

func NewReminderService() *ReminderServiceImpl {
	return &ReminderServiceImpl{}
}

func (s *ReminderServiceImpl) CreateReminder(db *gorm.DB, userID, taskID uuid.UUID, input ReminderInput) (models.Reminder, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return models.Reminder{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to generate reminder ID: %w", err)
	}

	reminder := models.Reminder{
		ID:           id,
		TaskID:       taskID,
		ReminderTime: input.ReminderTime,
	}
	if err := db.Create(&reminder).Error; err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (s *ReminderServiceImpl) ListReminders(db *gorm.DB, userID, taskID uuid.UUID) ([]models.Reminder, error) {
	if err := requireTaskOwner(db, userID, taskID); err != nil {
		return nil, err
	}

	var reminders []models.Reminder
	err := db.Where("task_id = ?", taskID).Order("reminder_time asc").Find(&reminders).Error
	return reminders, err
}

func (s *ReminderServiceImpl) GetReminder(db *gorm.DB, userID, reminderID uuid.UUID) (models.Reminder, error) {
	var reminder models.Reminder
	if err := db.Where("id = ?", reminderID).First(&reminder).Error; err != nil {
		return models.Reminder{}, err
	}
	if err := checkEntryOwner(db, userID, reminder.TaskID); err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (s *ReminderServiceImpl) UpdateReminder(db *gorm.DB, userID, reminderID uuid.UUID, changes ReminderUpdate) (models.Reminder, error) {
	reminder, err := s.GetReminder(db, userID, reminderID)
	if err != nil {
		return models.Reminder{}, err
	}

	if changes.ReminderTime != nil {
		reminder.ReminderTime = *changes.ReminderTime
	}
	if changes.IsSent != nil {
		reminder.IsSent = *changes.IsSent
	}

	if err := db.Save(&reminder).Error; err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (s *ReminderServiceImpl) DeleteReminder(db *gorm.DB, userID, reminderID uuid.UUID) error {
	reminder, err := s.GetReminder(db, userID, reminderID)
	if err != nil {
		return err
	}
	return db.Delete(&reminder).Error
}

// DueReminders returns unsent reminders whose fire time falls inside
// [now-window, now]. Anything older than the window stays unsent forever;
// skipping stale reminders avoids a notification burst after downtime.
func (s *ReminderServiceImpl) DueReminders(db *gorm.DB, now time.Time, window time.Duration) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := db.
		Where("is_sent = ? AND reminder_time <= ? AND reminder_time >= ?", false, now, now.Add(-window)).
		Order("reminder_time asc").
		Find(&reminders).Error
	return reminders, err
}

// MarkSent flips the sent flag with a conditional update so that two
// overlapping scans cannot both claim the same reminder. Returns false when
// another writer got there first.
func (s *ReminderServiceImpl) MarkSent(db *gorm.DB, reminderID uuid.UUID) (bool, error) {
	result := db.Model(&models.Reminder{}).
		Where("id = ? AND is_sent = ?", reminderID, false).
		Update("is_sent", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
