package services

import (
	"errors"
	"fmt"

	"taskmanager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TelegramConnectInput struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	ChatID     int64 `json:"chat_id" binding:"required"`
}

type TelegramUpdate struct {
	TelegramID *int64 `json:"telegram_id"`
	ChatID     *int64 `json:"chat_id"`
	IsActive   *bool  `json:"is_active"`
}

type TelegramService interface {
	Connect(db *gorm.DB, userID uuid.UUID, input TelegramConnectInput) (models.TelegramUser, error)
	GetBinding(db *gorm.DB, userID uuid.UUID) (models.TelegramUser, error)
	UpdateBinding(db *gorm.DB, userID uuid.UUID, changes TelegramUpdate) (models.TelegramUser, error)
	DeleteBinding(db *gorm.DB, userID uuid.UUID) error

	BindingForUser(db *gorm.DB, userID uuid.UUID) (models.TelegramUser, error)
	UserByTelegramID(db *gorm.DB, telegramID int64) (models.User, error)
}

type TelegramServiceImpl struct{}

func NewTelegramService() *TelegramServiceImpl {
	return &TelegramServiceImpl{}
}

func (s *TelegramServiceImpl) Connect(db *gorm.DB, userID uuid.UUID, input TelegramConnectInput) (models.TelegramUser, error) {
	var existing models.TelegramUser
	err := db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return models.TelegramUser{}, ErrTelegramLinked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TelegramUser{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.TelegramUser{}, fmt.Errorf("failed to generate binding ID: %w", err)
	}

	binding := models.TelegramUser{
		ID:         id,
		UserID:     userID,
		TelegramID: input.TelegramID,
		ChatID:     input.ChatID,
		IsActive:   true,
	}
	if err := db.Create(&binding).Error; err != nil {
		if isUniqueViolation(err) {
			return models.TelegramUser{}, ErrTelegramLinked
		}
		return models.TelegramUser{}, err
	}
	return binding, nil
}

func (s *TelegramServiceImpl) GetBinding(db *gorm.DB, userID uuid.UUID) (models.TelegramUser, error) {
	var binding models.TelegramUser
	err := db.Where("user_id = ?", userID).First(&binding).Error
	return binding, err
}

func (s *TelegramServiceImpl) UpdateBinding(db *gorm.DB, userID uuid.UUID, changes TelegramUpdate) (models.TelegramUser, error) {
	binding, err := s.GetBinding(db, userID)
	if err != nil {
		return models.TelegramUser{}, err
	}

	if changes.TelegramID != nil {
		binding.TelegramID = *changes.TelegramID
	}
	if changes.ChatID != nil {
		binding.ChatID = *changes.ChatID
	}
	if changes.IsActive != nil {
		binding.IsActive = *changes.IsActive
	}

	if err := db.Save(&binding).Error; err != nil {
		return models.TelegramUser{}, err
	}
	return binding, nil
}

func (s *TelegramServiceImpl) DeleteBinding(db *gorm.DB, userID uuid.UUID) error {
	binding, err := s.GetBinding(db, userID)
	if err != nil {
		return err
	}
	return db.Delete(&binding).Error
}

// BindingForUser is the dispatch-loop lookup; unlike GetBinding it is keyed by
// the task owner rather than the authenticated caller, which happens to be the
// same query today.
func (s *TelegramServiceImpl) BindingForUser(db *gorm.DB, userID uuid.UUID) (models.TelegramUser, error) {
	return s.GetBinding(db, userID)
}

func (s *TelegramServiceImpl) UserByTelegramID(db *gorm.DB, telegramID int64) (models.User, error) {
	var binding models.TelegramUser
	if err := db.Where("telegram_id = ?", telegramID).First(&binding).Error; err != nil {
		return models.User{}, err
	}

	var user models.User
	err := db.Where("id = ?", binding.UserID).First(&user).Error
	return user, err
}
