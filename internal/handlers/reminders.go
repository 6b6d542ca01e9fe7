package handlers

import (
	"net/http"

	"taskmanager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReminderHandler struct {
	db              *gorm.DB
	reminderService services.ReminderService
}

func NewReminderHandler(db *gorm.DB, reminderService services.ReminderService) *ReminderHandler {
	return &ReminderHandler{db: db, reminderService: reminderService}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input services.ReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderService.CreateReminder(h.db, userID, taskID, input)
	if err != nil {
		handleServiceError(c, err, "reminder")
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListReminders(h.db, userID, taskID)
	if err != nil {
		handleServiceError(c, err, "reminder")
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reminderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reminder, err := h.reminderService.GetReminder(h.db, userID, reminderID)
	if err != nil {
		handleServiceError(c, err, "reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reminderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var changes services.ReminderUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderService.UpdateReminder(h.db, userID, reminderID, changes)
	if err != nil {
		handleServiceError(c, err, "reminder")
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reminderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(h.db, userID, reminderID); err != nil {
		handleServiceError(c, err, "reminder")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
