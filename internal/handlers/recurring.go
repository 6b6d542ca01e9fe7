package handlers

import (
	"net/http"

	"taskmanager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *TaskHandler) CreateRecurring(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input services.RecurringInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.taskService.CreateRecurring(h.db, userID, taskID, input)
	if err != nil {
		handleServiceError(c, err, "recurring rule")
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *TaskHandler) GetRecurring(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rule, err := h.taskService.GetRecurring(h.db, userID, taskID)
	if err != nil {
		handleServiceError(c, err, "recurring rule")
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *TaskHandler) UpdateRecurring(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var changes services.RecurringUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.taskService.UpdateRecurring(h.db, userID, taskID, changes)
	if err != nil {
		handleServiceError(c, err, "recurring rule")
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *TaskHandler) DeleteRecurring(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteRecurring(h.db, userID, taskID); err != nil {
		handleServiceError(c, err, "recurring rule")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
