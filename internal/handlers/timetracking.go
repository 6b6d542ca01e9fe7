package handlers

import (
	"net/http"

	"taskmanager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TimeTrackHandler struct {
	db               *gorm.DB
	timeTrackService services.TimeTrackService
}

func NewTimeTrackHandler(db *gorm.DB, timeTrackService services.TimeTrackService) *TimeTrackHandler {
	return &TimeTrackHandler{db: db, timeTrackService: timeTrackService}
}

func (h *TimeTrackHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input services.TimeTrackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timeTrackService.CreateEntry(h.db, userID, taskID, input)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *TimeTrackHandler) ListEntries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.timeTrackService.ListEntries(h.db, userID, taskID)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *TimeTrackHandler) GetEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.timeTrackService.GetEntry(h.db, userID, entryID)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *TimeTrackHandler) UpdateEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var changes services.TimeTrackUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.timeTrackService.UpdateEntry(h.db, userID, entryID, changes)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *TimeTrackHandler) DeleteEntry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.timeTrackService.DeleteEntry(h.db, userID, entryID); err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TimeTrackHandler) StartTracking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.timeTrackService.StartTracking(h.db, userID, taskID)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *TimeTrackHandler) StopTracking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.timeTrackService.StopTracking(h.db, userID, taskID)
	if err != nil {
		handleServiceError(c, err, "time track")
		return
	}
	c.JSON(http.StatusOK, entry)
}
