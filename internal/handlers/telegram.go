package handlers

import (
	"net/http"

	"taskmanager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TelegramHandler struct {
	db              *gorm.DB
	telegramService services.TelegramService
}

func NewTelegramHandler(db *gorm.DB, telegramService services.TelegramService) *TelegramHandler {
	return &TelegramHandler{db: db, telegramService: telegramService}
}

func (h *TelegramHandler) Connect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.TelegramConnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, err := h.telegramService.Connect(h.db, userID, input)
	if err != nil {
		handleServiceError(c, err, "telegram connection")
		return
	}
	c.JSON(http.StatusCreated, binding)
}

func (h *TelegramHandler) GetConnection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	binding, err := h.telegramService.GetBinding(h.db, userID)
	if err != nil {
		handleServiceError(c, err, "telegram connection")
		return
	}
	c.JSON(http.StatusOK, binding)
}

func (h *TelegramHandler) UpdateConnection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var changes services.TelegramUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	binding, err := h.telegramService.UpdateBinding(h.db, userID, changes)
	if err != nil {
		handleServiceError(c, err, "telegram connection")
		return
	}
	c.JSON(http.StatusOK, binding)
}

func (h *TelegramHandler) DeleteConnection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.telegramService.DeleteBinding(h.db, userID); err != nil {
		handleServiceError(c, err, "telegram connection")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
