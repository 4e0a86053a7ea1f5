package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/service"
)

// MessageHandler is the admin inbox for contact messages.
type MessageHandler struct {
	contactService service.ContactUseCase
}

func NewMessageHandler(contactService service.ContactUseCase) *MessageHandler {
	return &MessageHandler{contactService: contactService}
}

func (h *MessageHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	messages, total, err := h.contactService.List(page, limit, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": total, "page": page, "limit": limit})
}

func (h *MessageHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "message")
	if !ok {
		return
	}

	message, err := h.contactService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *MessageHandler) ToggleRead(c *gin.Context) {
	id, ok := parseID(c, "message")
	if !ok {
		return
	}

	message, err := h.contactService.ToggleRead(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *MessageHandler) ToggleReplied(c *gin.Context) {
	id, ok := parseID(c, "message")
	if !ok {
		return
	}

	message, err := h.contactService.ToggleReplied(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "message")
	if !ok {
		return
	}

	if err := h.contactService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted successfully"})
}
