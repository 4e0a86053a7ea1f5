package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/service"
)

type AvatarHandler struct {
	avatars service.AvatarUseCase
}

func NewAvatarHandler(avatars service.AvatarUseCase) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// Serve handles /avatars/:file where file is "<key>.png".
func (h *AvatarHandler) Serve(c *gin.Context) {
	key, ok := strings.CutSuffix(c.Param("file"), ".png")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "avatar not found"})
		return
	}

	data, err := h.avatars.PNG(key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=604800, immutable")
	c.Data(http.StatusOK, "image/png", data)
}
