package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/service"
)

// CommentHandler exposes comment moderation to the admin API.
type CommentHandler struct {
	commentService service.CommentUseCase
}

func NewCommentHandler(commentService service.CommentUseCase) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	comments, total, err := h.commentService.List(c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": total, "page": page, "limit": limit})
}

func (h *CommentHandler) ToggleApproval(c *gin.Context) {
	id, ok := parseID(c, "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.ToggleApproval(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "comment")
	if !ok {
		return
	}

	if err := h.commentService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

func (h *CommentHandler) BulkApprove(c *gin.Context) {
	var req models.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approved, err := h.commentService.BulkApprove(req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": approved})
}

func (h *CommentHandler) BulkDelete(c *gin.Context) {
	var req models.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.commentService.BulkDelete(req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
