package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/validator"
)

// SubmissionOutcome tells the caller whether a public submission was stored.
// Callers must answer both outcomes identically.
type SubmissionOutcome int

const (
	SubmissionAccepted SubmissionOutcome = iota
	SubmissionDiscarded
)

type CommentSubmission struct {
	PostID    uint
	Request   models.CreateCommentRequest
	IP        string
	UserAgent string
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	cooldown    time.Duration
	now         func() time.Time
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, cooldown time.Duration) *CommentService {
	if cooldown <= 0 {
		cooldown = 2 * time.Minute
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// Submit runs the public comment pipeline. New comments always start unapproved.
func (s *CommentService) Submit(sub CommentSubmission) (*models.Comment, SubmissionOutcome, error) {
	fields := map[string]interface{}{"post_id": sub.PostID, "ip": sub.IP}

	if strings.TrimSpace(sub.Request.Website) != "" {
		recordSubmission(submissionComment, outcomeHoneypot)
		logger.Info("Discarded comment with filled honeypot", fields)
		return nil, SubmissionDiscarded, nil
	}

	req := sub.Request
	req.Name = validator.NormalizeSpaces(validator.SanitizeString(req.Name))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Body = strings.TrimSpace(validator.SanitizeString(req.Body))

	if err := validate(req); err != nil {
		recordSubmission(submissionComment, outcomeInvalid)
		return nil, SubmissionAccepted, err
	}

	now := s.now().UTC()

	post, err := s.postRepo.GetByID(sub.PostID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		recordSubmission(submissionComment, outcomeError)
		return nil, SubmissionAccepted, fmt.Errorf("failed to load post: %w", err)
	}
	if err != nil || !post.IsVisible(now) {
		recordSubmission(submissionComment, outcomeInvalid)
		return nil, SubmissionAccepted, NewValidationError("post", "The selected post is invalid.")
	}

	recent, err := s.commentRepo.ExistsFromIPSince(sub.IP, now.Add(-s.cooldown))
	if err != nil {
		recordSubmission(submissionComment, outcomeError)
		return nil, SubmissionAccepted, fmt.Errorf("failed to check comment rate limit: %w", err)
	}
	if recent {
		recordSubmission(submissionComment, outcomeRateLimited)
		logger.Warn("Comment rate limited", fields)
		return nil, SubmissionAccepted, NewRateLimitError("body", "You are commenting too quickly. Please wait a moment and try again.")
	}

	comment := &models.Comment{
		PostID:     post.ID,
		Name:       req.Name,
		Email:      req.Email,
		Body:       req.Body,
		IsApproved: false,
		IPAddress:  sub.IP,
		UserAgent:  truncate(sub.UserAgent, 512),
	}

	if err := s.commentRepo.Create(comment); err != nil {
		recordSubmission(submissionComment, outcomeError)
		return nil, SubmissionAccepted, fmt.Errorf("failed to save comment: %w", err)
	}

	recordSubmission(submissionComment, outcomeAccepted)
	logger.Info("Comment queued for moderation", map[string]interface{}{"comment_id": comment.ID, "post_id": post.ID})
	return comment, SubmissionAccepted, nil
}

// List returns comments for the moderation screen. status is "pending", "approved" or empty for all.
func (s *CommentService) List(status string, page, limit int) ([]models.Comment, int64, error) {
	page, limit = normalizePage(page, limit)

	var approved *bool
	switch status {
	case "pending":
		v := false
		approved = &v
	case "approved":
		v := true
		approved = &v
	}

	return s.commentRepo.List((page-1)*limit, limit, approved)
}

func (s *CommentService) ToggleApproval(id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "comment")
	}

	comment.IsApproved = !comment.IsApproved
	if err := s.commentRepo.SetApproval(id, comment.IsApproved); err != nil {
		return nil, notFound(err, "comment")
	}
	return comment, nil
}

// BulkApprove skips ids that do not exist.
func (s *CommentService) BulkApprove(ids []uint) (int64, error) {
	ids, err := bulkIDs(ids)
	if err != nil {
		return 0, err
	}
	return s.commentRepo.ApproveMany(ids)
}

// BulkDelete skips ids that do not exist.
func (s *CommentService) BulkDelete(ids []uint) (int64, error) {
	ids, err := bulkIDs(ids)
	if err != nil {
		return 0, err
	}
	return s.commentRepo.DeleteMany(ids)
}

// bulkIDs dedupes ids and enforces the BulkIDsRequest bounds.
func bulkIDs(ids []uint) ([]uint, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, NewValidationError("ids", "Select at least one comment.")
	}
	if err := validate(models.BulkIDsRequest{IDs: ids}); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *CommentService) Delete(id uint) error {
	if err := s.commentRepo.Delete(id); err != nil {
		return notFound(err, "comment")
	}
	return nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
