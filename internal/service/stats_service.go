package service

import (
	"fmt"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
)

type DashboardStats struct {
	PublishedPosts   int64 `json:"published_posts"`
	DraftPosts       int64 `json:"draft_posts"`
	TotalViews       int64 `json:"total_views"`
	PendingComments  int64 `json:"pending_comments"`
	ApprovedComments int64 `json:"approved_comments"`
	UnreadMessages   int64 `json:"unread_messages"`
	TotalMessages    int64 `json:"total_messages"`
}

type StatsService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	contactRepo repository.ContactRepository
}

func NewStatsService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, contactRepo repository.ContactRepository) *StatsService {
	return &StatsService{postRepo: postRepo, commentRepo: commentRepo, contactRepo: contactRepo}
}

func (s *StatsService) Dashboard() (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	published := models.PostStatusPublished
	draft := models.PostStatusDraft
	pending, approved := false, true

	if stats.PublishedPosts, err = s.postRepo.Count(&published); err != nil {
		return nil, fmt.Errorf("failed to count published posts: %w", err)
	}
	if stats.DraftPosts, err = s.postRepo.Count(&draft); err != nil {
		return nil, fmt.Errorf("failed to count draft posts: %w", err)
	}
	if stats.TotalViews, err = s.postRepo.TotalViews(); err != nil {
		return nil, fmt.Errorf("failed to sum views: %w", err)
	}
	if stats.PendingComments, err = s.commentRepo.Count(&pending); err != nil {
		return nil, fmt.Errorf("failed to count pending comments: %w", err)
	}
	if stats.ApprovedComments, err = s.commentRepo.Count(&approved); err != nil {
		return nil, fmt.Errorf("failed to count approved comments: %w", err)
	}
	if stats.UnreadMessages, err = s.contactRepo.CountUnread(); err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	if stats.TotalMessages, err = s.contactRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	return &stats, nil
}
