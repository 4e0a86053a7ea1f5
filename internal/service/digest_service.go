package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/logger"
)

// DigestNotifier receives the moderation backlog counts.
type DigestNotifier interface {
	ModerationDigest(pendingComments, unreadMessages int64)
}

// DigestService periodically reports pending comments and unread messages.
type DigestService struct {
	cron        *cron.Cron
	commentRepo repository.CommentRepository
	contactRepo repository.ContactRepository
	notifier    DigestNotifier
}

func NewDigestService(spec string, commentRepo repository.CommentRepository, contactRepo repository.ContactRepository, notifier DigestNotifier) (*DigestService, error) {
	d := &DigestService{
		cron:        cron.New(),
		commentRepo: commentRepo,
		contactRepo: contactRepo,
		notifier:    notifier,
	}

	if _, err := d.cron.AddFunc(spec, func() {
		if err := d.Run(); err != nil {
			logger.Error(err, "Moderation digest failed", nil)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	return d, nil
}

func (d *DigestService) Start() {
	d.cron.Start()
}

// Stop waits for a running digest to finish or ctx to expire.
func (d *DigestService) Stop(ctx context.Context) error {
	done := d.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DigestService) Run() error {
	pending := false
	pendingCount, err := d.commentRepo.Count(&pending)
	if err != nil {
		return fmt.Errorf("failed to count pending comments: %w", err)
	}

	unreadCount, err := d.contactRepo.CountUnread()
	if err != nil {
		return fmt.Errorf("failed to count unread messages: %w", err)
	}

	logger.Info("Moderation digest", map[string]interface{}{"pending_comments": pendingCount, "unread_messages": unreadCount})
	d.notifier.ModerationDigest(pendingCount, unreadCount)
	return nil
}
