package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-backend/internal/background"
	"portfolio-backend/internal/models"
	"portfolio-backend/pkg/logger"
)

type NotificationSettings struct {
	OwnerEmail string
	AutoReply  bool
	SiteName   string
	AppURL     string
}

// Job kinds label the scheduler metrics; job names carry the per-message detail.
const (
	JobKindContactOwnerAlert = "contact_owner_alert"
	JobKindContactAutoReply  = "contact_auto_reply"
	JobKindModerationDigest  = "moderation_digest"
)

var notificationRetry = background.RetryPolicy{MaxRetries: 3, Backoff: 30 * time.Second}

type notification struct {
	name    string
	kind    string
	to      string
	subject string
	body    string
	replyTo string
	unique  bool
}

// NotificationService turns domain events into queued email jobs. Enqueueing
// never blocks and failures are only logged.
type NotificationService struct {
	queue    background.Enqueuer
	mailer   Mailer
	settings NotificationSettings
}

func NewNotificationService(queue background.Enqueuer, mailer Mailer, settings NotificationSettings) *NotificationService {
	return &NotificationService{queue: queue, mailer: mailer, settings: settings}
}

func (s *NotificationService) ContactReceived(message *models.ContactMessage) {
	if message == nil {
		return
	}

	if owner := strings.TrimSpace(s.settings.OwnerEmail); owner != "" {
		subject := fmt.Sprintf("[%s] New message: %s", s.settings.SiteName, message.Subject)
		body := fmt.Sprintf(
			"From: %s <%s>\nSubject: %s\n\n%s\n\nIP: %s\nReceived: %s\nInbox: %s/admin/messages/%d\n",
			message.Name, message.Email, message.Subject, message.Message,
			message.IPAddress, message.CreatedAt.UTC().Format(time.RFC1123), s.settings.AppURL, message.ID,
		)
		s.enqueue(notification{
			name:    fmt.Sprintf("contact-owner-alert-%d", message.ID),
			kind:    JobKindContactOwnerAlert,
			to:      owner,
			subject: subject,
			body:    body,
			replyTo: message.Email,
		})
	}

	if s.settings.AutoReply {
		subject := fmt.Sprintf("Thanks for getting in touch with %s", s.settings.SiteName)
		body := fmt.Sprintf(
			"Hi %s,\n\nThanks for your message about \"%s\". I read every message and will get back to you soon.\n\n%s\n%s\n",
			message.Name, message.Subject, s.settings.SiteName, s.settings.AppURL,
		)
		s.enqueue(notification{
			name:    fmt.Sprintf("contact-auto-reply-%d", message.ID),
			kind:    JobKindContactAutoReply,
			to:      message.Email,
			subject: subject,
			body:    body,
		})
	}
}

// ModerationDigest queues a summary of the moderation backlog for the owner.
// At most one digest per day is queued or running at a time.
func (s *NotificationService) ModerationDigest(pendingComments, unreadMessages int64) {
	owner := strings.TrimSpace(s.settings.OwnerEmail)
	if owner == "" || (pendingComments == 0 && unreadMessages == 0) {
		return
	}

	subject := fmt.Sprintf("[%s] %d comments awaiting moderation, %d unread messages", s.settings.SiteName, pendingComments, unreadMessages)
	body := fmt.Sprintf(
		"Comments awaiting moderation: %d\nUnread contact messages: %d\n\nReview them at %s/admin\n",
		pendingComments, unreadMessages, s.settings.AppURL,
	)
	s.enqueue(notification{
		name:    "moderation-digest-" + time.Now().UTC().Format("20060102"),
		kind:    JobKindModerationDigest,
		to:      owner,
		subject: subject,
		body:    body,
		unique:  true,
	})
}

func (s *NotificationService) enqueue(n notification) {
	if s.queue == nil || s.mailer == nil {
		return
	}

	job := background.Job{
		Name:        n.name,
		Kind:        n.kind,
		Timeout:     30 * time.Second,
		RetryPolicy: notificationRetry,
		Run: func(ctx context.Context) error {
			if !s.mailer.Enabled() {
				logger.Debug("Email disabled, notification skipped", map[string]interface{}{"job": n.name})
				return nil
			}
			return s.mailer.Send(n.to, n.subject, n.body, n.replyTo)
		},
	}

	schedule := s.queue.Schedule
	if n.unique {
		schedule = s.queue.ScheduleUnique
	}

	err := schedule(job)
	switch {
	case err == nil:
	case errors.Is(err, background.ErrJobAlreadyScheduled):
		logger.Info("Notification already queued", map[string]interface{}{"job": n.name})
	default:
		logger.Error(err, "Failed to enqueue notification", map[string]interface{}{"job": n.name})
	}
}
