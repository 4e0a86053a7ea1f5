package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/repository"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/validator"
)

// WindowCounter is an atomic counter that expires a fixed time after its first increment.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	DecrementWindow(ctx context.Context, key string) error
}

// ContactNotifier is told about every stored contact message. It must not block.
type ContactNotifier interface {
	ContactReceived(message *models.ContactMessage)
}

type ContactSettings struct {
	Limit  int
	Window time.Duration
}

type ContactSubmission struct {
	Request   models.ContactRequest
	IP        string
	UserAgent string
}

type ContactService struct {
	contactRepo repository.ContactRepository
	counter     WindowCounter
	notifier    ContactNotifier
	settings    ContactSettings
}

func NewContactService(contactRepo repository.ContactRepository, counter WindowCounter, notifier ContactNotifier, settings ContactSettings) *ContactService {
	if settings.Limit <= 0 {
		settings.Limit = 3
	}
	if settings.Window <= 0 {
		settings.Window = time.Hour
	}
	return &ContactService{
		contactRepo: contactRepo,
		counter:     counter,
		notifier:    notifier,
		settings:    settings,
	}
}

func contactCounterKey(ip string) string {
	return "contact:ip:" + ip
}

// Submit runs the public contact pipeline. The per-IP slot is reserved with an
// atomic increment before the message is stored and released if storing fails.
func (s *ContactService) Submit(ctx context.Context, sub ContactSubmission) (*models.ContactMessage, SubmissionOutcome, error) {
	log := logger.FromContext(ctx).WithField("ip", sub.IP)

	if strings.TrimSpace(sub.Request.Website) != "" {
		recordSubmission(submissionContact, outcomeHoneypot)
		log.Info("Discarded contact message with filled honeypot")
		return nil, SubmissionDiscarded, nil
	}

	req := sub.Request
	req.Name = validator.NormalizeSpaces(validator.SanitizeString(req.Name))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = validator.NormalizeSpaces(validator.SanitizeString(req.Subject))
	req.Message = strings.TrimSpace(validator.SanitizeString(req.Message))

	if err := validate(req); err != nil {
		recordSubmission(submissionContact, outcomeInvalid)
		return nil, SubmissionAccepted, err
	}

	key := contactCounterKey(sub.IP)
	count, _, err := s.counter.IncrementWindow(ctx, key, s.settings.Window)
	if err != nil {
		recordSubmission(submissionContact, outcomeError)
		return nil, SubmissionAccepted, fmt.Errorf("failed to check contact rate limit: %w", err)
	}
	if count > int64(s.settings.Limit) {
		recordSubmission(submissionContact, outcomeRateLimited)
		log.WithField("count", count).Warn("Contact form rate limited")
		return nil, SubmissionAccepted, NewRateLimitError("message", "Too many messages sent. Please try again later.")
	}

	message := &models.ContactMessage{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: sub.IP,
		UserAgent: truncate(sub.UserAgent, 512),
	}

	if err := s.contactRepo.Create(message); err != nil {
		if releaseErr := s.counter.DecrementWindow(ctx, key); releaseErr != nil {
			log.WithError(releaseErr).Warn("Failed to release contact rate limit slot")
		}
		recordSubmission(submissionContact, outcomeError)
		return nil, SubmissionAccepted, fmt.Errorf("failed to save contact message: %w", err)
	}

	recordSubmission(submissionContact, outcomeAccepted)
	log.WithField("message_id", message.ID).Info("Contact message stored")

	if s.notifier != nil {
		s.notifier.ContactReceived(message)
	}

	return message, SubmissionAccepted, nil
}

func (s *ContactService) List(page, limit int, unreadOnly bool) ([]models.ContactMessage, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.contactRepo.List((page-1)*limit, limit, unreadOnly)
}

func (s *ContactService) GetByID(id uint) (*models.ContactMessage, error) {
	message, err := s.contactRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "message")
	}
	return message, nil
}

func (s *ContactService) ToggleRead(id uint) (*models.ContactMessage, error) {
	message, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	message.IsRead = !message.IsRead
	if err := s.contactRepo.SetFlag(id, "is_read", message.IsRead); err != nil {
		return nil, notFound(err, "message")
	}
	return message, nil
}

func (s *ContactService) ToggleReplied(id uint) (*models.ContactMessage, error) {
	message, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	message.IsReplied = !message.IsReplied
	if err := s.contactRepo.SetFlag(id, "is_replied", message.IsReplied); err != nil {
		return nil, notFound(err, "message")
	}
	return message, nil
}

func (s *ContactService) Delete(id uint) error {
	if err := s.contactRepo.Delete(id); err != nil {
		return notFound(err, "message")
	}
	return nil
}
