package service

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/models"
)

func sampleMessage() *models.ContactMessage {
	message := &models.ContactMessage{
		Name:      "Grace",
		Email:     "grace@example.com",
		Subject:   "Project inquiry",
		Message:   "Hello there, let's talk.",
		IPAddress: "10.0.0.1",
	}
	message.ID = 7
	message.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return message
}

func runJobs(t *testing.T, queue *recordingQueue) {
	t.Helper()
	for _, job := range queue.jobs {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("job %s failed: %v", job.Name, err)
		}
	}
}

func TestContactReceivedQueuesOwnerAlertAndAutoReply(t *testing.T) {
	queue := &recordingQueue{}
	mailer := &stubMailer{enabled: true}
	svc := NewNotificationService(queue, mailer, NotificationSettings{
		OwnerEmail: "owner@example.com",
		AutoReply:  true,
		SiteName:   "Portfolio",
		AppURL:     "https://example.com",
	})

	svc.ContactReceived(sampleMessage())

	names := queue.names()
	if len(names) != 2 || names[0] != "contact-owner-alert-7" || names[1] != "contact-auto-reply-7" {
		t.Fatalf("unexpected jobs %v", names)
	}
	for _, job := range queue.jobs {
		if job.RetryPolicy.MaxRetries != 3 || job.Timeout <= 0 {
			t.Fatalf("expected retry policy and timeout on %s, got %+v", job.Name, job.RetryPolicy)
		}
	}
	if queue.jobs[0].Kind != JobKindContactOwnerAlert || queue.jobs[1].Kind != JobKindContactAutoReply {
		t.Fatalf("unexpected job kinds %q and %q", queue.jobs[0].Kind, queue.jobs[1].Kind)
	}

	if len(mailer.sent) != 0 {
		t.Fatalf("expected nothing sent before jobs run")
	}

	runJobs(t, queue)

	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(mailer.sent))
	}
	alert := mailer.sent[0]
	if alert.to != "owner@example.com" || alert.replyTo != "grace@example.com" {
		t.Fatalf("unexpected owner alert routing %+v", alert)
	}
	if !strings.Contains(alert.body, "https://example.com/admin/messages/7") {
		t.Fatalf("expected inbox link in alert body, got %q", alert.body)
	}
	reply := mailer.sent[1]
	if reply.to != "grace@example.com" || !strings.Contains(reply.subject, "Portfolio") {
		t.Fatalf("unexpected auto-reply %+v", reply)
	}
}

func TestContactReceivedRespectsSettings(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewNotificationService(queue, &stubMailer{enabled: true}, NotificationSettings{})

	svc.ContactReceived(sampleMessage())
	svc.ContactReceived(nil)

	if len(queue.jobs) != 0 {
		t.Fatalf("expected no jobs without owner or auto-reply, got %v", queue.names())
	}
}

func TestNotificationJobSkipsDisabledMailer(t *testing.T) {
	queue := &recordingQueue{}
	mailer := &stubMailer{enabled: false}
	svc := NewNotificationService(queue, mailer, NotificationSettings{OwnerEmail: "owner@example.com"})

	svc.ContactReceived(sampleMessage())
	runJobs(t, queue)

	if len(mailer.sent) != 0 {
		t.Fatalf("expected no email with mailer disabled, got %d", len(mailer.sent))
	}
}

func TestNotificationEnqueueFailureDoesNotPanic(t *testing.T) {
	queue := &recordingQueue{err: errors.New("queue full")}
	svc := NewNotificationService(queue, &stubMailer{enabled: true}, NotificationSettings{OwnerEmail: "owner@example.com", AutoReply: true})

	svc.ContactReceived(sampleMessage())

	if len(queue.jobs) != 0 {
		t.Fatalf("expected no jobs recorded")
	}
}

func TestModerationDigestSkipsEmptyBacklog(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewNotificationService(queue, &stubMailer{enabled: true}, NotificationSettings{OwnerEmail: "owner@example.com"})

	svc.ModerationDigest(0, 0)
	if len(queue.jobs) != 0 {
		t.Fatalf("expected no digest for empty backlog")
	}

	svc.ModerationDigest(2, 1)
	if len(queue.jobs) != 1 || !strings.HasPrefix(queue.jobs[0].Name, "moderation-digest-") {
		t.Fatalf("expected one digest job, got %v", queue.names())
	}
}

func TestModerationDigestIsQueuedOncePerDay(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewNotificationService(queue, &stubMailer{enabled: true}, NotificationSettings{OwnerEmail: "owner@example.com"})

	svc.ModerationDigest(2, 1)
	svc.ModerationDigest(3, 1)

	if len(queue.jobs) != 1 || !queue.unique[queue.jobs[0].Name] {
		t.Fatalf("expected one unique digest job, got %v", queue.names())
	}
	if queue.jobs[0].Kind != JobKindModerationDigest {
		t.Fatalf("expected digest kind, got %q", queue.jobs[0].Kind)
	}
}

func TestNotificationKindsAreBounded(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewNotificationService(queue, &stubMailer{enabled: true}, NotificationSettings{OwnerEmail: "owner@example.com", AutoReply: true})

	for id := uint(1); id <= 25; id++ {
		message := sampleMessage()
		message.ID = id
		svc.ContactReceived(message)
	}
	svc.ModerationDigest(1, 1)

	allowed := map[string]bool{
		JobKindContactOwnerAlert: true,
		JobKindContactAutoReply:  true,
		JobKindModerationDigest:  true,
	}
	kinds := make(map[string]bool)
	names := make(map[string]bool)
	for _, job := range queue.jobs {
		if !allowed[job.Kind] {
			t.Fatalf("unexpected kind %q on %s", job.Kind, job.Name)
		}
		kinds[job.Kind] = true
		names[job.Name] = true
	}
	if len(queue.jobs) != 51 || len(names) != 51 || len(kinds) != 3 {
		t.Fatalf("expected 51 distinct jobs over 3 kinds, got %d jobs, %d names, %d kinds", len(queue.jobs), len(names), len(kinds))
	}
}

type recordingDigest struct {
	pending, unread int64
	calls           int
}

func (d *recordingDigest) ModerationDigest(pending, unread int64) {
	d.pending, d.unread = pending, unread
	d.calls++
}

func TestDigestServiceReportsBacklog(t *testing.T) {
	comments := newStubCommentRepo(time.Now)
	_ = comments.Create(&models.Comment{PostID: 1, Body: "pending"})
	_ = comments.Create(&models.Comment{PostID: 1, Body: "approved", IsApproved: true})
	contacts := &stubContactRepo{}
	_ = contacts.Create(&models.ContactMessage{Subject: "hi"})

	notifier := &recordingDigest{}
	digest, err := NewDigestService("0 8 * * *", comments, contacts, notifier)
	if err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}

	if err := digest.Run(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if notifier.calls != 1 || notifier.pending != 1 || notifier.unread != 1 {
		t.Fatalf("unexpected digest %+v", notifier)
	}

	digest.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := digest.Stop(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestDigestServiceRejectsBadSchedule(t *testing.T) {
	if _, err := NewDigestService("not a cron", newStubCommentRepo(time.Now), &stubContactRepo{}, &recordingDigest{}); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestEmailServiceDisabled(t *testing.T) {
	svc := NewEmailService(&config.Config{EnableEmail: false, SMTPHost: "smtp.example.com"})
	if svc.Enabled() {
		t.Fatalf("expected disabled email service")
	}
	if err := svc.Send("a@example.com", "s", "b", ""); !errors.Is(err, ErrEmailDisabled) {
		t.Fatalf("expected ErrEmailDisabled, got %v", err)
	}
}

func TestEmailServiceBuildsMessage(t *testing.T) {
	svc := NewEmailService(&config.Config{EnableEmail: true, SMTPHost: "smtp.example.com", SMTPFrom: "site@example.com"})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := svc.Send("owner@example.com", "Héllo", "line one\nline two", "grace@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("expected default port, got %q", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "owner@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	for _, want := range []string{"From: site@example.com\r\n", "Reply-To: grace@example.com\r\n", "=?utf-8?q?", "line one\r\nline two"} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, gotMsg)
		}
	}

	if err := svc.Send("owner@example.com\r\nBcc: x@example.com", "s", "b", ""); err == nil {
		t.Fatalf("expected header injection to be rejected")
	}
}
