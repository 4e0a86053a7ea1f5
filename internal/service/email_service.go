package service

import (
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"portfolio-backend/internal/config"
)

var ErrEmailDisabled = errors.New("email delivery is disabled or not configured")

// Mailer sends plain-text email.
type Mailer interface {
	Enabled() bool
	Send(to, subject, body string, replyTo string) error
}

type EmailService struct {
	config *config.Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{config: cfg, send: smtp.SendMail}
}

func (s *EmailService) Enabled() bool {
	if s == nil || s.config == nil || !s.config.EnableEmail {
		return false
	}
	return strings.TrimSpace(s.config.SMTPHost) != ""
}

func (s *EmailService) Send(to, subject, body, replyTo string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	to = strings.TrimSpace(to)
	if to == "" || strings.ContainsAny(to, "\r\n") || strings.ContainsAny(replyTo, "\r\n") {
		return fmt.Errorf("invalid recipient %q", to)
	}

	host := strings.TrimSpace(s.config.SMTPHost)
	port := strings.TrimSpace(s.config.SMTPPort)
	if port == "" {
		port = "587"
	}
	from := strings.TrimSpace(s.config.SMTPFrom)
	if from == "" {
		from = "noreply@" + host
	}

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, host)
	}

	return s.send(host+":"+port, auth, from, []string{to}, buildMessage(from, to, replyTo, subject, body))
}

func buildMessage(from, to, replyTo, subject, body string) []byte {
	var builder strings.Builder

	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", mime.QEncoding.Encode("utf-8", strings.ReplaceAll(subject, "\n", " "))},
		{"Date", time.Now().UTC().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}
	if replyTo != "" {
		headers = append(headers, [2]string{"Reply-To", replyTo})
	}

	for _, header := range headers {
		builder.WriteString(header[0])
		builder.WriteString(": ")
		builder.WriteString(header[1])
		builder.WriteString("\r\n")
	}

	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return []byte(builder.String())
}
