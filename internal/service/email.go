package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/hcissey0/lecture-notes-app/internal/model"
)

// Mailer sends the notification emails. Failures are never fatal to the
// operation that triggered them.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendUploadConfirmation(ctx context.Context, email, name string, note *model.Note) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	notesURL := fmt.Sprintf("%s/api/notes", s.appURL)
	subject, body := welcomeEmailTemplate(greetingName(name), notesURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body, "url", notesURL)
}

func (s *EmailService) SendUploadConfirmation(ctx context.Context, email, name string, note *model.Note) error {
	noteURL := fmt.Sprintf("%s/api/notes/%s", s.appURL, note.ID)
	subject, body := uploadConfirmationTemplate(greetingName(name), note.Title, note.Course, noteURL, s.appName)
	return s.send(ctx, "upload_confirmation", email, subject, body, "note_id", note.ID)
}

// send delivers a plain text email, or only logs it in development.
func (s *EmailService) send(ctx context.Context, kind, to, subject, body string, attrs ...any) error {
	if s.isDev {
		args := append([]any{"type", kind, "to", to, "subject", subject}, attrs...)
		slog.Info("email sent (dev mode)", args...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

var _ Mailer = (*EmailService)(nil)
