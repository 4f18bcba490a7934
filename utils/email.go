// utils/email.go
package utils

import (
	"context"
	"fmt"
	"net/http"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"go-storefront/config"
	"go-storefront/models"
)

// Mailer sends transactional emails
type Mailer interface {
	SendWelcome(ctx context.Context, user models.User) error
}

// NewMailer picks the provider from cfg: Postmark when a server token is
// set, SendGrid when an API key is set, otherwise a no-op mailer.
func NewMailer(cfg config.Config, logger *logrus.Logger) Mailer {
	switch {
	case cfg.EmailSender == "":
		logger.Info("EMAIL_SENDER not set, welcome emails disabled")
		return NopMailer{}
	case cfg.PostmarkToken != "":
		return NewPostmarkMailer(postmark.NewClient(cfg.PostmarkToken, ""), cfg.EmailSender, logger)
	case cfg.SendGridAPIKey != "":
		return &EmailService{
			client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
			sender: cfg.EmailSender,
			logger: logger,
		}
	default:
		logger.Info("no email provider configured, welcome emails disabled")
		return NopMailer{}
	}
}

func welcomeContent(user models.User) (subject, text, html string) {
	subject = "Welcome to the store"
	text = fmt.Sprintf("Hi %s, your account is ready. Happy shopping!", user.FirstName)
	html = fmt.Sprintf("<strong>Hi %s,</strong><br><br>Your account is ready. Happy shopping!", user.FirstName)
	return subject, text, html
}

// PostmarkMailer sends emails using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	sender string
	logger *logrus.Logger
}

func NewPostmarkMailer(client *postmark.Client, sender string, logger *logrus.Logger) *PostmarkMailer {
	return &PostmarkMailer{client: client, sender: sender, logger: logger}
}

// SendWelcome greets a newly registered user. The Postmark client has no
// context support, so ctx is only checked before sending.
func (pm *PostmarkMailer) SendWelcome(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, text, html := welcomeContent(user)
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.sender,
		To:       user.Email,
		Subject:  subject,
		HtmlBody: html,
		TextBody: text,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	pm.logger.WithField("to", user.Email).Debug("welcome email sent")
	return nil
}

// EmailService sends emails through SendGrid
type EmailService struct {
	client *sendgrid.Client
	sender string
	logger *logrus.Logger
}

// SendWelcome greets a newly registered user
func (es *EmailService) SendWelcome(ctx context.Context, user models.User) error {
	subject, text, html := welcomeContent(user)
	from := mail.NewEmail("Storefront", es.sender)
	to := mail.NewEmail(user.FirstName+" "+user.LastName, user.Email)

	resp, err := es.client.SendWithContext(ctx, mail.NewSingleEmail(from, subject, to, text, html))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}

	es.logger.WithField("to", user.Email).Debug("welcome email sent")
	return nil
}

// NopMailer discards every email
type NopMailer struct{}

func (NopMailer) SendWelcome(context.Context, models.User) error { return nil }
