// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendSignupConfirmation(toEmail, confirmURL string) error
	// Enabled reports whether mail actually leaves the process.
	Enabled() bool
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	siteTitle string
	logger    *logging.ChanneledLogger
}

// NewService returns a Resend-backed service, or a log-only one when no API
// key is configured.
func NewService(logger *logging.ChanneledLogger) Service {
	if config.ResendAPIKey == "" {
		logger.Email().Warn("RESEND_API_KEY not set, confirmation emails will only be logged")
		return &LogOnlyService{logger: logger}
	}
	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.EmailFrom,
		fromName:  config.EmailFromName,
		siteTitle: config.EmailFromName,
		logger:    logger,
	}
}

func (c *ResendClient) Enabled() bool { return true }

// SendSignupConfirmation composes and sends the account confirmation email.
func (c *ResendClient) SendSignupConfirmation(toEmail, confirmURL string) error {
	html, err := templates.RenderConfirmation(templates.ConfirmationProps{
		SiteTitle:  c.siteTitle,
		ConfirmURL: confirmURL,
		Email:      toEmail,
	})
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "Xác nhận tài khoản quản trị",
		Html:    html,
	}

	sent, err := c.client.Emails.Send(params)
	if err != nil {
		c.logger.Email().Error("Confirmation email failed", "error", err.Error())
		return fmt.Errorf("failed to send confirmation email via Resend: %w", err)
	}
	c.logger.Email().Info("Confirmation email sent", "messageId", sent.Id)
	return nil
}

// LogOnlyService records outgoing mail in the email log channel instead of sending it.
type LogOnlyService struct {
	logger *logging.ChanneledLogger
}

func (s *LogOnlyService) Enabled() bool { return false }

func (s *LogOnlyService) SendSignupConfirmation(toEmail, confirmURL string) error {
	s.logger.Email().Info("Confirmation email not sent, delivery disabled", "confirmURL", confirmURL)
	return nil
}
