// Package email delivers magic-link sign-in emails through Amazon SES.
package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	appErrors "rinkhq-backend/pkg/errors"
)

// SESMailer implements ports.Mailer on SES v2.
type SESMailer struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

// NewSESMailer creates an SES mailer.
func NewSESMailer(client *sesv2.Client, fromAddress, fromName string, logger *zap.Logger) *SESMailer {
	return &SESMailer{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger,
	}
}

// SendMagicLink emails the sign-in link and returns the SES message id.
func (m *SESMailer) SendMagicLink(ctx context.Context, email, linkURL string) (string, error) {
	subject := "Your sign-in link"
	textBody := fmt.Sprintf("Click to sign in:\n\n%s\n\nThe link works once and expires shortly. If you did not request it, ignore this email.", linkURL)
	htmlBody := fmt.Sprintf(`<p>Click to sign in:</p><p><a href="%s">Sign in</a></p><p>The link works once and expires shortly. If you did not request it, ignore this email.</p>`, linkURL)

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(textBody)},
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		return "", appErrors.NewInternalError("send magic link email: " + err.Error())
	}

	messageID := aws.ToString(out.MessageId)
	m.logger.Info("Magic link email sent", zap.String("messageID", messageID))
	return messageID, nil
}

// LogMailer writes the link to the log instead of sending email. Used in
// development where SES is not configured.
type LogMailer struct {
	Logger *zap.Logger
}

// SendMagicLink logs the link and returns a fixed message id.
func (m *LogMailer) SendMagicLink(_ context.Context, email, linkURL string) (string, error) {
	m.Logger.Info("Magic link (dev mailer)",
		zap.String("email", email),
		zap.String("url", linkURL),
	)
	return "dev-mailer", nil
}
