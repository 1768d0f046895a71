package services

import (
	"context"

	"credibly/internal/utils"
	"credibly/pkg/logger"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogEmailSender writes outgoing mail to the log instead of delivering it.
type LogEmailSender struct {
	logger *logger.Logger
}

func NewLogEmailSender(log *logger.Logger) *LogEmailSender {
	return &LogEmailSender{logger: log}
}

func (s *LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"to":      utils.MaskEmail(to),
		"subject": subject,
		"body":    body,
	}).Info("Outgoing email")
	return nil
}
