package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes emails to the log instead of delivering them. Used
// in development when no Postmark token is configured.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendOTP(_ context.Context, to, firstName, code string) error {
	s.logger.WithFields(logrus.Fields{
		"to":         to,
		"first_name": firstName,
		"code":       code,
	}).Info("Email simulation: verification code")
	return nil
}

func (s *LogSender) SendWelcome(_ context.Context, to, firstName string) error {
	s.logger.WithFields(logrus.Fields{
		"to":         to,
		"first_name": firstName,
	}).Info("Email simulation: welcome email")
	return nil
}
