package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer writes outbound messages to the application log instead of
// delivering them. It is the default sink when SMTP is disabled, so approval
// links remain visible to operators of small deployments.
type ConsoleMailer struct {
	log *zap.Logger
}

// NewConsoleMailer constructs a console-backed Mailer.
func NewConsoleMailer(log *zap.Logger) *ConsoleMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsoleMailer{log: log}
}

// Send logs the message and reports success.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("outbound email",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
