package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConsoleMailerLogsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	mailer := NewConsoleMailer(zap.New(core))
	err := mailer.Send(context.Background(), Message{
		To:      []string{"applicant@example.com"},
		Subject: "Welcome",
		Body:    "your link",
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "outbound email", entries[0].Message)
}

func TestConsoleMailerNilLogger(t *testing.T) {
	mailer := NewConsoleMailer(nil)
	require.NoError(t, mailer.Send(context.Background(), Message{To: []string{"a@b.c"}}))
}
