package notify

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adveron/messaging-backend/internal/models"
)

type capturedMail struct {
	addr string
	auth sasl.Client
	from string
	to   []string
	body []byte
}

func captureSender(captured *capturedMail, fail error) SendMailFunc {
	return func(addr string, auth sasl.Client, from string, to []string, r io.Reader) error {
		if fail != nil {
			return fail
		}
		body, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		*captured = capturedMail{addr: addr, auth: auth, from: from, to: to, body: body}
		return nil
	}
}

func testParticipants() (*models.Participant, *models.Participant) {
	sender := &models.Participant{ID: 1, DisplayName: "Alice", Email: "alice@example.com", Role: "advertiser"}
	recipient := &models.Participant{ID: 2, DisplayName: "Bob", Email: "bob@example.com", Role: "partner"}
	return sender, recipient
}

func TestNotifyNewMessage_SubmitsToRelay(t *testing.T) {
	var captured capturedMail
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
	}, captureSender(&captured, nil))

	sender, recipient := testParticipants()
	message := &models.Message{ID: 10, Content: "are we still on for 3pm?"}

	err := notifier.NotifyNewMessage(context.Background(), recipient, sender, message)
	require.NoError(t, err)

	assert.Equal(t, "relay.example.com:587", captured.addr)
	assert.Equal(t, "noreply@example.com", captured.from)
	assert.Equal(t, []string{"bob@example.com"}, captured.to)
	assert.Nil(t, captured.auth)

	body := string(captured.body)
	assert.Contains(t, body, "New message from Alice")
	assert.Contains(t, body, "are we still on for 3pm?")
}

func TestNotifyNewMessage_SnippetTruncatesLongContent(t *testing.T) {
	var captured capturedMail
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
	}, captureSender(&captured, nil))

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	sender, recipient := testParticipants()
	message := &models.Message{ID: 10, Content: string(long)}

	err := notifier.NotifyNewMessage(context.Background(), recipient, sender, message)
	require.NoError(t, err)

	// The full 500-char body never appears in the notification
	assert.NotContains(t, string(captured.body), string(long))
}

func TestNotifyNewMessage_MentionsAttachments(t *testing.T) {
	var captured capturedMail
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
	}, captureSender(&captured, nil))

	sender, recipient := testParticipants()
	message := &models.Message{
		ID:      10,
		Content: "see attached",
		Attachments: []models.Attachment{
			{Filename: "report.pdf"},
			{Filename: "chart.png"},
		},
	}

	err := notifier.NotifyNewMessage(context.Background(), recipient, sender, message)
	require.NoError(t, err)

	assert.Contains(t, string(captured.body), "2 attachment(s)")
}

func TestNotifyNewMessage_AuthConfigured(t *testing.T) {
	var captured capturedMail
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
		Username:  "relay-user",
		Password:  "relay-pass",
	}, captureSender(&captured, nil))

	sender, recipient := testParticipants()
	message := &models.Message{ID: 10, Content: "hello"}

	err := notifier.NotifyNewMessage(context.Background(), recipient, sender, message)
	require.NoError(t, err)

	assert.NotNil(t, captured.auth)
}

func TestNotifyNewMessage_RelayErrorPropagates(t *testing.T) {
	var captured capturedMail
	relayErr := errors.New("relay unavailable")
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
	}, captureSender(&captured, relayErr))

	sender, recipient := testParticipants()
	message := &models.Message{ID: 10, Content: "hello"}

	err := notifier.NotifyNewMessage(context.Background(), recipient, sender, message)

	assert.ErrorIs(t, err, relayErr)
}

func TestNotifyNewMessage_CancelledContext(t *testing.T) {
	var captured capturedMail
	notifier := NewEmailNotifierWithSender(Config{
		RelayAddr: "relay.example.com:587",
		From:      "noreply@example.com",
	}, captureSender(&captured, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender, recipient := testParticipants()
	message := &models.Message{ID: 10, Content: "hello"}

	err := notifier.NotifyNewMessage(ctx, recipient, sender, message)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured.to)
}
