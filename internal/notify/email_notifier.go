// Package notify delivers best-effort out-of-band notifications about new
// messages. Delivery failures never affect the outcome of a send.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"

	"github.com/adveron/messaging-backend/internal/models"
)

// SendMailFunc submits a fully encoded MIME message to an SMTP relay.
// Split out so tests can capture the submission without a network.
type SendMailFunc func(addr string, auth sasl.Client, from string, to []string, r io.Reader) error

// Config holds the relay settings for the email notifier
type Config struct {
	RelayAddr string
	From      string
	Username  string
	Password  string
}

// EmailNotifier notifies a recipient by email when a new message arrives
type EmailNotifier struct {
	cfg      Config
	sendMail SendMailFunc
}

// NewEmailNotifier creates an EmailNotifier submitting through the given relay
func NewEmailNotifier(cfg Config) *EmailNotifier {
	return &EmailNotifier{
		cfg:      cfg,
		sendMail: smtp.SendMail,
	}
}

// NewEmailNotifierWithSender creates an EmailNotifier with a custom submit
// function. Used by tests.
func NewEmailNotifierWithSender(cfg Config, sendMail SendMailFunc) *EmailNotifier {
	return &EmailNotifier{
		cfg:      cfg,
		sendMail: sendMail,
	}
}

// NotifyNewMessage builds and submits a notification email for a delivered
// message. The body carries a snippet, never the full thread.
func (n *EmailNotifier) NotifyNewMessage(ctx context.Context, recipient, sender *models.Participant, message *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("New message from %s", sender.DisplayName)

	text := fmt.Sprintf("%s sent you a message:\n\n%s\n", sender.DisplayName, message.Snippet())
	if len(message.Attachments) > 0 {
		text += fmt.Sprintf("\nThe message carries %d attachment(s).\n", len(message.Attachments))
	}

	builder := enmime.Builder().
		From("", n.cfg.From).
		To(recipient.DisplayName, recipient.Email).
		Subject(subject).
		Text([]byte(text))

	part, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build notification email: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode notification email: %w", err)
	}

	var auth sasl.Client
	if n.cfg.Username != "" {
		auth = sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)
	}

	if err := n.sendMail(n.cfg.RelayAddr, auth, n.cfg.From, []string{recipient.Email}, &buf); err != nil {
		return fmt.Errorf("failed to submit notification email: %w", err)
	}

	return nil
}
