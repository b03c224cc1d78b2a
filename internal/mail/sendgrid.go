package mail

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error formatting

	"github.com/sendgrid/sendgrid-go"                     // SendGrid client
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail" // SendGrid message builder
)

// SendGrid delivers messages through the SendGrid v3 API
type SendGrid struct {
	client *sendgrid.Client
}

// NewSendGrid returns a SendGrid mailer for the given API key
func NewSendGrid(apiKey string) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	m := sgmail.NewSingleEmail(
		sgmail.NewEmail("", msg.From),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
