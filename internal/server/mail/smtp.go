package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds settings for the outbound SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPTransport delivers notifications over SMTP. One delivery attempt per
// Send call; retry policy, if any, belongs to the relay.
type SMTPTransport struct {
	client *gomail.Client
}

// NewSMTPTransport builds an SMTP client. Auth is configured only when a
// username is set, so a local dev relay works without credentials.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client error: %w", err)
	}
	return &SMTPTransport{client: client}, nil
}

// Send performs a single delivery attempt for the notification.
func (t *SMTPTransport) Send(ctx context.Context, n *Notification) error {
	msg := gomail.NewMsg()
	if err := msg.From(n.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, n.TextBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, n.HTMLBody)

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}
