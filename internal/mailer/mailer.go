package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"roadside-service/internal/config"
)

// Mailer sends the transactional emails of the marketplace.
type Mailer interface {
	SendPartnerWelcome(ctx context.Context, to, fullName, temporaryPassword string) error
	SendContactAck(ctx context.Context, to, name, subject string) error
}

// New returns an SMTP mailer, or a logging no-op when SMTP is not configured.
func New(cfg config.SMTPConfig, log zerolog.Logger) Mailer {
	if cfg.Host == "" || cfg.Sender == "" {
		log.Warn().Msg("smtp not configured, outgoing mail will be logged only")
		return NopMailer{log: log}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
		log:    log,
	}
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer sender
	sender string
	log    zerolog.Logger
}

func (m *SMTPMailer) SendPartnerWelcome(ctx context.Context, to, fullName, temporaryPassword string) error {
	msg := m.message(to, "Your provider account is ready")
	msg.SetBody("text/plain", partnerWelcomeBody(fullName, to, temporaryPassword))
	return m.send(ctx, msg, "partner_welcome")
}

func (m *SMTPMailer) SendContactAck(ctx context.Context, to, name, subject string) error {
	msg := m.message(to, "We received your message")
	msg.SetBody("text/plain", contactAckBody(name, subject))
	return m.send(ctx, msg, "contact_ack")
}

func (m *SMTPMailer) message(to, subject string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

func (m *SMTPMailer) send(ctx context.Context, msg *gomail.Message, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}
	m.log.Info().Str("kind", kind).Strs("to", msg.GetHeader("To")).Msg("mail sent")
	return nil
}

func partnerWelcomeBody(fullName, email, temporaryPassword string) string {
	return fmt.Sprintf("Hello %s,\n\n"+
		"Your partnership application was approved and a provider account has been created.\n\n"+
		"Email: %s\nTemporary password: %s\n\n"+
		"Please sign in and change your password.\n", fullName, email, temporaryPassword)
}

func contactAckBody(name, subject string) string {
	return fmt.Sprintf("Hello %s,\n\nThanks for reaching out about %q. Our team will get back to you shortly.\n", name, subject)
}

// NopMailer only logs outgoing mail.
type NopMailer struct {
	log zerolog.Logger
}

func (n NopMailer) SendPartnerWelcome(_ context.Context, to, _, _ string) error {
	n.log.Info().Str("kind", "partner_welcome").Str("to", to).Msg("mail skipped")
	return nil
}

func (n NopMailer) SendContactAck(_ context.Context, to, _, _ string) error {
	n.log.Info().Str("kind", "contact_ack").Str("to", to).Msg("mail skipped")
	return nil
}
