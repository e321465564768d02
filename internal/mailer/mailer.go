package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"social-service/internal/config"
)

// Mailer delivers transactional email
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
	SendNotificationDigest(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"Use the token below to reset your password. It expires in 10 minutes.\r\n\r\n%s\r\n",
		token,
	)
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendNotificationDigest(ctx context.Context, to, subject, body string) error {
	return m.send(to, subject, body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	addr := m.cfg.Host + ":" + m.cfg.Port

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, to, subject, body,
	))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg)
}
