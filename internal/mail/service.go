// Package mail sends transactional email over SMTP and exposes a
// connectivity probe for the health endpoint.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"woodcraft_backend/internal/config"

	"go.uber.org/zap"
)

// Sender is the mail surface the rest of the application depends on.
type Sender interface {
	Send(to, subject, body string) error
	// Ping dials the SMTP server and quits immediately. Used by /health.
	Ping(ctx context.Context) error
}

type smtpSender struct {
	cfg    *config.Config
	logger *zap.Logger
}

var _ Sender = (*smtpSender)(nil)

// NewSMTPSender creates a mail sender from the SMTP settings in cfg.
func NewSMTPSender(cfg *config.Config, logger *zap.Logger) Sender {
	return &smtpSender{cfg: cfg, logger: logger.Named("Mail")}
}

// Send delivers a plain-text email. Credentials are optional so local
// development against an unauthenticated relay keeps working.
func (s *smtpSender) Send(to, subject, body string) error {
	addr := net.JoinHostPort(s.cfg.SMTPHost, s.cfg.SMTPPort)

	var msg strings.Builder
	msg.WriteString("From: " + s.cfg.MailFrom + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.MailFrom, []string{to}, []byte(msg.String())); err != nil {
		s.logger.Error("Failed to send mail",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Ping opens an SMTP session and quits without sending anything.
func (s *smtpSender) Ping(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.SMTPHost, s.cfg.SMTPPort)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}

	// DialContext only bounds the dial. The greeting read and the QUIT
	// exchange need the deadline on the connection itself, otherwise a
	// connected-but-silent server blocks past the caller's timeout.
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("smtp set deadline failed: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		conn.Close()
		return fmt.Errorf("smtp quit failed: %w", err)
	}
	return nil
}
