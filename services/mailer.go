package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sierra-health/medequip-api/config"
)

// Mailer delivers plain text email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay, upgrading to TLS with STARTTLS when offered
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPMailer creates a mailer from the SMTP settings in cfg
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if cfg.SMTPPort == "" {
		return nil, fmt.Errorf("SMTP_PORT not set")
	}
	from := cfg.SMTPUser
	if from == "" {
		from = cfg.AdminEmail
	}
	if from == "" {
		return nil, fmt.Errorf("SMTP_USER or ADMIN_EMAIL must be set")
	}

	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     from,
		fromName: cfg.MailFromName,
	}, nil
}

// Send delivers one message. net/smtp has no context support, so ctx only bounds the dial.
func (s *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(s.host, s.port)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	if _, err := w.Write(buildMessage(s.fromName, s.from, to, subject, body)); err != nil {
		w.Close()
		return fmt.Errorf("smtp send failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return client.Quit()
}

func buildMessage(fromName, from, to, subject, body string) []byte {
	sender := from
	if fromName != "" {
		sender = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", fromName), from)
	}
	var b strings.Builder
	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
