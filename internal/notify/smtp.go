package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const (
	smtpDialTimeout = 8 * time.Second
	smtpConnTimeout = 15 * time.Second
)

type SMTPOptions struct {
	Host     string
	Port     string
	Username string
	Password string
}

// SMTPSender delivers through a submission server, upgrading with STARTTLS
// when the server offers it.
type SMTPSender struct {
	options SMTPOptions
}

func NewSMTPSender(options SMTPOptions) *SMTPSender {
	if options.Port == "" {
		options.Port = "587"
	}
	return &SMTPSender{options: options}
}

func (sender *SMTPSender) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(sender.options.Host, sender.options.Port)

	dialer := net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	deadline := time.Now().Add(smtpConnTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, sender.options.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Quit() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: sender.options.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if sender.options.Username != "" {
		auth := smtp.PlainAuth("", sender.options.Username, sender.options.Password, sender.options.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(envelopeAddress(msg.From)); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write(smtpPayload(msg)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	return writer.Close()
}

func (sender *SMTPSender) Close() error { return nil }

func smtpPayload(msg Message) []byte {
	headers := []string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}
	headers = append(headers,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		msg.HTML,
	)
	return []byte(strings.Join(headers, "\r\n"))
}

// envelopeAddress strips a display name: "Crewdesk <leads@x.io>" becomes
// "leads@x.io".
func envelopeAddress(from string) string {
	start := strings.LastIndex(from, "<")
	end := strings.LastIndex(from, ">")
	if start >= 0 && end > start {
		return from[start+1 : end]
	}
	return strings.TrimSpace(from)
}
