package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Message is a plain-text email
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer builds a mailer for host:port. PLAIN auth is used when user is set.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		from: from,
		auth: auth,
	}
}

// Addr returns the relay address
func (m *SMTPMailer) Addr() string {
	return m.addr
}

// Send delivers msg. net/smtp has no context support, so ctx is only checked up front.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	if err := smtp.SendMail(m.addr, m.auth, m.from, msg.To, compose(m.from, msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(msg.To, ","), err)
	}
	return nil
}

func compose(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them.
// Used when no SMTP relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send logs msg
func (m LogMailer) Send(ctx context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent, no SMTP relay configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
