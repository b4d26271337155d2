package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/coursewave/service-auth-go/pkg/utilities"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a message in a single attempt. Delivery failure is an error
// for the caller to report; there is no retry policy.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config carries SMTP settings for the outbound mailer.
type Config struct {
	Addr    string // host:port of the SMTP server
	From    string // sender identity
	Timeout time.Duration
}

// ConfigFromEnv reads mail config from environment variables.
func ConfigFromEnv() Config {
	addr := os.Getenv("SMTP_ADDR")
	if addr == "" {
		addr = "localhost:25"
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "no-reply@coursewave.local"
	}
	return Config{Addr: addr, From: from, Timeout: 10 * time.Second}
}

// SMTPMailer delivers over a plain SMTP session with a bounded dial.
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the message. The context deadline, if any sooner than the
// configured timeout, bounds the dial.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	timeout := m.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if remain := time.Until(dl); remain < timeout {
			timeout = remain
		}
	}

	conn, err := net.DialTimeout("tcp", m.cfg.Addr, timeout)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	// the deadline covers the whole session: greeting, envelope, data, quit.
	// A server that accepts the connection and stalls must not hang the
	// calling handler.
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("set smtp deadline: %w", err)
	}
	host, _, _ := strings.Cut(m.cfg.Addr, ":")
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := fmt.Fprint(wc, formatMessage(m.cfg.From, msg)); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

func formatMessage(from string, msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@coursewave>\r\n", utilities.NewKSUID())
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return b.String()
}
