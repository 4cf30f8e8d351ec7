// Package email delivers the weekly pulse over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// Notifier sends plain-text pulse digests through an SMTP relay.
type Notifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string

	// send is swapped in tests to capture the outgoing message.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires SMTP credentials. The from address falls back to the
// username when unset.
func NewNotifier(host string, port int, username, password, from, fromName string) *Notifier {
	if from == "" {
		from = username
	}
	return &Notifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		send:     smtp.SendMail,
	}
}

// DeliverPulse renders the pulse as plain text and mails it to the recipient.
func (n *Notifier) DeliverPulse(ctx context.Context, recipient, appName string, pulse domain.Pulse) error {
	if recipient == "" {
		return fmt.Errorf("recipient address is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "Weekly Product Pulse"
	if appName != "" {
		subject = fmt.Sprintf("Weekly Product Pulse for %s", appName)
	}

	msg := buildMessage(n.senderHeader(), recipient, subject, renderPulse(pulse, appName))

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	if err := n.send(addr, auth, n.from, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}

	return nil
}

func (n *Notifier) senderHeader() string {
	if n.fromName != "" {
		return fmt.Sprintf("%s <%s>", n.fromName, n.from)
	}
	return n.from
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func renderPulse(pulse domain.Pulse, appName string) string {
	var b strings.Builder

	b.WriteString(pulse.Title + "\n")
	b.WriteString(strings.Repeat("=", len(pulse.Title)) + "\n\n")

	if pulse.Overview != "" {
		b.WriteString(pulse.Overview + "\n\n")
	}

	if len(pulse.Themes) > 0 {
		b.WriteString("Key Themes\n----------\n")
		for _, theme := range pulse.Themes {
			fmt.Fprintf(&b, "* %s: %s\n", theme.Name, theme.Summary)
		}
		b.WriteString("\n")
	}

	if len(pulse.Quotes) > 0 {
		b.WriteString("What Users Say\n--------------\n")
		for _, quote := range pulse.Quotes {
			fmt.Fprintf(&b, "> %s\n", quote)
		}
		b.WriteString("\n")
	}

	if len(pulse.Actions) > 0 {
		b.WriteString("Suggested Actions\n-----------------\n")
		for i, action := range pulse.Actions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, action)
		}
		b.WriteString("\n")
	}

	if appName != "" {
		fmt.Fprintf(&b, "Generated by ReviewPulse for %s.\n", appName)
	}

	return b.String()
}
