package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender sends events as plain-text e-mails over SMTP
type EmailSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &EmailSender{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		from:     from,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *EmailSender) Name() string {
	return "email"
}

// Send mails every recipient with an address, one message each
func (s *EmailSender) Send(ctx context.Context, e Event, to []Recipient) error {
	var errs []error

	for _, r := range to {
		if r.Email == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		subject, body := Render(e, r)
		msg := buildMessage(s.from, r.Email, subject, body, e.OccurredAt)
		if err := s.sendMail(s.addr, s.auth, s.from, []string{r.Email}, msg); err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", r.Email, err))
		}
	}

	return errors.Join(errs...)
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
