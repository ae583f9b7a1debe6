package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/smtp"

	"github.com/hostwatch/internal/models"
	"gopkg.in/gomail.v2"
)

// ErrNoTLS is returned when the relay session is not encrypted at the point
// of authentication.
var ErrNoTLS = errors.New("smtp relay did not offer STARTTLS; refusing to authenticate")

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email submits alerts through an SMTP relay. On ports other than 465 the
// session is upgraded with STARTTLS before authenticating; credentials are
// never sent over an unencrypted session.
type Email struct {
	sender sender
	out    io.Writer
}

// NewEmail returns an Email for the relay at host:port. Send progress is
// printed on out, which may be nil.
func NewEmail(host string, port int, username, password string, out io.Writer) *Email {
	if out == nil {
		out = io.Discard
	}
	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{ServerName: host}
	dialer.Auth = tlsAuth{smtp.PlainAuth("", username, password, host)}
	return &Email{sender: dialer, out: out}
}

// Send opens one SMTP session and submits msg as a plain-text email.
func (e *Email) Send(ctx context.Context, msg models.AlertMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.Sender)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	fmt.Fprintf(e.out, "Attempting to send email: To=%s, Subject=%s\n", msg.Recipient, msg.Subject)
	if err := e.sender.DialAndSend(m); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Alert email sent successfully.")
	return nil
}

// tlsAuth fails before any credential is written unless the connection is
// encrypted, including for relays on localhost.
type tlsAuth struct {
	smtp.Auth
}

func (a tlsAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, ErrNoTLS
	}
	return a.Auth.Start(server)
}
