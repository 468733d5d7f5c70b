// Package mail sends report email over SMTP.
package mail

import (
	"context"

	"github.com/rotisserie/eris"
	gomail "github.com/wneessen/go-mail"
)

// Message is one outbound email. HTML is optional; when set it is attached
// as the multipart alternative to Text.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

type smtpSender struct {
	client *gomail.Client
}

// NewSender creates an SMTP sender with mandatory TLS and plain auth.
func NewSender(cfg Config) (Sender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, eris.Wrap(err, "mail: create client")
	}
	return &smtpSender{client: client}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m, err := build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return eris.Wrap(err, "mail: send")
	}
	return nil
}

func build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, eris.Wrapf(err, "mail: invalid sender %s", msg.From)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, eris.Wrap(err, "mail: invalid recipients")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
