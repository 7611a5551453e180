package mailer

import (
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

// Sender delivers plain-text digests over SMTP. It satisfies the same
// SendMessage contract as the Telegram notifier.
type Sender struct {
	cfg    Config
	dialer *gomail.Dialer
}

// NewSender creates a Sender. It does not connect until a message is sent.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.Host == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("mailer: host, from and at least one recipient are required")
	}
	if cfg.Subject == "" {
		cfg.Subject = "TWSE material announcements"
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second
	return &Sender{cfg: cfg, dialer: dialer}, nil
}

// BuildMessage assembles the message for text without sending it.
func (s *Sender) BuildMessage(text string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To...)
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", text)
	return m
}

// SendMessage sends text as a plain-text e-mail to every recipient.
func (s *Sender) SendMessage(text string) error {
	if err := s.dialer.DialAndSend(s.BuildMessage(text)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
