// Package notify delivers status-change emails to applicants. Delivery is
// best-effort: callers log failures and never surface them to the request
// that triggered the notification.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/pkg/config"
)

const (
	dialTimeout    = 8 * time.Second
	sessionTimeout = 15 * time.Second
)

// SMTPNotifier sends status emails over SMTP with STARTTLS.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
}

func NewSMTPNotifier(cfg config.SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// NotifyStatusChange emails the applicant about their new status.
func (n *SMTPNotifier) NotifyStatusChange(ctx context.Context, recipientEmail, jobTitle string, status domain.ApplicationStatus) error {
	body := fmt.Sprintf("<p>Your application for <b>%s</b> is now:</p><h3>%s</h3>", jobTitle, status)

	fromHeader := fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + recipientEmail,
		"Subject: Application Status Update",
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	if err := n.send(recipientEmail, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	n.logger.Info().Str("to", recipientEmail).Str("status", string(status)).Msg("status email sent")
	return nil
}

// send speaks SMTP with explicit dial and session deadlines so a dead relay
// cannot hang a notification worker.
func (n *SMTPNotifier) send(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(sessionTimeout))

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return err
		}
	}
	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(n.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
