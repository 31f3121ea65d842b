// Package notify delivers out-of-band mail notifications for request
// activity. Delivery is best-effort: the workflow never waits on SMTP.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/config"
	"github.com/intromesh/intromesh/internal/mediation"
)

const queueSize = 64

type queuedMail struct {
	to      string
	subject string
	body    string
}

// Mailer sends status-change mail through a background worker. With no SMTP
// host configured it degrades to logging the notification.
type Mailer struct {
	client   *mail.Client
	from     string
	accounts *accounts.Service
	queue    chan queuedMail
	done     chan struct{}
	logger   *slog.Logger
}

// NewMailer builds the mailer and starts its delivery worker.
func NewMailer(log *slog.Logger, cfg config.SMTPConfig, accountSvc *accounts.Service) (*Mailer, error) {
	if log == nil {
		log = slog.Default()
	}
	m := &Mailer{
		from:     cfg.From,
		accounts: accountSvc,
		queue:    make(chan queuedMail, queueSize),
		done:     make(chan struct{}),
		logger:   log.With(slog.String("service", "notify")),
	}
	if cfg.Host != "" {
		opts := []mail.Option{mail.WithPort(cfg.Port)}
		if cfg.Username != "" {
			opts = append(opts,
				mail.WithSMTPAuth(mail.SMTPAuthPlain),
				mail.WithUsername(cfg.Username),
				mail.WithPassword(cfg.Password),
			)
		}
		client, err := mail.NewClient(cfg.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("smtp client: %w", err)
		}
		m.client = client
	}
	go m.run()
	return m, nil
}

// NotifyStatusChange mails both parties of a request about its new status.
// Identities stay hidden: the mail names only the request kind and status,
// never the counterparty.
func (m *Mailer) NotifyStatusChange(ctx context.Context, req mediation.Request) {
	subject := fmt.Sprintf("Your %s request is now %s", req.Kind, req.Status)
	body := fmt.Sprintf(
		"The status of your %s request changed to %q.\n\nSign in to view the details.\n",
		req.Kind, req.Status,
	)
	for _, accountID := range []string{req.RequesterID, req.TargetID} {
		account, err := m.accounts.Get(ctx, accountID)
		if err != nil {
			m.logger.Warn("resolve notification recipient",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if account.Email == "" {
			continue
		}
		m.enqueue(queuedMail{to: account.Email, subject: subject, body: body})
	}
}

// Close stops the delivery worker. Queued mail that has not been sent yet is
// dropped.
func (m *Mailer) Close() {
	close(m.done)
}

func (m *Mailer) enqueue(qm queuedMail) {
	select {
	case m.queue <- qm:
	default:
		m.logger.Warn("notification queue full, dropping mail", slog.String("to", qm.to))
	}
}

func (m *Mailer) run() {
	for {
		select {
		case qm := <-m.queue:
			m.deliver(qm)
		case <-m.done:
			return
		}
	}
}

func (m *Mailer) deliver(qm queuedMail) {
	if m.client == nil {
		m.logger.Info("notification (mail disabled)",
			slog.String("to", qm.to),
			slog.String("subject", qm.subject),
		)
		return
	}
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		m.logger.Error("set mail sender", slog.String("error", err.Error()))
		return
	}
	if err := msg.To(qm.to); err != nil {
		m.logger.Error("set mail recipient", slog.String("error", err.Error()))
		return
	}
	msg.Subject(qm.subject)
	msg.SetBodyString(mail.TypeTextPlain, qm.body)
	if err := m.client.DialAndSend(msg); err != nil {
		m.logger.Error("send mail",
			slog.String("to", qm.to),
			slog.String("error", err.Error()),
		)
		return
	}
	m.logger.Debug("notification sent", slog.String("to", qm.to))
}
