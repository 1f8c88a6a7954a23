// Package mailer sends transactional emails. Delivery failures are reported to the caller,
// which logs them; they never fail the operation that triggered the mail.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go/v4"
	"go.uber.org/zap"

	"trackdechets/internal/config"
)

// Contact is a sender or recipient.
type Contact struct {
	Email string
	Name  string
}

// Attachment is a file joined to a mail.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Mail is a templated email. A zero TemplateID uses the sender's default template.
type Mail struct {
	To          []Contact
	Subject     string
	TemplateID  int
	Vars        map[string]any
	Attachments []Attachment
}

// Mailer delivers mails.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// ErrNoRecipient is returned when a mail has no recipient.
var ErrNoRecipient = errors.New("mail has no recipient")

// New returns a Mailjet mailer, or a logging one when no API key is configured.
func New(cfg config.MailjetConfig, log *zap.Logger) Mailer {
	if cfg.PublicKey == "" {
		return NewLogMailer(log)
	}
	return NewMailjet(cfg)
}

type sendFunc func(*mailjet.MessagesV31) (*mailjet.ResultsV31, error)

// Mailjet sends mails through the Mailjet v3.1 send API.
type Mailjet struct {
	send            sendFunc
	from            Contact
	defaultTemplate int
}

// NewMailjet builds a Mailjet mailer from cfg.
func NewMailjet(cfg config.MailjetConfig) *Mailjet {
	client := mailjet.NewMailjetClient(cfg.PublicKey, cfg.PrivateKey)
	return &Mailjet{
		send: func(m *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
			return client.SendMailV31(m)
		},
		from:            Contact{Email: cfg.SenderEmail, Name: cfg.SenderName},
		defaultTemplate: cfg.MainTemplateID,
	}
}

// Send delivers m. Template variables are rendered by Mailjet.
func (j *Mailjet) Send(ctx context.Context, m Mail) error {
	if len(m.To) == 0 {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := make(mailjet.RecipientsV31, 0, len(m.To))
	for _, c := range m.To {
		to = append(to, mailjet.RecipientV31{Email: c.Email, Name: c.Name})
	}
	tpl := m.TemplateID
	if tpl == 0 {
		tpl = j.defaultTemplate
	}
	info := mailjet.InfoMessagesV31{
		From:             &mailjet.RecipientV31{Email: j.from.Email, Name: j.from.Name},
		To:               &to,
		Subject:          m.Subject,
		TemplateID:       tpl,
		TemplateLanguage: true,
		Variables:        m.Vars,
	}
	if len(m.Attachments) > 0 {
		atts := make(mailjet.AttachmentsV31, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			atts = append(atts, mailjet.AttachmentV31{
				ContentType:   a.ContentType,
				Filename:      a.Filename,
				Base64Content: base64.StdEncoding.EncodeToString(a.Content),
			})
		}
		info.Attachments = &atts
	}

	if _, err := j.send(&mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{info}}); err != nil {
		return fmt.Errorf("mailjet send: %w", err)
	}
	return nil
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer returns a mailer logging through log.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mailer"))}
}

func (l *LogMailer) Send(_ context.Context, m Mail) error {
	if len(m.To) == 0 {
		return ErrNoRecipient
	}
	to := make([]string, 0, len(m.To))
	for _, c := range m.To {
		to = append(to, c.Email)
	}
	l.log.Info("mail_sent",
		zap.Strings("to", to),
		zap.String("subject", m.Subject),
		zap.Int("template_id", m.TemplateID),
		zap.Any("vars", m.Vars),
		zap.Int("attachments", len(m.Attachments)),
	)
	return nil
}
