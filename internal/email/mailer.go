package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

// Subjects for the transactional templates.
const (
	subjectVerification             = "Verify Your Email - Volunteer Central"
	subjectMagicLink                = "Your Magic Link - Volunteer Central"
	subjectPasswordReset            = "Reset Your Password - Volunteer Central"
	subjectRegistrationConfirmation = "Volunteer Registration Confirmation - Volunteer Central"
)

// LogStore records send attempts. Implemented by store.EmailLogStore.
type LogStore interface {
	Create(recipient, template, subject, payload string) (*model.EmailLog, error)
	MarkSent(id int64) error
	MarkFailed(id int64, reason string) error
}

type sender interface {
	Enabled() bool
	send(to, subject, htmlBody string) error
}

// Mailer renders templates, constructs token links, and delivers messages
// through the SMTP client, recording each attempt in the email log.
type Mailer struct {
	client  sender
	logs    LogStore
	baseURL string
	now     func() time.Time
	logger  *slog.Logger
}

func NewMailer(client *Client, logs LogStore, baseURL string, logger *slog.Logger) *Mailer {
	return &Mailer{
		client:  client,
		logs:    logs,
		baseURL: baseURL,
		now:     time.Now,
		logger:  logger,
	}
}

// Enabled reports whether the underlying transport is configured.
func (m *Mailer) Enabled() bool {
	return m.client.Enabled()
}

// tokenLink builds an absolute link with the token as a query parameter.
func (m *Mailer) tokenLink(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", m.baseURL, path, url.QueryEscape(token))
}

// SendVerification emails a signup-verification link. The link expires with
// its token, 24 hours after issuance.
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	if name == "" {
		name = "there"
	}
	return m.deliver(ctx, to, subjectVerification, verificationData{
		Name:             name,
		VerificationLink: m.tokenLink("/auth/verify", token),
		SiteURL:          m.baseURL,
		Year:             m.now().Year(),
	})
}

// SendMagicLink emails a passwordless sign-in link.
func (m *Mailer) SendMagicLink(ctx context.Context, to, token string) error {
	return m.deliver(ctx, to, subjectMagicLink, magicLinkData{
		MagicLink: m.tokenLink("/auth/callback", token),
		SiteURL:   m.baseURL,
		Year:      m.now().Year(),
	})
}

// SendPasswordReset emails a password-reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.deliver(ctx, to, subjectPasswordReset, passwordResetData{
		ResetLink: m.tokenLink("/auth/reset-password", token),
		SiteURL:   m.baseURL,
		Year:      m.now().Year(),
	})
}

// SendRegistrationConfirmation emails a confirmation for an opportunity
// signup.
func (m *Mailer) SendRegistrationConfirmation(ctx context.Context, to, name string, opp *model.Opportunity) error {
	if name == "" {
		name = "there"
	}
	return m.deliver(ctx, to, subjectRegistrationConfirmation, registrationConfirmationData{
		Name:                name,
		OpportunityTitle:    opp.Title,
		OpportunityDate:     opp.Date.Format("Monday, January 2, 2006"),
		OpportunityLocation: opp.Location,
		DashboardLink:       m.baseURL + "/dashboard",
		SiteURL:             m.baseURL,
		Year:                m.now().Year(),
	})
}

// deliver renders the body, records a pending log row, makes one delivery
// attempt, and transitions the row to sent or failed. Log bookkeeping is
// best effort: a failed status write is logged but never overrides the
// outcome of the delivery itself.
func (m *Mailer) deliver(ctx context.Context, to, subject string, data TemplateData) error {
	body, err := renderBody(data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	entry, err := m.logs.Create(to, data.templateName(), subject, string(payload))
	if err != nil {
		m.logger.Error("create email log entry", "template", data.templateName(), "error", err)
	}

	if err := m.client.send(to, subject, body); err != nil {
		if entry != nil {
			if lerr := m.logs.MarkFailed(entry.ID, err.Error()); lerr != nil {
				m.logger.Error("mark email log failed", "id", entry.ID, "error", lerr)
			}
		}
		return err
	}

	if entry != nil {
		if lerr := m.logs.MarkSent(entry.ID); lerr != nil {
			m.logger.Error("mark email log sent", "id", entry.ID, "error", lerr)
		}
	}

	m.logger.Info("email sent", "template", data.templateName(), "recipient", to)
	return nil
}
