package email

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cltvc/volunteercentral/internal/model"
)

type fakeSender struct {
	to      string
	subject string
	body    string
	sends   int
	err     error
}

func (f *fakeSender) Enabled() bool { return true }

func (f *fakeSender) send(to, subject, htmlBody string) error {
	f.sends++
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return f.err
}

type fakeLogStore struct {
	created    []*model.EmailLog
	sentIDs    []int64
	failedIDs  []int64
	failReason string
	createErr  error
}

func (f *fakeLogStore) Create(recipient, template, subject, payload string) (*model.EmailLog, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	entry := &model.EmailLog{
		ID:        int64(len(f.created) + 1),
		Recipient: recipient,
		Template:  template,
		Subject:   subject,
		Payload:   payload,
		Status:    model.EmailPending,
	}
	f.created = append(f.created, entry)
	return entry, nil
}

func (f *fakeLogStore) MarkSent(id int64) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

func (f *fakeLogStore) MarkFailed(id int64, reason string) error {
	f.failedIDs = append(f.failedIDs, id)
	f.failReason = reason
	return nil
}

func newTestMailer(s sender, logs LogStore) *Mailer {
	return &Mailer{
		client:  s,
		logs:    logs,
		baseURL: "https://volunteercentral.test",
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
}

func TestSendVerification(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	m := newTestMailer(sender, logs)

	err := m.SendVerification(context.Background(), "alice@example.com", "Alice", "tok123")
	if err != nil {
		t.Fatalf("send verification: %v", err)
	}

	if sender.sends != 1 {
		t.Fatalf("sends = %d, want exactly 1", sender.sends)
	}
	if sender.to != "alice@example.com" {
		t.Errorf("to = %q", sender.to)
	}
	if sender.subject != subjectVerification {
		t.Errorf("subject = %q", sender.subject)
	}
	wantLink := "https://volunteercentral.test/auth/verify?token=tok123"
	if !strings.Contains(sender.body, wantLink) {
		t.Errorf("body missing verification link %q", wantLink)
	}
	if !strings.Contains(sender.body, "Hello Alice") {
		t.Errorf("body missing greeting: %q", sender.body)
	}

	if len(logs.created) != 1 {
		t.Fatalf("created %d log entries, want 1", len(logs.created))
	}
	entry := logs.created[0]
	if entry.Template != TemplateVerification {
		t.Errorf("log template = %q", entry.Template)
	}
	if len(logs.sentIDs) != 1 || logs.sentIDs[0] != entry.ID {
		t.Errorf("sentIDs = %v, want [%d]", logs.sentIDs, entry.ID)
	}
	if len(logs.failedIDs) != 0 {
		t.Errorf("failedIDs = %v, want none", logs.failedIDs)
	}

	var payload verificationData
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.VerificationLink != wantLink {
		t.Errorf("payload link = %q", payload.VerificationLink)
	}
}

func TestSendMagicLink(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	m := newTestMailer(sender, logs)

	if err := m.SendMagicLink(context.Background(), "bob@example.com", "tok456"); err != nil {
		t.Fatalf("send magic link: %v", err)
	}
	if !strings.Contains(sender.body, "/auth/callback?token=tok456") {
		t.Errorf("body missing callback link: %q", sender.body)
	}
	if sender.subject != subjectMagicLink {
		t.Errorf("subject = %q", sender.subject)
	}
}

func TestSendPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	m := newTestMailer(sender, logs)

	if err := m.SendPasswordReset(context.Background(), "bob@example.com", "tok789"); err != nil {
		t.Fatalf("send password reset: %v", err)
	}
	if !strings.Contains(sender.body, "/auth/reset-password?token=tok789") {
		t.Errorf("body missing reset link: %q", sender.body)
	}
}

func TestSendRegistrationConfirmation(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{}
	m := newTestMailer(sender, logs)

	opp := &model.Opportunity{
		Title:    "Park Cleanup",
		Date:     time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Location: "Riverside Park",
	}
	err := m.SendRegistrationConfirmation(context.Background(), "carol@example.com", "Carol", opp)
	if err != nil {
		t.Fatalf("send confirmation: %v", err)
	}
	for _, want := range []string{"Park Cleanup", "Saturday, September 12, 2026", "Riverside Park"} {
		if !strings.Contains(sender.body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestTokenLinkEscapesToken(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender, &fakeLogStore{})

	if err := m.SendMagicLink(context.Background(), "bob@example.com", "a+b/c=="); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(sender.body, "token=a%2Bb%2Fc%3D%3D") {
		t.Errorf("token not query-escaped: %q", sender.body)
	}
}

func TestDeliverFailureMarksLogFailed(t *testing.T) {
	sendErr := errors.New("smtp send: connection refused")
	sender := &fakeSender{err: sendErr}
	logs := &fakeLogStore{}
	m := newTestMailer(sender, logs)

	err := m.SendMagicLink(context.Background(), "bob@example.com", "tok")
	if !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, want send error", err)
	}

	if sender.sends != 1 {
		t.Errorf("sends = %d, want a single attempt", sender.sends)
	}
	if len(logs.failedIDs) != 1 {
		t.Fatalf("failedIDs = %v, want one entry", logs.failedIDs)
	}
	if logs.failReason != sendErr.Error() {
		t.Errorf("fail reason = %q", logs.failReason)
	}
	if len(logs.sentIDs) != 0 {
		t.Errorf("sentIDs = %v, want none", logs.sentIDs)
	}
}

func TestDeliverLogCreateFailureDoesNotBlockSend(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeLogStore{createErr: errors.New("disk full")}
	m := newTestMailer(sender, logs)

	if err := m.SendMagicLink(context.Background(), "bob@example.com", "tok"); err != nil {
		t.Fatalf("send should succeed despite log failure: %v", err)
	}
	if sender.sends != 1 {
		t.Errorf("sends = %d, want 1", sender.sends)
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Error("client with empty config should be disabled")
	}

	logs := &fakeLogStore{}
	m := newTestMailer(client, logs)
	err = m.SendMagicLink(context.Background(), "bob@example.com", "tok")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
	if len(logs.failedIDs) != 1 {
		t.Errorf("disabled send should still be recorded as failed, got %v", logs.failedIDs)
	}
}

func TestClientPartialConfigDisabled(t *testing.T) {
	cfg := Config{
		Host:        "smtp.example.com:465",
		User:        "mailer",
		FromAddress: `"Volunteer Central" <no-reply@example.org>`,
		// Password intentionally missing.
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Enabled() {
		t.Error("client with partial config should be disabled")
	}
}

func TestRenderBodyAllTemplates(t *testing.T) {
	cases := []TemplateData{
		verificationData{Name: "A", VerificationLink: "https://x/v?token=t", SiteURL: "https://x", Year: 2026},
		magicLinkData{MagicLink: "https://x/cb?token=t", SiteURL: "https://x", Year: 2026},
		passwordResetData{ResetLink: "https://x/r?token=t", SiteURL: "https://x", Year: 2026},
		registrationConfirmationData{Name: "A", OpportunityTitle: "T", OpportunityDate: "D", OpportunityLocation: "L", DashboardLink: "https://x/dashboard", SiteURL: "https://x", Year: 2026},
	}
	for _, data := range cases {
		t.Run(data.templateName(), func(t *testing.T) {
			body, err := renderBody(data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(body, "2026") {
				t.Errorf("body missing footer year")
			}
		})
	}
}

func TestRenderBodyEscapesHTML(t *testing.T) {
	body, err := renderBody(verificationData{
		Name:             "<script>alert(1)</script>",
		VerificationLink: "https://x/v?token=t",
		SiteURL:          "https://x",
		Year:             2026,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("user-supplied name was not escaped")
	}
}
