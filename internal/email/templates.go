package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names, used as the template column of email log rows.
const (
	TemplateVerification             = "signup-verification"
	TemplateMagicLink                = "magic-link"
	TemplatePasswordReset            = "password-reset"
	TemplateRegistrationConfirmation = "registration-confirmation"
)

// TemplateData ties a rendered body to its template name. Each template has
// its own data struct carrying exactly the fields that template needs.
type TemplateData interface {
	templateName() string
}

type verificationData struct {
	Name             string
	VerificationLink string
	SiteURL          string
	Year             int
}

func (verificationData) templateName() string { return TemplateVerification }

type magicLinkData struct {
	MagicLink string
	SiteURL   string
	Year      int
}

func (magicLinkData) templateName() string { return TemplateMagicLink }

type passwordResetData struct {
	ResetLink string
	SiteURL   string
	Year      int
}

func (passwordResetData) templateName() string { return TemplatePasswordReset }

type registrationConfirmationData struct {
	Name                string
	OpportunityTitle    string
	OpportunityDate     string
	OpportunityLocation string
	DashboardLink       string
	SiteURL             string
	Year                int
}

func (registrationConfirmationData) templateName() string {
	return TemplateRegistrationConfirmation
}

const verificationTemplateRaw = `<html>
<body>
<h1>Verify Your Email</h1>
<p>Hello {{.Name}},</p>
<p>Thank you for signing up with Volunteer Central! To complete your
registration, please verify your email address:</p>
<p><a href="{{.VerificationLink}}">Verify Email Address</a></p>
<p>This link will expire in 24 hours. If you did not create an account,
please ignore this email.</p>
<p>If the button above doesn't work, copy and paste this link into your
browser:<br>{{.VerificationLink}}</p>
<hr>
<p><a href="{{.SiteURL}}">Volunteer Central</a> &copy; {{.Year}}</p>
</body>
</html>`

const magicLinkTemplateRaw = `<html>
<body>
<h1>Your Magic Link</h1>
<p>Hello,</p>
<p>You requested a magic link to sign in to your Volunteer Central account:</p>
<p><a href="{{.MagicLink}}">Sign In to Your Account</a></p>
<p>This link will expire in 10 minutes.</p>
<p>If you did not request this link, please ignore this email. Someone may
have entered your email address by mistake.</p>
<p>If the button above doesn't work, copy and paste this link into your
browser:<br>{{.MagicLink}}</p>
<hr>
<p><a href="{{.SiteURL}}">Volunteer Central</a> &copy; {{.Year}}</p>
</body>
</html>`

const passwordResetTemplateRaw = `<html>
<body>
<h1>Reset Your Password</h1>
<p>Hello,</p>
<p>We received a request to reset the password for your Volunteer Central
account:</p>
<p><a href="{{.ResetLink}}">Reset Password</a></p>
<p>This link will expire in 1 hour.</p>
<p>If you did not request a password reset, please ignore this email or
contact support if you have concerns about your account security.</p>
<p>If the button above doesn't work, copy and paste this link into your
browser:<br>{{.ResetLink}}</p>
<hr>
<p><a href="{{.SiteURL}}">Volunteer Central</a> &copy; {{.Year}}</p>
</body>
</html>`

const registrationConfirmationTemplateRaw = `<html>
<body>
<h1>Thank You for Volunteering!</h1>
<p>Hello {{.Name}},</p>
<p>You are registered for the following opportunity:</p>
<ul>
<li><strong>Opportunity:</strong> {{.OpportunityTitle}}</li>
<li><strong>Date:</strong> {{.OpportunityDate}}</li>
<li><strong>Location:</strong> {{.OpportunityLocation}}</li>
</ul>
<p><a href="{{.DashboardLink}}">View in Dashboard</a></p>
<p>If you need to make changes to your registration, please visit your
dashboard or contact us.</p>
<hr>
<p><a href="{{.SiteURL}}">Volunteer Central</a> &copy; {{.Year}}</p>
</body>
</html>`

var templates = map[string]*template.Template{
	TemplateVerification:             template.Must(template.New(TemplateVerification).Parse(verificationTemplateRaw)),
	TemplateMagicLink:                template.Must(template.New(TemplateMagicLink).Parse(magicLinkTemplateRaw)),
	TemplatePasswordReset:            template.Must(template.New(TemplatePasswordReset).Parse(passwordResetTemplateRaw)),
	TemplateRegistrationConfirmation: template.Must(template.New(TemplateRegistrationConfirmation).Parse(registrationConfirmationTemplateRaw)),
}

func renderBody(data TemplateData) (string, error) {
	tpl, ok := templates[data.templateName()]
	if !ok {
		return "", fmt.Errorf("no template registered for %q", data.templateName())
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", data.templateName(), err)
	}
	return buf.String(), nil
}
