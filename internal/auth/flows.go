// Package auth orchestrates the account flows built on the token service:
// signup with email verification, passwordless magic-link login, and
// password reset. Each flow issues or verifies a purpose-scoped token and
// dispatches exactly one mutation against the identity provider.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cltvc/volunteercentral/internal/identity"
	"github.com/cltvc/volunteercentral/internal/model"
	"github.com/cltvc/volunteercentral/internal/store"
	"github.com/cltvc/volunteercentral/internal/token"
)

// User-facing messages. Verification failures share one message regardless
// of the underlying cause so callers learn nothing from the wording.
const (
	msgVerificationSent  = "Check your email for a verification link."
	msgMagicLinkSent     = "Check your email for a sign-in link."
	msgResetSent         = "Check your email for a password reset link."
	msgEmailVerified     = "Email verified successfully."
	msgPasswordReset     = "Password reset successfully."
	msgInvalidLink       = "This link is invalid or has expired."
	msgSendFailed        = "We couldn't send the email. Please try again later."
	msgBadCredentials    = "Invalid email or password."
	msgEmailNotConfirmed = "Please verify your email address before signing in."
	msgUnexpected        = "An unexpected error occurred."
)

// Result is the outcome shape every flow hands back to its HTTP handler:
// always renderable, never a raw error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(message string) Result { return Result{Success: false, Message: message} }
func success(message string) Result { return Result{Success: true, Message: message} }

// Mailer is the notification-sender collaborator.
type Mailer interface {
	Enabled() bool
	SendVerification(ctx context.Context, to, name, token string) error
	SendMagicLink(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Flows wires the token service to its collaborators. All dependencies are
// injected; there is no package-level client state.
type Flows struct {
	tokens   *token.Service
	users    identity.Provider
	mailer   Mailer
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewFlows(tokens *token.Service, users identity.Provider, mailer Mailer, sessions *store.SessionStore, logger *slog.Logger) *Flows {
	return &Flows{
		tokens:   tokens,
		users:    users,
		mailer:   mailer,
		sessions: sessions,
		logger:   logger,
	}
}

// SignUp creates an unconfirmed account and sends the verification email.
// A duplicate email gets the same response as a fresh signup so the
// endpoint can't be used to probe for accounts.
func (f *Flows) SignUp(ctx context.Context, email, password, fullName string) Result {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return failure("Email and password are required.")
	}

	user, err := f.users.CreateUser(ctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			f.logger.Info("signup for existing email", "email", email)
			return success(msgVerificationSent)
		}
		f.logger.Error("signup create user", "error", err)
		return failure(msgUnexpected)
	}

	tok, err := f.tokens.Issue(user.Email, token.PurposeSignupVerification)
	if err != nil {
		f.logger.Error("issue verification token", "error", err)
		return failure(msgUnexpected)
	}

	if err := f.mailer.SendVerification(ctx, user.Email, fullName, tok); err != nil {
		f.logger.Error("send verification email", "email", user.Email, "error", err)
		return failure(msgSendFailed)
	}

	return success(msgVerificationSent)
}

// ResendVerification issues a fresh verification token for an existing
// unconfirmed account.
func (f *Flows) ResendVerification(ctx context.Context, email string) Result {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			f.logger.Info("resend verification for unknown email", "email", email)
			return success(msgVerificationSent)
		}
		f.logger.Error("resend verification lookup", "error", err)
		return failure(msgUnexpected)
	}
	if user.EmailConfirmed {
		return success(msgVerificationSent)
	}

	tok, err := f.tokens.Issue(user.Email, token.PurposeSignupVerification)
	if err != nil {
		f.logger.Error("issue verification token", "error", err)
		return failure(msgUnexpected)
	}
	if err := f.mailer.SendVerification(ctx, user.Email, user.FullName, tok); err != nil {
		f.logger.Error("send verification email", "email", user.Email, "error", err)
		return failure(msgSendFailed)
	}
	return success(msgVerificationSent)
}

// VerifyEmail consumes a signup-verification token and confirms the email
// on the identity provider.
func (f *Flows) VerifyEmail(ctx context.Context, rawToken string) Result {
	claims, err := f.tokens.Verify(rawToken, token.PurposeSignupVerification)
	if err != nil {
		f.logger.Warn("verify email token rejected", "error", err)
		return failure(msgInvalidLink)
	}

	if err := f.users.ConfirmEmail(ctx, claims.Email); err != nil {
		f.logger.Error("confirm email", "email", claims.Email, "error", err)
		return failure(msgUnexpected)
	}

	f.logger.Info("email verified", "email", claims.Email)
	return success(msgEmailVerified)
}

// RequestMagicLink sends a passwordless sign-in link. Unknown addresses get
// the same response as known ones.
func (f *Flows) RequestMagicLink(ctx context.Context, email string) Result {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			f.logger.Info("magic link requested for unknown email", "email", email)
			return success(msgMagicLinkSent)
		}
		f.logger.Error("magic link lookup", "error", err)
		return failure(msgUnexpected)
	}

	tok, err := f.tokens.Issue(user.Email, token.PurposeMagicLink)
	if err != nil {
		f.logger.Error("issue magic link token", "error", err)
		return failure(msgUnexpected)
	}
	if err := f.mailer.SendMagicLink(ctx, user.Email, tok); err != nil {
		f.logger.Error("send magic link email", "email", user.Email, "error", err)
		return failure(msgSendFailed)
	}
	return success(msgMagicLinkSent)
}

// MagicLinkLogin consumes a magic-link token and establishes a session,
// bypassing the password check. The returned session is non-nil only on
// success.
func (f *Flows) MagicLinkLogin(ctx context.Context, rawToken string) (Result, *model.Session) {
	claims, err := f.tokens.Verify(rawToken, token.PurposeMagicLink)
	if err != nil {
		f.logger.Warn("magic link token rejected", "error", err)
		return failure(msgInvalidLink), nil
	}

	user, err := f.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		// The token outlived the account; fail closed.
		f.logger.Warn("magic link for missing user", "email", claims.Email, "error", err)
		return failure(msgInvalidLink), nil
	}

	sess, err := f.sessions.Create(user.ID)
	if err != nil {
		f.logger.Error("create session", "user_id", user.ID, "error", err)
		return failure(msgUnexpected), nil
	}

	f.logger.Info("magic link login", "email", user.Email)
	return success("Signed in."), sess
}

// RequestPasswordReset sends a reset link. Unknown addresses get the same
// response as known ones.
func (f *Flows) RequestPasswordReset(ctx context.Context, email string) Result {
	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			f.logger.Info("password reset requested for unknown email", "email", email)
			return success(msgResetSent)
		}
		f.logger.Error("password reset lookup", "error", err)
		return failure(msgUnexpected)
	}

	tok, err := f.tokens.Issue(user.Email, token.PurposePasswordReset)
	if err != nil {
		f.logger.Error("issue reset token", "error", err)
		return failure(msgUnexpected)
	}
	if err := f.mailer.SendPasswordReset(ctx, user.Email, tok); err != nil {
		f.logger.Error("send reset email", "email", user.Email, "error", err)
		return failure(msgSendFailed)
	}
	return success(msgResetSent)
}

// ResetPassword consumes a password-reset token and sets the new password.
// Existing sessions for the user are revoked best-effort: the password
// change is the primary mutation and stands even if the cleanup fails.
func (f *Flows) ResetPassword(ctx context.Context, rawToken, newPassword string) Result {
	if len(newPassword) < 8 {
		return failure("Password must be at least 8 characters.")
	}

	claims, err := f.tokens.Verify(rawToken, token.PurposePasswordReset)
	if err != nil {
		f.logger.Warn("reset token rejected", "error", err)
		return failure(msgInvalidLink)
	}

	if err := f.users.UpdatePassword(ctx, claims.Email, newPassword); err != nil {
		f.logger.Error("update password", "email", claims.Email, "error", err)
		return failure(msgUnexpected)
	}

	if user, err := f.users.FindByEmail(ctx, claims.Email); err == nil {
		if err := f.sessions.DeleteForUser(user.ID); err != nil {
			f.logger.Error("revoke sessions after reset", "user_id", user.ID, "error", err)
		}
	}

	f.logger.Info("password reset", "email", claims.Email)
	return success(msgPasswordReset)
}

// PasswordLogin is the conventional credential login. Unconfirmed accounts
// are turned away until they verify.
func (f *Flows) PasswordLogin(ctx context.Context, email, password string) (Result, *model.Session) {
	user, err := f.users.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			return failure(msgBadCredentials), nil
		}
		f.logger.Error("password login", "error", err)
		return failure(msgUnexpected), nil
	}

	if !user.EmailConfirmed {
		return failure(msgEmailNotConfirmed), nil
	}

	sess, err := f.sessions.Create(user.ID)
	if err != nil {
		f.logger.Error("create session", "user_id", user.ID, "error", err)
		return failure(msgUnexpected), nil
	}

	return success("Signed in."), sess
}

// Logout deletes the session behind the given cookie token, if any.
func (f *Flows) Logout(ctx context.Context, sessionToken string) {
	if sessionToken == "" {
		return
	}
	sess, err := f.sessions.GetByToken(sessionToken)
	if err != nil || sess == nil {
		return
	}
	if err := f.sessions.Delete(sess.ID); err != nil {
		f.logger.Error("delete session", "session_id", sess.ID, "error", err)
	}
}
