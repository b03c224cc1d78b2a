package service

import (
	"context"      // Request-scoped cancellation
	"errors"       // Error matching
	"strings"      // Email normalization
	"time"         // Reset token expiry
	"unicode/utf8" // Name length in characters

	"github.com/sirupsen/logrus" // Structured logging

	"storefront/internal/domain" // Domain models
	"storefront/internal/mail"   // Reset mail
	"storefront/internal/utils"  // Tokens and hashing
)

// ResetTokenTTL is how long a password reset token stays valid
const ResetTokenTTL = time.Hour

// AuthOptions configures the account flows
type AuthOptions struct {
	Secret      string // JWT signing secret
	BcryptCost  int    // Password hashing cost
	FrontendURL string // Base of the reset link
	MailFrom    string // Sender of reset mail
}

// Auth issues and resolves session tokens and runs signup, signin and password reset
type Auth struct {
	users  UserStore
	mailer mail.Mailer
	opts   AuthOptions
	log    *logrus.Entry
	now    func() time.Time
}

func NewAuth(users UserStore, mailer mail.Mailer, opts AuthOptions, log *logrus.Entry) *Auth {
	return &Auth{users: users, mailer: mailer, opts: opts, log: log, now: time.Now}
}

// SignupInput is the signup request
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetInput is the password reset request
type ResetInput struct {
	ResetToken      string `json:"reset_token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// IssueToken signs a session token carrying only the user id
func (a *Auth) IssueToken(userID uint) (string, error) {
	return utils.GenerateJWT(userID, a.opts.Secret, utils.SessionTTL)
}

// ResolveIdentity returns the user id of a valid token. Any failure yields anonymous, never an error.
func (a *Auth) ResolveIdentity(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}
	claims, err := utils.ParseJWT(token, a.opts.Secret)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

// Signup creates a USER account and signs it in
func (a *Auth) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if utf8.RuneCountInString(name) < 3 {
		return nil, "", domain.Validation("Name length must be at least 3 characters.")
	}
	if email == "" {
		return nil, "", domain.Validation("Enter a valid email.")
	}
	if in.Password == "" {
		return nil, "", domain.Validation("Enter a password.")
	}
	if _, err := a.users.UserByEmail(ctx, email); err == nil {
		return nil, "", domain.Conflict("This user exists")
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, "", err
	}
	hash, err := utils.HashPassword(in.Password, a.opts.BcryptCost)
	if err != nil {
		return nil, "", err
	}
	user := &domain.User{
		Name:        name,
		Email:       email,
		Password:    hash,
		Permissions: domain.Permissions{domain.PermUser},
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, "", domain.Conflict("This user exists") // Lost a race with a concurrent signup
		}
		return nil, "", err
	}
	a.log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User signed up")
	token, err := a.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Signin checks credentials. Unknown email and wrong password fail identically.
func (a *Auth) Signin(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := a.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !utils.VerifyPassword(user.Password, password) {
		return nil, "", domain.ErrInvalidCredentials
	}
	token, err := a.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RequestReset stores a hashed one-hour reset token and mails the raw token to the user
func (a *Auth) RequestReset(ctx context.Context, email string) error {
	user, err := a.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.NotFound("No such user found for the email!")
	}
	if err != nil {
		return err
	}
	raw, hash, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	expiry := a.now().Add(ResetTokenTTL).UnixMilli()
	if _, err := a.users.UpdateUser(ctx, user.ID, map[string]any{
		"reset_token":        hash,
		"reset_token_expiry": expiry,
	}); err != nil {
		return err
	}
	msg, err := mail.ResetMessage(a.opts.FrontendURL, a.opts.MailFrom, user.Email, raw)
	if err != nil {
		return err
	}
	if err := a.mailer.Send(ctx, msg); err != nil {
		a.log.WithError(err).WithField("user_id", user.ID).Error("Failed to dispatch reset mail")
		return err
	}
	a.log.WithField("user_id", user.ID).Info("Password reset requested")
	return nil
}

// ResetPassword swaps the password for a valid reset token, clears the token and signs the user in.
// A token matches while its stored expiry is at or after now minus ResetTokenTTL.
func (a *Auth) ResetPassword(ctx context.Context, in ResetInput) (*domain.User, string, error) {
	if in.Password != in.ConfirmPassword {
		return nil, "", domain.Validation("Your passwords don't match!")
	}
	if in.Password == "" {
		return nil, "", domain.Validation("Enter a password.")
	}
	if in.ResetToken == "" {
		return nil, "", domain.Validation("This token is either invalid or expired!")
	}
	notBefore := a.now().Add(-ResetTokenTTL).UnixMilli()
	user, err := a.users.UserByResetToken(ctx, utils.HashToken(in.ResetToken), notBefore)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, "", domain.Validation("This token is either invalid or expired!")
	}
	if err != nil {
		return nil, "", err
	}
	hash, err := utils.HashPassword(in.Password, a.opts.BcryptCost)
	if err != nil {
		return nil, "", err
	}
	updated, err := a.users.UpdateUser(ctx, user.ID, map[string]any{
		"password":           hash,
		"reset_token":        nil,
		"reset_token_expiry": nil,
	})
	if err != nil {
		return nil, "", err
	}
	a.log.WithField("user_id", updated.ID).Info("Password reset")
	token, err := a.IssueToken(updated.ID)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
