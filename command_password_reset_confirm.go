package access

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ConfirmPasswordResetMessage struct {
	Email    string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OTP      string `json:"otp" example:"482913" doc:"Recovery code from the reset email."`
	Password string `json:"password" example:"some_secret_word" doc:"New password."`
}

func (p ConfirmPasswordResetMessage) Type() string { return "user.password_reset_confirm" }

// ConfirmPasswordResetHandler validates a presented recovery code and, on
// success, replaces the credential and clears the challenge. Wrong and
// expired codes fail with the same combined error. No token is issued; the
// user logs in again with the new credential.
type ConfirmPasswordResetHandler struct {
	directory UserDirectory
	logger    Logger
	now       func() time.Time
}

// NewConfirmPasswordResetHandler creates a handler with sane defaults.
func NewConfirmPasswordResetHandler(directory UserDirectory) *ConfirmPasswordResetHandler {
	return &ConfirmPasswordResetHandler{
		directory: directory,
		logger:    defLogger{},
		now:       time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ConfirmPasswordResetHandler) WithLogger(logger Logger) *ConfirmPasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *ConfirmPasswordResetHandler) WithClock(clock func() time.Time) *ConfirmPasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *ConfirmPasswordResetHandler) Execute(ctx context.Context, event ConfirmPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmPasswordResetHandler) execute(ctx context.Context, event ConfirmPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.directory.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if user == nil {
		return ErrIdentityNotFound
	}

	if !user.ResetChallengeValid(event.OTP, h.now()) {
		return ErrInvalidOrExpiredOTP
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	user.PasswordHash = hash
	user.ClearResetChallenge()

	if err := h.directory.Save(ctx, user); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist new credential")
	}

	return nil
}
